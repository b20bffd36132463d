package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs callbacks after a delay, each on its own goroutine and in
// its own freshly built engine. Submissions are fire-and-forget: there is no
// cancellation, no join and no ordering relative to frames. Callbacks never
// observe the globals of the script that scheduled them.
type Scheduler struct {
	logger *zap.Logger
	sleep  func(time.Duration)
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger, sleep: time.Sleep}
}

func (s *Scheduler) Schedule(cb *Callback, delay time.Duration, pool *EnginePool) {
	go s.run(cb, delay, pool)
}

func (s *Scheduler) run(cb *Callback, delay time.Duration, pool *EnginePool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("deferred callback panicked",
				zap.Stringer("dialect", cb.Dialect()),
				zap.String("panic", fmt.Sprint(r)))
		}
	}()

	s.sleep(delay)
	e := pool.New()
	defer e.Close()
	if err := cb.Invoke(e); err != nil {
		s.logger.Error("deferred callback failed",
			zap.Stringer("dialect", cb.Dialect()),
			zap.Duration("delay", delay),
			zap.Error(err))
	}
}
