package frame

import (
	"sync"
	"time"
)

// Host is what the native bindings act on. Script callbacks may run on
// other goroutines, so every request is stored and applied by the driver
// on the main thread.
type Host struct {
	mu             sync.Mutex
	color          [4]float32
	colorPending   bool
	closeRequested bool

	start time.Time
	now   func() time.Time
}

func NewHost() *Host {
	return newHostWithClock(time.Now)
}

func newHostWithClock(now func() time.Time) *Host {
	return &Host{start: now(), now: now}
}

func (h *Host) ClearColor(r, g, b, a float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.color = [4]float32{r, g, b, a}
	h.colorPending = true
}

func (h *Host) RequestClose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeRequested = true
}

func (h *Host) Elapsed() time.Duration {
	return h.now().Sub(h.start)
}

// takeClearColor returns the color set since the last call, if any.
func (h *Host) takeClearColor() ([4]float32, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	pending := h.colorPending
	h.colorPending = false
	return h.color, pending
}

func (h *Host) closeWanted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeRequested
}
