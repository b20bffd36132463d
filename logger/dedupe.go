package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap/zapcore"
)

type entryKey struct {
	level   zapcore.Level
	name    string
	message string
	fields  string
}

type seenSet struct {
	mu   sync.Mutex
	seen map[entryKey]struct{}
}

// first reports whether k has not been recorded yet, and records it.
func (s *seenSet) first(k entryKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	return true
}

// dedupeCore writes an entry only the first time its level, logger name,
// message and fields are all seen together. Children created with With
// share the set and add their fields to the key.
type dedupeCore struct {
	zapcore.Core
	set     *seenSet
	context []zapcore.Field
}

func NewDedupeCore(core zapcore.Core) zapcore.Core {
	return &dedupeCore{Core: core, set: &seenSet{seen: make(map[entryKey]struct{})}}
}

func (c *dedupeCore) With(fields []zapcore.Field) zapcore.Core {
	context := make([]zapcore.Field, 0, len(c.context)+len(fields))
	context = append(context, c.context...)
	context = append(context, fields...)
	return &dedupeCore{Core: c.Core.With(fields), set: c.set, context: context}
}

func (c *dedupeCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *dedupeCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	key := entryKey{
		level:   ent.Level,
		name:    ent.LoggerName,
		message: ent.Message,
		fields:  encodeFields(c.context, fields),
	}
	if !c.set.first(key) {
		return nil
	}
	return c.Core.Write(ent, fields)
}

// encodeFields renders fields in a stable form; fmt prints map keys sorted.
func encodeFields(groups ...[]zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	n := 0
	for _, fields := range groups {
		for _, f := range fields {
			f.AddTo(enc)
			n++
		}
	}
	if n == 0 {
		return ""
	}
	return fmt.Sprint(enc.Fields)
}
