package engine

import "sync"

// EnginePool builds engines of one dialect with a binding set installed.
// Engines are never recycled: every New call returns a fresh interpreter so
// no script state leaks between users. Count reports how many were built.
type EnginePool struct {
	dialect  Dialect
	bindings *NativeBindingSet
	m        sync.Mutex
	created  int
}

func (ep *EnginePool) New() Engine {
	engine := NewEngine(ep.dialect)
	if ep.bindings != nil {
		ep.bindings.Install(engine)
	}
	engine.SetReady()

	ep.m.Lock()
	ep.created++
	ep.m.Unlock()
	return engine
}

func (ep *EnginePool) Count() int {
	ep.m.Lock()
	defer ep.m.Unlock()
	return ep.created
}

func (ep *EnginePool) Dialect() Dialect {
	return ep.dialect
}

func InitEnginePool(d Dialect, bindings *NativeBindingSet) *EnginePool {
	return &EnginePool{
		dialect:  d,
		bindings: bindings,
		m:        sync.Mutex{},
	}
}
