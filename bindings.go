package engine

import (
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	BindingClearWindowColor = "clear_window_color"
	BindingLog              = "log"
	BindingSetTimeout       = "set_timeout"
	BindingRequestClose     = "request_close"
	BindingElapsedTime      = "elapsed_time"

	// ModuleName is the module the bindings are also published under:
	// require("nengine") in Lua, the global object nengine in JavaScript.
	ModuleName = "nengine"
)

// Host is what the native bindings act on. The frame driver implements it.
type Host interface {
	ClearColor(red, green, blue, alpha float32)
	RequestClose()
	Elapsed() time.Duration
}

type NativeBinding struct {
	Name string
	Func interface{}
}

// NativeBindingSet is the single table of functions installed into every
// engine. Installing from one table keeps names and signatures identical
// across dialects.
type NativeBindingSet struct {
	mu       sync.Mutex
	bindings []NativeBinding
	pools    map[Dialect]*EnginePool
}

func NewNativeBindingSet() *NativeBindingSet {
	return &NativeBindingSet{pools: make(map[Dialect]*EnginePool)}
}

// Add appends a binding. Names must be unique.
func (s *NativeBindingSet) Add(name string, goFuncPtr interface{}) error {
	if reflect.ValueOf(goFuncPtr).Kind() != reflect.Func {
		return fmt.Errorf("binding %q: not a function", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bindings {
		if b.Name == name {
			return fmt.Errorf("binding %q already registered", name)
		}
	}
	s.bindings = append(s.bindings, NativeBinding{Name: name, Func: goFuncPtr})
	return nil
}

func (s *NativeBindingSet) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.bindings))
	for _, b := range s.bindings {
		names = append(names, b.Name)
	}
	return names
}

// Install registers every binding as a global function of e and as a member
// of the ModuleName module.
func (s *NativeBindingSet) Install(e Engine) {
	s.mu.Lock()
	bindings := append([]NativeBinding(nil), s.bindings...)
	s.mu.Unlock()

	module := make(map[string]interface{}, len(bindings))
	for _, b := range bindings {
		e.RegisterFunction(b.Name, b.Func)
		module[b.Name] = b.Func
	}
	e.RegisterModule(ModuleName, module)
}

// Pool returns the engine pool for d. Engines it creates have the set
// installed and are ready.
func (s *NativeBindingSet) Pool(d Dialect) *EnginePool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pools[d]
	if !ok {
		p = InitEnginePool(d, s)
		s.pools[d] = p
	}
	return p
}

var errNoCallback = errors.New("callback is not a function")

// DefaultBindings builds the binding set every script can rely on.
func DefaultBindings(host Host, out io.Writer, sched *Scheduler) *NativeBindingSet {
	set := NewNativeBindingSet()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(set.Add(BindingClearWindowColor, func(red, green, blue, alpha float32) {
		host.ClearColor(red, green, blue, alpha)
	}))
	must(set.Add(BindingLog, func(values ...interface{}) error {
		_, err := io.WriteString(out, FormatValues(values...)+"\n")
		return err
	}))
	must(set.Add(BindingSetTimeout, func(cb *Callback, delayMs float64) error {
		if cb == nil {
			return errNoCallback
		}
		if err := cb.Err(); err != nil {
			return err
		}
		if delayMs < 0 || math.IsNaN(delayMs) {
			delayMs = 0
		}
		sched.Schedule(cb, time.Duration(delayMs*float64(time.Millisecond)), set.Pool(cb.Dialect()))
		return nil
	}))
	must(set.Add(BindingRequestClose, func() {
		host.RequestClose()
	}))
	must(set.Add(BindingElapsedTime, func() float64 {
		return host.Elapsed().Seconds()
	}))
	return set
}

// FormatValues renders script values space separated. Lists render as
// [a, b], tables as {Key: value} with sorted keys.
func FormatValues(values ...interface{}) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, formatValue(v))
	}
	return strings.Join(parts, " ")
}

func formatValue(v interface{}) string {
	switch vv := v.(type) {
	case nil:
		return "nil"
	case string:
		return vv
	case bool:
		return strconv.FormatBool(vv)
	case float64:
		return formatFloat(vv)
	case float32:
		return formatFloat(float64(vv))
	case *Callback:
		return "<function>"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Slice, reflect.Array:
		elems := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elems = append(elems, formatValue(rv.Index(i).Interface()))
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]string, rv.Len())
		for _, k := range rv.MapKeys() {
			ks := formatValue(k.Interface())
			keys = append(keys, ks)
			byKey[ks] = formatValue(rv.MapIndex(k).Interface())
		}
		sort.Strings(keys)
		elems := make([]string, 0, len(keys))
		for _, k := range keys {
			elems = append(elems, k+": "+byKey[k])
		}
		return "{" + strings.Join(elems, ", ") + "}"
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
