package engine

import (
	"errors"
	"fmt"

	"github.com/robertkrimen/otto"
	lua "github.com/yuin/gopher-lua"
)

var errNativeNotBound = errors.New("only engine bindings can be scheduled as native functions")

// Callback is a script function captured as a native-call argument. It owns
// a copy of what is needed to run the function again: compiled Lua bytecode
// with a snapshot of its upvalues, or the JavaScript source text. It carries
// no reference to the interpreter it came from, so invoking it in another
// engine sees only that engine's globals.
type Callback struct {
	dialect Dialect
	closure *luaClosure
	source  string
	// err is set when the function could not be captured.
	err error
}

// luaClosure is a Lua function detached from its state. Native functions
// are kept by binding name and resolved in the engine that runs them.
type luaClosure struct {
	proto    *lua.FunctionProto
	native   string
	upvalues []luaUpvalue
}

// luaUpvalue is either a copied scalar value or a nested function.
type luaUpvalue struct {
	value lua.LValue
	fn    *luaClosure
}

// captureLua snapshots fn. Upvalues are copied by value at capture time;
// nil, booleans, numbers and strings are accepted, functions are captured
// recursively, and anything sharing mutable state is rejected.
func (e *LuaEngine) captureLua(fn *lua.LFunction, seen map[*lua.LFunction]*luaClosure) (*luaClosure, error) {
	if c, ok := seen[fn]; ok {
		return c, nil
	}
	if fn.IsG {
		name, ok := e.natives[fn]
		if !ok {
			return nil, errNativeNotBound
		}
		return &luaClosure{native: name}, nil
	}
	c := &luaClosure{proto: fn.Proto, upvalues: make([]luaUpvalue, len(fn.Upvalues))}
	seen[fn] = c
	for i, uv := range fn.Upvalues {
		if uv == nil {
			c.upvalues[i] = luaUpvalue{value: lua.LNil}
			continue
		}
		switch v := uv.Value().(type) {
		case *lua.LNilType, lua.LBool, lua.LNumber, lua.LString:
			c.upvalues[i] = luaUpvalue{value: v}
		case *lua.LFunction:
			nested, err := e.captureLua(v, seen)
			if err != nil {
				return nil, err
			}
			c.upvalues[i] = luaUpvalue{fn: nested}
		default:
			name := "?"
			if i < len(fn.Proto.DbgUpvalues) {
				name = fn.Proto.DbgUpvalues[i]
			}
			return nil, fmt.Errorf("callback captures %q of type %s; only nil, booleans, numbers, strings and functions can be scheduled", name, v.Type())
		}
	}
	return c, nil
}

func (e *LuaEngine) newCallback(fn *lua.LFunction) *Callback {
	c, err := e.captureLua(fn, make(map[*lua.LFunction]*luaClosure))
	return &Callback{dialect: DialectLua, closure: c, err: err}
}

// materialize rebuilds the function in L. Functions that capture each
// other are rebuilt once and linked again.
func (c *luaClosure) materialize(L *lua.LState, built map[*luaClosure]*lua.LFunction) (*lua.LFunction, error) {
	if fn, ok := built[c]; ok {
		return fn, nil
	}
	if c.native != "" {
		fn, ok := L.GetGlobal(c.native).(*lua.LFunction)
		if !ok {
			return nil, fmt.Errorf("binding %q is not installed", c.native)
		}
		return fn, nil
	}
	fn := L.NewFunctionFromProto(c.proto)
	built[c] = fn
	for i, uv := range c.upvalues {
		value := uv.value
		if uv.fn != nil {
			nested, err := uv.fn.materialize(L, built)
			if err != nil {
				return nil, err
			}
			value = nested
		}
		fn.Upvalues[i] = &lua.Upvalue{}
		fn.Upvalues[i].SetValue(value)
	}
	return fn, nil
}

func newJsCallback(fn otto.Value) *Callback {
	return &Callback{dialect: DialectJs, source: fn.String()}
}

func (c *Callback) Dialect() Dialect {
	return c.dialect
}

// Err reports why the function could not be captured, if it could not.
func (c *Callback) Err() error {
	return c.err
}

// Invoke runs the callback with no arguments inside e, which must be of the
// callback's dialect.
func (c *Callback) Invoke(e Engine) error {
	if c.err != nil {
		return c.err
	}
	switch ee := e.(type) {
	case *LuaEngine:
		if c.dialect != DialectLua || c.closure == nil {
			break
		}
		fn, err := c.closure.materialize(ee.vm, make(map[*luaClosure]*lua.LFunction))
		if err != nil {
			return err
		}
		return ee.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	case *JsEngine:
		if c.dialect != DialectJs {
			break
		}
		_, err := ee.vm.Run("(" + c.source + ")()")
		return err
	}
	return fmt.Errorf("%s callback cannot run in a %s engine", c.dialect, e.Dialect())
}
