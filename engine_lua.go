package engine

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/ailncode/gluaxmlpath"
	"github.com/ciaos/gluahttp"
	"github.com/cjoudrey/gluaurl"
	"github.com/yuin/gluamapper"
	"github.com/yuin/gluare"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
	luar "layeh.com/gopher-luar"
)

type LuaEngine struct {
	vm    *lua.LState
	ready bool
	// natives maps registered function values to their binding names.
	natives map[*lua.LFunction]string
}

func (e *LuaEngine) New() {
	e.vm = lua.NewState()
	e.natives = make(map[*lua.LFunction]string)
	luajson.Preload(e.vm)
	e.vm.PreloadModule("url", gluaurl.Loader)
	e.vm.PreloadModule("re", gluare.Loader)
	e.vm.PreloadModule("http", gluahttp.NewHttpModule(&http.Client{}).Loader)
	e.vm.PreloadModule("xmlpath", gluaxmlpath.Loader)
	e.ready = false
}

func (e *LuaEngine) Dialect() Dialect {
	return DialectLua
}

func (e *LuaEngine) IsReady() bool {
	return e.ready
}

func (e *LuaEngine) SetReady() {
	e.ready = true
}

func (e *LuaEngine) ParseString(source string) error {
	return e.vm.DoString(source)
}

func (e *LuaEngine) ParseFile(path string) error {
	return e.vm.DoFile(path)
}

func (e *LuaEngine) ParseChunk(chunkName, source string) error {
	fn, err := e.vm.Load(strings.NewReader(source), chunkName)
	if err != nil {
		return err
	}
	e.vm.Push(fn)
	return e.vm.PCall(0, lua.MultRet, nil)
}

func (e *LuaEngine) toLuaValue(src interface{}) lua.LValue {
	if src == nil {
		return lua.LNil
	}
	if reflect.ValueOf(src).Kind() == reflect.Map {
		dst := &lua.LTable{}
		srcVal := reflect.ValueOf(src)
		for _, key := range srcVal.MapKeys() {
			dst.RawSet(luar.New(e.vm, key.Interface()), e.toLuaValue(srcVal.MapIndex(key).Interface()))
		}
		return dst
	} else if reflect.ValueOf(src).Kind() == reflect.Slice {
		dst := &lua.LTable{}
		srcVal := reflect.ValueOf(src)
		for i := 0; i < srcVal.Len(); i++ {
			dst.Append(e.toLuaValue(srcVal.Index(i).Interface()))
		}
		return dst
	} else {
		return luar.New(e.vm, src)
	}
}

func (e *LuaEngine) toGoValue(src lua.LValue) interface{} {
	switch v := src.(type) {
	case *lua.LTable:
		maxn := v.MaxN()
		if maxn == 0 { // table
			ret := make(map[string]interface{})
			v.ForEach(func(key, value lua.LValue) {
				keyStr := fmt.Sprint(e.toGoValue(key))
				if keyStr != "" && unicode.IsLower(rune(keyStr[0])) {
					ret[gluamapper.ToUpperCamelCase(keyStr)] = e.toGoValue(value)
				} else {
					ret[keyStr] = e.toGoValue(value)
				}
			})
			return ret
		} else { // array
			ret := make([]interface{}, 0, maxn)
			for i := 1; i <= maxn; i++ {
				ret = append(ret, e.toGoValue(v.RawGetInt(i)))
			}
			return ret
		}
	case *lua.LFunction:
		return e.newCallback(v)
	case *lua.LUserData:
		return v.Value
	default:
		return gluamapper.ToGoValue(src, gluamapper.Option{NameFunc: gluamapper.ToUpperCamelCase})
	}
}

func (e *LuaEngine) RegisterObject(objectName string, objectPtr interface{}) {
	dst := e.toLuaValue(objectPtr)
	e.vm.SetGlobal(objectName, dst)
}

func (e *LuaEngine) wrap(goFuncName string, goFuncPtr interface{}) lua.LGFunction {
	native := newNativeFunc(goFuncName, goFuncPtr)
	return func(L *lua.LState) int {
		top := L.GetTop()
		args := make([]interface{}, 0, top)
		for i := 1; i <= top; i++ {
			args = append(args, e.toGoValue(L.Get(i)))
		}

		rets, err := native.call(args)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		for _, ret := range rets {
			L.Push(e.toLuaValue(ret))
		}
		return len(rets)
	}
}

func (e *LuaEngine) RegisterFunction(goFuncName string, goFuncPtr interface{}) {
	fn := e.vm.NewFunction(e.wrap(goFuncName, goFuncPtr))
	e.natives[fn] = goFuncName
	e.vm.SetGlobal(goFuncName, fn)
}

func (e *LuaEngine) RegisterModule(moduleName string, moduleFuncPtr map[string]interface{}) {
	exports := make(map[string]lua.LGFunction)
	for goFuncName, goFuncPtr := range moduleFuncPtr {
		exports[goFuncName] = e.wrap(goFuncName, goFuncPtr)
	}

	e.vm.PreloadModule(moduleName, func(L *lua.LState) int {
		mod := L.NewTable()
		for name, gf := range exports {
			fn := L.NewFunction(gf)
			e.natives[fn] = name
			L.SetField(mod, name, fn)
		}
		// register other stuff
		L.SetField(mod, "name", lua.LString(moduleName))

		// returns the module
		L.Push(mod)
		return 1
	})
}

func (e *LuaEngine) IsFunction(scriptFuncName string) bool {
	val := e.vm.GetGlobal(scriptFuncName)
	return val.Type() == lua.LTFunction
}

func (e *LuaEngine) Call(scriptFuncName string, retNum int, args ...interface{}) ([]interface{}, error) {
	luaArgs := make([]lua.LValue, len(args))
	for i := 0; i < len(args); i++ {
		luaArgs[i] = e.toLuaValue(args[i])
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      e.vm.GetGlobal(scriptFuncName),
		NRet:    retNum,
		Protect: true,
		Handler: nil,
	}, luaArgs...); err != nil {
		return nil, err
	}

	rets := make([]interface{}, 0)
	for i := 0; i < retNum; i++ {
		luaRet := e.vm.Get(-1)
		e.vm.Pop(1)

		res := e.toGoValue(luaRet)
		rets = append([]interface{}{res}, rets...)
	}

	return rets, nil
}

func (e *LuaEngine) Close() {
	e.vm.Close()
}

func (e *LuaEngine) GetVM() *lua.LState {
	return e.vm
}
