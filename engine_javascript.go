package engine

import (
	"strconv"

	"github.com/robertkrimen/otto"
)

type JsEngine struct {
	vm    *otto.Otto
	ready bool
}

func (e *JsEngine) New() {
	e.vm = otto.New()
	e.ready = false
}

func (e *JsEngine) Dialect() Dialect {
	return DialectJs
}

func (e *JsEngine) IsReady() bool {
	return e.ready
}

func (e *JsEngine) SetReady() {
	e.ready = true
}

func (e *JsEngine) ParseString(source string) error {
	_, err := e.vm.Run(source)
	return err
}

func (e *JsEngine) ParseFile(path string) error {
	script, err := e.vm.Compile(path, nil)
	if err != nil {
		return err
	}
	_, err = e.vm.Run(script)
	return err
}

func (e *JsEngine) ParseChunk(chunkName, source string) error {
	script, err := e.vm.Compile(chunkName, source)
	if err != nil {
		return err
	}
	_, err = e.vm.Run(script)
	return err
}

func (e *JsEngine) RegisterObject(objectName string, objectPtr interface{}) {
	e.vm.Set(objectName, objectPtr)
}

func (e *JsEngine) toGoValue(v otto.Value) interface{} {
	if v.IsFunction() {
		return newJsCallback(v)
	}
	if v.IsUndefined() || v.IsNull() {
		return nil
	}
	if v.IsObject() && v.Class() == "Array" {
		length, _ := v.Object().Get("length")
		n, _ := length.ToInteger()
		ret := make([]interface{}, 0, n)
		for i := int64(0); i < n; i++ {
			elem, _ := v.Object().Get(strconv.FormatInt(i, 10))
			ret = append(ret, e.toGoValue(elem))
		}
		return ret
	}
	data, err := v.Export()
	if err != nil {
		return nil
	}
	return data
}

func (e *JsEngine) wrap(goFuncName string, goFuncPtr interface{}) func(call otto.FunctionCall) otto.Value {
	native := newNativeFunc(goFuncName, goFuncPtr)
	return func(call otto.FunctionCall) otto.Value {
		args := make([]interface{}, 0, len(call.ArgumentList))
		for _, arg := range call.ArgumentList {
			args = append(args, e.toGoValue(arg))
		}

		rets, err := native.call(args)
		if err != nil {
			panic(e.vm.MakeCustomError("NativeError", err.Error()))
		}
		if len(rets) == 0 {
			return otto.NullValue()
		}
		result, err := e.vm.ToValue(rets[0])
		if err != nil {
			panic(e.vm.MakeCustomError("NativeError", err.Error()))
		}
		return result
	}
}

func (e *JsEngine) RegisterFunction(goFuncName string, goFuncPtr interface{}) {
	e.vm.Set(goFuncName, e.wrap(goFuncName, goFuncPtr))
}

// RegisterModule exposes the functions as properties of a global object
// named moduleName.
func (e *JsEngine) RegisterModule(moduleName string, moduleFuncPtr map[string]interface{}) {
	mod, err := e.vm.Object("({})")
	if err != nil {
		panic(err)
	}
	for goFuncName, goFuncPtr := range moduleFuncPtr {
		mod.Set(goFuncName, e.wrap(goFuncName, goFuncPtr))
	}
	mod.Set("name", moduleName)
	e.vm.Set(moduleName, mod)
}

func (e *JsEngine) IsFunction(scriptFuncName string) bool {
	v, err := e.vm.Get(scriptFuncName)
	return err == nil && v.IsFunction()
}

func (e *JsEngine) Call(scriptFuncName string, retNum int, args ...interface{}) ([]interface{}, error) {
	value, err := e.vm.Call(scriptFuncName, nil, args...)
	if err != nil {
		return nil, err
	}
	if retNum == 0 {
		return nil, nil
	}
	data, err := value.Export()
	if err != nil {
		return nil, err
	}
	return []interface{}{data}, nil
}

func (e *JsEngine) Close() {
}
