package engine

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// nativeFunc wraps a Go function so both dialects can call it with values
// already converted to plain Go types.
type nativeFunc struct {
	name string
	fn   reflect.Value
}

func newNativeFunc(name string, goFuncPtr interface{}) nativeFunc {
	fn := reflect.ValueOf(goFuncPtr)
	if fn.Kind() != reflect.Func {
		panic(fmt.Sprintf("register %q: not a function but %T", name, goFuncPtr))
	}
	return nativeFunc{name: name, fn: fn}
}

// call coerces args onto the function's parameters and runs it. Missing
// arguments become zero values and extra ones are dropped, the way script
// callers expect. A non-nil trailing error result is returned as err.
func (n nativeFunc) call(args []interface{}) ([]interface{}, error) {
	ft := n.fn.Type()
	numIn := ft.NumIn()
	fixed := numIn
	if ft.IsVariadic() {
		fixed = numIn - 1
	}

	in := make([]reflect.Value, 0, numIn)
	for i := 0; i < fixed; i++ {
		var arg interface{}
		if i < len(args) {
			arg = args[i]
		}
		v, err := coerce(arg, ft.In(i))
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", n.name, i+1, err)
		}
		in = append(in, v)
	}
	if ft.IsVariadic() {
		elem := ft.In(numIn - 1).Elem()
		for i := fixed; i < len(args); i++ {
			v, err := coerce(args[i], elem)
			if err != nil {
				return nil, fmt.Errorf("%s: argument %d: %w", n.name, i+1, err)
			}
			in = append(in, v)
		}
	}

	outs := n.fn.Call(in)
	results := make([]interface{}, 0, len(outs))
	for i, out := range outs {
		if i == len(outs)-1 && ft.Out(i) == errorType {
			if !out.IsNil() {
				return nil, out.Interface().(error)
			}
			break
		}
		results = append(results, out.Interface())
	}
	return results, nil
}

func coerce(arg interface{}, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(t) {
		if t.Kind() == reflect.Interface {
			out := reflect.New(t).Elem()
			out.Set(v)
			return out, nil
		}
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(t.Kind()) {
		return v.Convert(t), nil
	}
	if v.Kind() == reflect.String && t.Kind() == reflect.String {
		return v.Convert(t), nil
	}
	if v.Kind() == reflect.Slice && t.Kind() == reflect.Slice {
		out := reflect.MakeSlice(t, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			e, err := coerce(v.Index(i).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out = reflect.Append(out, e)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, t)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
