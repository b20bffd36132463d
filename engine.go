package engine

// Engine is one interpreter instance of a script dialect. Every dialect
// exposes the same surface so the bridge can drive them interchangeably.
type Engine interface {
	New()
	Dialect() Dialect

	IsReady() bool
	SetReady()

	ParseString(source string) error
	ParseFile(path string) error
	// ParseChunk executes source, naming it chunkName in error messages.
	ParseChunk(chunkName, source string) error

	RegisterObject(objectName string, objectPtr interface{})
	RegisterFunction(goFuncName string, goFuncPtr interface{})
	RegisterModule(moduleName string, moduleFuncPtr map[string]interface{})

	IsFunction(scriptFuncName string) bool
	Call(scriptFuncName string, retNum int, args ...interface{}) ([]interface{}, error)

	Close()
}

// NewEngine returns an initialised, not yet ready, engine for the dialect.
func NewEngine(d Dialect) Engine {
	var e Engine
	switch d {
	case DialectLua:
		e = &LuaEngine{}
	default:
		e = &JsEngine{}
	}
	e.New()
	return e
}
