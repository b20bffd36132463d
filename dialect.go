package engine

import "strings"

// Dialect selects the interpreter a script file is executed by.
type Dialect int

const (
	// DialectLua runs files ending in ".lua".
	DialectLua Dialect = iota
	// DialectJs runs every other file.
	DialectJs
)

const (
	TypeEngineLua = "lua"
	TypeEngineJs  = "js"
)

// Dialects lists every dialect in the fixed order the bridge reloads them.
var Dialects = []Dialect{DialectLua, DialectJs}

// DialectOf classifies a script path. Only the literal ".lua" suffix selects
// Lua; anything else, including ".LUA" or no extension, is JavaScript.
func DialectOf(path string) Dialect {
	if strings.HasSuffix(path, ".lua") {
		return DialectLua
	}
	return DialectJs
}

func (d Dialect) String() string {
	switch d {
	case DialectLua:
		return TypeEngineLua
	case DialectJs:
		return TypeEngineJs
	}
	return "unknown"
}
