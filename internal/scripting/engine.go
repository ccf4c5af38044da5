// Package scripting hosts the embedded Lua interpreter. The bootstrap seeds
// LUA_PATH and LUA_CPATH in the environment before the interpreter is
// created; gopher-lua picks LUA_PATH up when the state initializes its
// package loader.
package scripting

import (
	lua "github.com/yuin/gopher-lua"
)

// Environment variables honored by the interpreter. The bootstrap seeds both
// when neither a flag nor the environment already provides them.
const (
	EnvLuaPath  = "LUA_PATH"
	EnvLuaCPath = "LUA_CPATH"
)

// Version reports the Lua language version the engine implements.
func Version() string {
	return lua.LuaVersion
}

// Engine wraps a single Lua state. Bootstrap is single threaded, and the
// runtime taking over afterwards owns any locking it needs.
type Engine struct {
	state *lua.LState
}

// New creates a fresh interpreter state.
func New() *Engine {
	return &Engine{state: lua.NewState()}
}

// DoString runs a chunk of Lua source.
func (e *Engine) DoString(src string) error {
	return e.state.DoString(src)
}

// DoFile runs a Lua file.
func (e *Engine) DoFile(path string) error {
	return e.state.DoFile(path)
}

// PackagePath returns the interpreter's current module search path.
func (e *Engine) PackagePath() string {
	pkg := e.state.GetGlobal("package")
	path := e.state.GetField(pkg, "path")
	if s, ok := path.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// Close releases the interpreter.
func (e *Engine) Close() {
	e.state.Close()
}
