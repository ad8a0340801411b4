package config

import (
	lua "github.com/yuin/gopher-lua"
)

// blockedGlobals are removed from every config VM. Configs are declarative and
// must not touch the process, the filesystem or load other code.
var blockedGlobals = []string{
	"os", "io", "debug", "package",
	"require", "module", "dofile", "loadfile", "load", "loadstring",
}

// newSandboxedVM creates a Lua VM with only string, table, math and the basic
// functions available.
func newSandboxedVM() *lua.LState {
	L := lua.NewState()
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}
