package config

import (
	lua "github.com/yuin/gopher-lua"
)

// Limits for the config VM. A config file is a handful of assignments;
// anything deeper is a mistake or an attack.
const (
	sandboxCallStackSize = 256
	sandboxRegistrySize  = 1024 * 8
)

// sandboxedGlobals are removed from every config VM.
//
// os, io and debug go entirely; the loaders would let a config pull in code
// from disk; the raw and metatable functions would let a config write
// through the read-only platform table.
var sandboxedGlobals = []string{
	"os",
	"io",
	"debug",
	"require",
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"module",
	"rawset",
	"rawget",
	"rawequal",
	"setmetatable",
	"getmetatable",
	"setfenv",
	"getfenv",
	"collectgarbage",
}

// sandboxLuaVM strips everything in sandboxedGlobals from L. string, table,
// math and the basic helpers (type, tostring, pairs, ...) stay.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range sandboxedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	// package.loaders would still reach the filesystem
	L.SetGlobal("package", lua.LNil)
}

// newSandboxedVM creates a bounded Lua VM with sandboxing applied.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize: sandboxCallStackSize,
		RegistrySize:  sandboxRegistrySize,
	})
	sandboxLuaVM(L)
	return L
}
