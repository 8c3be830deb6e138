package config

import (
	lua "github.com/yuin/gopher-lua"
)

// sandboxLuaVM removes every global that could execute commands, touch the
// filesystem or load further code. string, table and math stay available.
func sandboxLuaVM(L *lua.LState) {
	// os.execute, os.exit, os.getenv; tokens are read by name via token_env
	L.SetGlobal("os", lua.LNil)

	// io.open, io.popen, io.read
	L.SetGlobal("io", lua.LNil)

	L.SetGlobal("require", lua.LNil)
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("loadfile", lua.LNil)
	L.SetGlobal("load", lua.LNil)
	L.SetGlobal("loadstring", lua.LNil)
	L.SetGlobal("module", lua.LNil)
	L.SetGlobal("package", lua.LNil)

	// debug could be used to bypass the sandbox
	L.SetGlobal("debug", lua.LNil)
}

// newSandboxedVM creates a new Lua VM with sandboxing applied.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize: 256,
		RegistrySize:  1024 * 8,
	})
	sandboxLuaVM(L)
	return L
}
