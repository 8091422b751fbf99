// Package scripting hosts user Lua hooks that observe entity creations.
// Hooks are strictly downstream: they can log, tally, or feed external
// tooling, but nothing they do can alter or abort a creation.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM. Single-goroutine access only
// (tick loop).
type Engine struct {
	vm    *lua.LState
	hooks []*lua.LFunction
	log   *zap.Logger
}

// NewEngine creates a Lua engine and loads all hook scripts from the given
// directory. Scripts call register_create_hook(fn) to subscribe; fn receives
// (id, name, dna) per creation.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	vm.SetGlobal("register_create_hook", vm.NewFunction(e.registerCreateHook))

	hooksPath := filepath.Join(scriptsDir, "hooks")
	if err := e.loadDir(hooksPath); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load hook scripts: %w", err)
	}

	return e, nil
}

func (e *Engine) registerCreateHook(L *lua.LState) int {
	fn := L.CheckFunction(1)
	e.hooks = append(e.hooks, fn)
	return 0
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString loads inline Lua source. Test hook and admin convenience.
func (e *Engine) LoadString(src string) error {
	return e.vm.DoString(src)
}

// HookCount returns the number of registered creation hooks.
func (e *Engine) HookCount() int {
	return len(e.hooks)
}

// RunCreateHooks invokes every registered hook with (id, name, dna). The
// dna is passed as a decimal string: 16+ digit values do not survive Lua's
// float64 numbers intact. Hook errors are logged and swallowed: the
// creation already happened and cannot be rolled back from script.
func (e *Engine) RunCreateHooks(id uint64, name string, dna uint64) {
	for _, fn := range e.hooks {
		err := e.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, lua.LNumber(id), lua.LString(name), lua.LString(strconv.FormatUint(dna, 10)))
		if err != nil {
			e.log.Warn("create hook failed",
				zap.Uint64("entity", id),
				zap.Error(err),
			)
		}
	}
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
