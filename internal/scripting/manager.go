package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/swingdice/internal/game/dice"
)

// globalSet is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no set VM is found.
const globalSet = "__global__"

// HookOnRoll is the Lua global called by Effect with the roll result table.
const HookOnRoll = "on_roll"

// Presentation effects returned by DefaultEffect.
const (
	EffectNone   = ""
	EffectSplash = "splash"
	EffectShake  = "shake"
)

// DefaultEffect maps a result to the built-in effect: a splash for Godly and
// Legendary rolls, a shake for Cursed and Terrible rolls, nothing otherwise.
func DefaultEffect(res dice.Result) string {
	if !res.Tier.Emphasized() {
		return EffectNone
	}
	if res.Tier.Rank() > 0 {
		return EffectSplash
	}
	return EffectShake
}

// scriptVM is one sandboxed LState. An LState is single-threaded, so every use
// holds mu.
type scriptVM struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	cancel context.CancelFunc
}

func (v *scriptVM) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
	}
	v.L.Close()
}

// Manager owns one sandboxed LState per script set and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same set are serialized;
// different sets run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*scriptVM
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no script sets.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting: NewManager requires a non-nil logger")
	}
	return &Manager{
		vms:    make(map[string]*scriptVM),
		logger: logger,
	}
}

// Load creates a sandboxed VM for set, registers the dice module, then executes
// every *.lua file in scriptDir in lexicographic order. Loading a set again
// replaces the previous VM.
//
// Precondition: set must be non-empty; scriptDir must be a readable directory.
// Postcondition: Set VM is registered; returns error on Lua load failure.
func (m *Manager) Load(set, scriptDir string, instLimit int) error {
	return m.loadInto(set, scriptDir, instLimit)
}

// LoadGlobal creates the "__global__" VM used as the CallHook fallback for any set.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalSet, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L, cancel := NewSandboxedState(instLimit)
	RegisterModules(L)
	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	vm := &scriptVM{L: L, limit: instLimit, cancel: cancel}
	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = vm
	m.mu.Unlock()
	if old != nil {
		old.close()
	}

	m.logger.Info("scripting: loaded script set",
		zap.String("set", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// CallHook calls the named Lua global function in set's VM. If the set has no VM,
// the __global__ VM is tried as a fallback. Returns (LNil, nil) if the hook is not
// defined or no VM exists. Lua runtime errors are logged at Warn level and never
// propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(set, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.call(set, hook, func(*lua.LState) []lua.LValue { return args })
}

// call runs hook with arguments built on the VM's own LState.
func (m *Manager) call(set, hook string, buildArgs func(*lua.LState) []lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	vm, ok := m.vms[set]
	if !ok {
		vm = m.vms[globalSet]
	}
	m.mu.RUnlock()

	if vm == nil {
		m.logger.Debug("scripting: no VM for set",
			zap.String("set", set),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	fn := vm.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	// Every call gets its own opcode budget.
	if vm.cancel != nil {
		vm.cancel()
	}
	vm.cancel = Rearm(vm.L, vm.limit)

	if err := vm.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, buildArgs(vm.L)...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("set", set),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := vm.L.Get(-1)
	vm.L.Pop(1)
	return ret, nil
}

// Effect asks set's on_roll hook which presentation effect to play for res.
// A hook that returns a string decides the effect, including "" for none. Without
// a VM, without the hook, or when the hook errors or returns a non-string,
// DefaultEffect applies. A nil Manager always uses DefaultEffect.
func (m *Manager) Effect(set string, res dice.Result) string {
	if m == nil {
		return DefaultEffect(res)
	}
	ret, _ := m.call(set, HookOnRoll, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{resultTable(L, res)}
	})
	switch v := ret.(type) {
	case lua.LString:
		return string(v)
	case *lua.LNilType:
		return DefaultEffect(res)
	default:
		m.logger.Warn("scripting: on_roll returned a non-string",
			zap.String("set", set),
			zap.String("type", ret.Type().String()),
		)
		return DefaultEffect(res)
	}
}

// Sets returns the names of the loaded script sets, sorted, excluding the global set.
func (m *Manager) Sets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.vms))
	for k := range m.vms {
		if k != globalSet {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Close releases every VM. CallHook after Close behaves as if nothing was loaded.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*scriptVM)
	m.mu.Unlock()
	for _, vm := range vms {
		vm.close()
	}
}
