package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/swingdice/internal/game/dice"
	"github.com/cory-johannsen/swingdice/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(zap.New(core))
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func resultFor(tier dice.Tier) dice.Result {
	return dice.Result{Sum: 42, Average: 3.5, Narrative: tier.Narrative(), Tier: tier}
}

func TestManager_Load_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function test_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.Load("table1", dir, 0))
	ret, err := mgr.CallHook("table1", "test_hook", lua.LNumber(3), lua.LNumber(4))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
	assert.Equal(t, []string{"table1"}, mgr.Sets())
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "empty.lua", `-- no functions`)
	require.NoError(t, mgr.Load("table1", dir, 0))
	ret, err := mgr.CallHook("table1", "nonexistent_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_UnknownSet_ReturnsNil(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret, err := mgr.CallHook("no_such_set", "some_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: no VM for set").Len())
}

func TestManager_CallHook_RuntimeError_WarnLogNoPanic(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `
		function bad_hook()
			error("intentional error")
		end
	`)
	require.NoError(t, mgr.Load("table1", dir, 0))
	ret, err := mgr.CallHook("table1", "bad_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len(), "expected Warn log for Lua runtime error")
}

func TestManager_CallHook_BudgetIsPerCall(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function spin()
			while true do end
		end
		function count(n)
			local total = 0
			for i = 1, n do total = total + i end
			return total
		end
	`)
	require.NoError(t, mgr.Load("table1", dir, 1000))

	ret, err := mgr.CallHook("table1", "spin")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())

	// A runaway call must not starve later calls of their budget.
	for i := 0; i < 20; i++ {
		ret, err = mgr.CallHook("table1", "count", lua.LNumber(10))
		require.NoError(t, err)
		assert.Equal(t, lua.LNumber(55), ret)
	}
}

func TestManager_LoadGlobal_CallHookFallback(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "global.lua", `
		function global_hook()
			return 42
		end
	`)
	require.NoError(t, mgr.LoadGlobal(dir, 0))
	// "unknown" has no VM; falls back to __global__.
	ret, err := mgr.CallHook("unknown", "global_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(42), ret)
	assert.Empty(t, mgr.Sets())
}

func TestManager_Load_EmptyDir_NoError(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("empty", t.TempDir(), 0))
	ret, err := mgr.CallHook("empty", "anything")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_Load_InvalidLua_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `this is not valid lua @@@@`)
	err := mgr.Load("bad", dir, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.lua")
	assert.Empty(t, mgr.Sets())
}

func TestManager_Load_MissingDir_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.Load("gone", "/nonexistent/scripts", 0))
}

func TestManager_Load_ReplacesPreviousVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("table1", writeTempLua(t, "v1.lua", `function version() return 1 end`), 0))
	require.NoError(t, mgr.Load("table1", writeTempLua(t, "v2.lua", `function version() return 2 end`), 0))
	ret, err := mgr.CallHook("table1", "version")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(2), ret)
}

func TestManager_Load_MultipleFiles_OrderedByName(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`base_val = 10`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`
		function get_val() return base_val end
	`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte(`not lua`), 0644))
	require.NoError(t, mgr.Load("ordered", dir, 0))
	ret, err := mgr.CallHook("ordered", "get_val")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(10), ret)
}

func TestManager_Effect_UsesHookString(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "effects.lua", `
		function on_roll(result)
			if result.tier == "Good" and result.sum == 42 then
				return "sparkle"
			end
			return ""
		end
	`)
	require.NoError(t, mgr.Load("table1", dir, 0))
	assert.Equal(t, "sparkle", mgr.Effect("table1", resultFor(dice.TierGood)))
	// An empty string is a decision, not a fallback.
	assert.Equal(t, "", mgr.Effect("table1", resultFor(dice.TierGodly)))
}

func TestManager_Effect_FallsBackToDefault(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load("nohook", writeTempLua(t, "a.lua", `x = 1`), 0))
	require.NoError(t, mgr.Load("broken", writeTempLua(t, "b.lua", `
		function on_roll(result) error("boom") end
	`), 0))
	require.NoError(t, mgr.Load("numeric", writeTempLua(t, "c.lua", `
		function on_roll(result) return 7 end
	`), 0))

	res := resultFor(dice.TierLegendary)
	assert.Equal(t, scripting.EffectSplash, mgr.Effect("missing", res))
	assert.Equal(t, scripting.EffectSplash, mgr.Effect("nohook", res))
	assert.Equal(t, scripting.EffectSplash, mgr.Effect("broken", res))
	assert.Equal(t, scripting.EffectSplash, mgr.Effect("numeric", res))
	assert.Equal(t, 2, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestManager_Effect_NilManager(t *testing.T) {
	var mgr *scripting.Manager
	assert.Equal(t, scripting.EffectShake, mgr.Effect("any", resultFor(dice.TierCursed)))
}

func TestDefaultEffect(t *testing.T) {
	cases := map[dice.Tier]string{
		dice.TierCursed:    scripting.EffectShake,
		dice.TierTerrible:  scripting.EffectShake,
		dice.TierBad:       scripting.EffectNone,
		dice.TierUnlucky:   scripting.EffectNone,
		dice.TierNeutral:   scripting.EffectNone,
		dice.TierGood:      scripting.EffectNone,
		dice.TierGreat:     scripting.EffectNone,
		dice.TierLegendary: scripting.EffectSplash,
		dice.TierGodly:     scripting.EffectSplash,
	}
	require.Len(t, cases, len(dice.Tiers()))
	for tier, want := range cases {
		assert.Equal(t, want, scripting.DefaultEffect(resultFor(tier)), "tier %s", tier)
	}
}

func TestProperty_CallHookMissingSetNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t)
	rapid.Check(t, func(rt *rapid.T) {
		set := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "set")
		hook := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "hook")
		count := rapid.IntRange(1, 20).Draw(rt, "count")
		for i := 0; i < count; i++ {
			mgr.CallHook(set, hook) //nolint:errcheck
		}
	})
}

func TestProperty_EffectConcurrentSameSet_NoRace(t *testing.T) {
	mgr := scripting.NewManager(zaptest.NewLogger(t))
	t.Cleanup(mgr.Close)
	dir := writeTempLua(t, "effects.lua", `
		function on_roll(result)
			return result.tier
		end
	`)
	require.NoError(t, mgr.Load("shared", dir, 0))

	tiers := dice.Tiers()
	var wg sync.WaitGroup
	wg.Add(len(tiers))
	for _, tier := range tiers {
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				assert.Equal(t, string(tier), mgr.Effect("shared", resultFor(tier)))
			}
		}()
	}
	wg.Wait()
}

func TestNewManager_PanicsOnNilLogger(t *testing.T) {
	assert.Panics(t, func() {
		scripting.NewManager(nil)
	})
}

func TestManager_Close_ReleasesSets(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("closeset", writeTempLua(t, "init.lua", `function get_x() return 1 end`), 0))
	mgr.Close()
	ret, err := mgr.CallHook("closeset", "get_x")
	assert.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Empty(t, mgr.Sets())
}
