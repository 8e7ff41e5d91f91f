package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/swingdice/internal/game/dice"
)

// RegisterModules registers the dice.* Lua table into L:
//
//	dice.tiers        ordered list of tier names, Cursed first
//	dice.rank(tier)   signed rank, -4 (Cursed) .. 4 (Godly), 0 for unknown names
//	dice.emphasized(tier) true for the extreme tiers
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: dice global is defined in L.
func RegisterModules(L *lua.LState) {
	mod := L.NewTable()

	tiers := L.NewTable()
	for _, t := range dice.Tiers() {
		tiers.Append(lua.LString(t))
	}
	mod.RawSetString("tiers", tiers)

	mod.RawSetString("rank", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(dice.Tier(L.CheckString(1)).Rank()))
		return 1
	}))
	mod.RawSetString("emphasized", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(dice.Tier(L.CheckString(1)).Emphasized()))
		return 1
	}))

	L.SetGlobal("dice", mod)
}

// resultTable converts res into the table passed to on_roll.
func resultTable(L *lua.LState, res dice.Result) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("sum", lua.LNumber(res.Sum))
	tbl.RawSetString("average", lua.LNumber(res.Average))
	tbl.RawSetString("narrative", lua.LString(res.Narrative))
	tbl.RawSetString("tier", lua.LString(res.Tier))
	tbl.RawSetString("rank", lua.LNumber(res.Tier.Rank()))
	tbl.RawSetString("emphasized", lua.LBool(res.Tier.Emphasized()))
	return tbl
}
