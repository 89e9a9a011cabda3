package loader

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/cyoa/types"
)

// actionMarker is the field set on the table returned by Action so that a
// scene can list the action value directly.
const actionMarker = "__action_id"

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", start = "...", initial = { ... } }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.addGame(compileGame(tbl))
		return 0
	}))

	// Scene "id" { ... } — curried: Scene("id") returns a function that takes a table.
	L.SetGlobal("Scene", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.addScene(compileScene(id, tbl))
			return 0
		}))
		return 1
	}))

	// Action "id" { ... } — curried. Returns a marker table so a scene's
	// actions list can hold the action itself instead of its ID.
	L.SetGlobal("Action", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.addAction(compileAction(id, tbl))
			marker := L.NewTable()
			marker.RawSetString(actionMarker, lua.LString(id))
			L.Push(marker)
			return 1
		}))
		return 1
	}))

	// Outcome { ... } and Choice { ... } — pass-through, return the table.
	for _, name := range []string{"Outcome", "Choice"} {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			L.Push(tbl)
			return 1
		}))
	}
}

func registerConditionHelpers(L *lua.LState) {
	// HasItem("key" [, value [, comparator]]) and DoesNotHaveItem(...)
	for name, typ := range map[string]types.ConditionType{
		"HasItem":         types.HasItem,
		"DoesNotHaveItem": types.DoesNotHaveItem,
	} {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			tbl := condition(L, typ)
			tbl.RawSetString("key", lua.LString(L.CheckString(1)))
			if L.GetTop() >= 2 {
				tbl.RawSetString("value", L.CheckNumber(2))
			}
			if L.GetTop() >= 3 {
				tbl.RawSetString("comparator", lua.LString(L.CheckString(3)))
			}
			L.Push(tbl)
			return 1
		}))
	}

	// FlagSet("flag") and FlagNotSet("flag")
	for name, typ := range map[string]types.ConditionType{
		"FlagSet":    types.FlagSet,
		"FlagNotSet": types.FlagNotSet,
	} {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			tbl := condition(L, typ)
			tbl.RawSetString("key", lua.LString(L.CheckString(1)))
			L.Push(tbl)
			return 1
		}))
	}

	// Random(chance)
	L.SetGlobal("Random", L.NewFunction(func(L *lua.LState) int {
		tbl := condition(L, types.Random)
		if L.GetTop() >= 1 {
			tbl.RawSetString("chance", L.CheckNumber(1))
		}
		L.Push(tbl)
		return 1
	}))

	// Reputation("faction", value [, comparator])
	L.SetGlobal("Reputation", L.NewFunction(func(L *lua.LState) int {
		tbl := condition(L, types.Reputation)
		tbl.RawSetString("key", lua.LString(L.CheckString(1)))
		tbl.RawSetString("value", L.CheckNumber(2))
		if L.GetTop() >= 3 {
			tbl.RawSetString("comparator", lua.LString(L.CheckString(3)))
		}
		L.Push(tbl)
		return 1
	}))

	// TimeOfDayIs("night") and SeasonIs("winter")
	for name, typ := range map[string]types.ConditionType{
		"TimeOfDayIs": types.TimeOfDayIs,
		"SeasonIs":    types.SeasonIs,
	} {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			tbl := condition(L, typ)
			tbl.RawSetString("value", lua.LString(L.CheckString(1)))
			L.Push(tbl)
			return 1
		}))
	}
}

func registerEffectHelpers(L *lua.LState) {
	// AddItem("key" [, amount]) and RemoveItem("key" [, amount])
	for name, typ := range map[string]types.StateChangeType{
		"AddItem":    types.AddItem,
		"RemoveItem": types.RemoveItem,
	} {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			tbl := L.NewTable()
			tbl.RawSetString("type", lua.LString(typ))
			tbl.RawSetString("key", lua.LString(L.CheckString(1)))
			if L.GetTop() >= 2 {
				tbl.RawSetString("amount", L.CheckNumber(2))
			}
			L.Push(tbl)
			return 1
		}))
	}

	// SetFlag("flag")
	L.SetGlobal("SetFlag", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(types.SetFlag))
		tbl.RawSetString("key", lua.LString(L.CheckString(1)))
		L.Push(tbl)
		return 1
	}))
}

func condition(L *lua.LState, typ types.ConditionType) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(typ))
	return tbl
}
