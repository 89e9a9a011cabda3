// Package loader loads game content (Lua, YAML or JSON) into the immutable
// catalog. The Lua VM is discarded after loading: zero Lua at runtime.
package loader

import (
	"fmt"
	"maps"
	"slices"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/cyoa/engine/state"
	"github.com/nathoo/cyoa/types"
)

// sourced pairs a definition with the file it came from.
type sourced[T any] struct {
	def  T
	file string
}

// collector accumulates definitions from every content file.
type collector struct {
	file    string // file currently being loaded
	games   []sourced[types.GameDef]
	scenes  []sourced[types.Scene]
	actions []sourced[types.Action]
}

func (c *collector) addGame(g types.GameDef) {
	c.games = append(c.games, sourced[types.GameDef]{g, c.file})
}

func (c *collector) addScene(s types.Scene) {
	c.scenes = append(c.scenes, sourced[types.Scene]{s, c.file})
}

func (c *collector) addAction(a types.Action) {
	c.actions = append(c.actions, sourced[types.Action]{a, c.file})
}

// compile merges everything collected into a Catalog. Duplicate IDs are
// returned as validation errors; the first definition wins.
func compile(coll *collector) (*state.Catalog, []string, error) {
	switch len(coll.games) {
	case 0:
		return nil, nil, fmt.Errorf("no Game{} definition found")
	case 1:
	default:
		return nil, nil, fmt.Errorf("Game{} defined more than once (%s and %s)",
			coll.games[0].file, coll.games[1].file)
	}

	c := &state.Catalog{
		Game:    coll.games[0].def,
		Scenes:  map[string]types.Scene{},
		Actions: map[string]types.Action{},
	}
	var dups []string
	seen := map[string]string{}

	for _, s := range coll.scenes {
		if prev, ok := seen["scene:"+s.def.ID]; ok {
			dups = append(dups, fmt.Sprintf("duplicate scene ID %q (%s and %s)", s.def.ID, prev, s.file))
			continue
		}
		seen["scene:"+s.def.ID] = s.file
		c.Scenes[s.def.ID] = s.def
	}
	for _, a := range coll.actions {
		if prev, ok := seen["action:"+a.def.ID]; ok {
			dups = append(dups, fmt.Sprintf("duplicate action ID %q (%s and %s)", a.def.ID, prev, a.file))
			continue
		}
		seen["action:"+a.def.ID] = a.file
		c.Actions[a.def.ID] = a.def
	}

	return c, dups, nil
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table.
func getNumber(tbl *lua.LTable, key string) (float64, bool) {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n), true
	}
	return 0, false
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	n, _ := getNumber(tbl, key)
	return int(n)
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a scalar Lua value to a Go value. Integral numbers
// become int.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(val)
	default:
		return nil
	}
}

// array returns the sequential elements of a Lua table that are tables.
func array(tbl *lua.LTable) []*lua.LTable {
	if tbl == nil {
		return nil
	}
	var out []*lua.LTable
	for i := 1; i <= tbl.MaxN(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, t)
		}
	}
	return out
}

// stringMap converts a Lua table with string keys using conv for values.
func stringMap[V any](tbl *lua.LTable, conv func(lua.LValue) (V, bool)) map[string]V {
	if tbl == nil {
		return nil
	}
	m := map[string]V{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if val, ok := conv(v); ok {
				m[string(ks)] = val
			}
		}
	})
	return m
}

func luaInt(v lua.LValue) (int, bool) {
	n, ok := v.(lua.LNumber)
	return int(n), ok
}

func luaBool(v lua.LValue) (bool, bool) {
	b, ok := v.(lua.LBool)
	return bool(b), ok
}

func compileGame(tbl *lua.LTable) types.GameDef {
	g := types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Start:   getString(tbl, "start"),
		Intro:   getString(tbl, "intro"),
	}
	if tmpl := getTable(tbl, "initial"); tmpl != nil {
		g.Initial = types.StateTemplate{
			Inventory:  stringMap(getTable(tmpl, "inventory"), luaInt),
			Flags:      stringMap(getTable(tmpl, "flags"), luaBool),
			Reputation: stringMap(getTable(tmpl, "reputation"), luaInt),
			Health:     getInt(tmpl, "health"),
			NPCs:       stringMap(getTable(tmpl, "npcs"), luaNPC),
			TimeOfDay:  types.TimeOfDay(getString(tmpl, "timeOfDay")),
			Season:     getString(tmpl, "season"),
		}
	}
	return g
}

func luaNPC(v lua.LValue) (types.NPCRelation, bool) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return types.NPCRelation{}, false
	}
	return types.NPCRelation{
		Name:     getString(tbl, "name"),
		Affinity: getInt(tbl, "affinity"),
		Met:      getBool(tbl, "met", false),
	}, true
}

func compileScene(id string, tbl *lua.LTable) types.Scene {
	scene := types.Scene{
		ID:            id,
		Location:      getString(tbl, "location"),
		Description:   getString(tbl, "description"),
		ParentSceneID: getString(tbl, "parentSceneId"),
		Choices:       compileChoices(getTable(tbl, "choices")),
	}
	// Actions may be listed by ID or by the value Action returned.
	if acts := getTable(tbl, "actions"); acts != nil {
		for i := 1; i <= acts.MaxN(); i++ {
			switch v := acts.RawGetInt(i).(type) {
			case lua.LString:
				scene.Actions = append(scene.Actions, string(v))
			case *lua.LTable:
				if id := getString(v, actionMarker); id != "" {
					scene.Actions = append(scene.Actions, id)
				}
			}
		}
	}
	return scene
}

func compileAction(id string, tbl *lua.LTable) types.Action {
	a := types.Action{
		ID:          id,
		Trigger:     types.Trigger(getString(tbl, "trigger")),
		Conditions:  compileConditions(getTable(tbl, "conditions")),
		FailMessage: getString(tbl, "failMessage"),
	}
	for _, o := range array(getTable(tbl, "outcomes")) {
		a.Outcomes = append(a.Outcomes, compileOutcome(o))
	}
	return a
}

func compileOutcome(tbl *lua.LTable) types.Outcome {
	return types.Outcome{
		Description:       getString(tbl, "description"),
		Conditions:        compileConditions(getTable(tbl, "conditions")),
		StateChanges:      compileStateChanges(getTable(tbl, "stateChanges")),
		NextSceneOverride: getString(tbl, "nextSceneOverride"),
		Choices:           compileChoices(getTable(tbl, "choices")),
	}
}

func compileChoices(tbl *lua.LTable) []types.Choice {
	var choices []types.Choice
	for _, c := range array(tbl) {
		choices = append(choices, types.Choice{
			Text:             getString(c, "text"),
			NextNodeID:       getString(c, "nextNodeId"),
			NextScene:        getString(c, "nextScene"),
			NextAction:       getString(c, "nextAction"),
			ResultMessage:    getString(c, "resultMessage"),
			ResultButtonText: getString(c, "resultButtonText"),
			StateChanges:     compileStateChanges(getTable(c, "stateChanges")),
		})
	}
	return choices
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	for _, c := range array(tbl) {
		cond := types.Condition{
			Type:       types.ConditionType(getString(c, "type")),
			Key:        getString(c, "key"),
			Value:      toGoValue(c.RawGetString("value")),
			Comparator: types.Comparator(getString(c, "comparator")),
		}
		if chance, ok := getNumber(c, "chance"); ok {
			cond.Chance = &chance
		}
		conditions = append(conditions, cond)
	}
	return conditions
}

func compileStateChanges(tbl *lua.LTable) []types.StateChange {
	var changes []types.StateChange
	for _, c := range array(tbl) {
		ch := types.StateChange{
			Type: types.StateChangeType(getString(c, "type")),
			Key:  getString(c, "key"),
		}
		if n, ok := getNumber(c, "amount"); ok {
			amount := int(n)
			ch.Amount = &amount
		}
		changes = append(changes, ch)
	}
	return changes
}

// sortedKeys returns map keys in order, for deterministic messages.
func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
