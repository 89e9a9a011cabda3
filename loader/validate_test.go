package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/cyoa/engine/state"
	"github.com/nathoo/cyoa/types"
)

func ptr[T any](v T) *T { return &v }

// validCatalog returns a minimal valid Catalog for testing.
func validCatalog() *state.Catalog {
	return &state.Catalog{
		Game: types.GameDef{Title: "Test", Start: "hall"},
		Scenes: map[string]types.Scene{
			"hall": {ID: "hall", Description: "A hall.", Actions: []string{"greet"}},
		},
		Actions: map[string]types.Action{
			"greet": {
				ID:       "greet",
				Trigger:  types.OnEnter,
				Outcomes: []types.Outcome{{Description: "Hello."}},
			},
		},
	}
}

func TestValidate_ValidCatalog(t *testing.T) {
	ve := validate(validCatalog())
	if len(ve.Errors) != 0 || len(ve.Warnings) != 0 {
		t.Fatalf("expected clean result, got errors %v warnings %v", ve.Errors, ve.Warnings)
	}
}

func TestValidate_Game(t *testing.T) {
	c := validCatalog()
	c.Game.Title = ""
	c.Game.Start = "nonexistent"
	c.Game.Initial.TimeOfDay = "noon"

	ve := validate(c)
	assertContains(t, ve.Errors, "Game.title is required")
	assertContains(t, ve.Errors, `start scene "nonexistent"`)
	assertContains(t, ve.Errors, `timeOfDay "noon"`)
}

func TestValidate_Conditions(t *testing.T) {
	tests := []struct {
		name string
		cond types.Condition
		err  string // substring expected in errors; "" means valid
	}{
		{"hasItem ok", types.Condition{Type: types.HasItem, Key: "coin"}, ""},
		{"hasItem full", types.Condition{Type: types.HasItem, Key: "coin", Value: 2, Comparator: types.Lte}, ""},
		{"hasItem no key", types.Condition{Type: types.HasItem}, "key is required"},
		{"hasItem negative", types.Condition{Type: types.HasItem, Key: "coin", Value: -1}, "non-negative integer"},
		{"hasItem string value", types.Condition{Type: types.HasItem, Key: "coin", Value: "two"}, "non-negative integer"},
		{"hasItem bad comparator", types.Condition{Type: types.HasItem, Key: "coin", Comparator: "gt"}, `unknown comparator "gt"`},
		{"hasItem chance", types.Condition{Type: types.HasItem, Key: "coin", Chance: ptr(0.5)}, "chance is only allowed on random"},
		{"doesNotHaveItem ok", types.Condition{Type: types.DoesNotHaveItem, Key: "coin"}, ""},
		{"flagSet ok", types.Condition{Type: types.FlagSet, Key: "door"}, ""},
		{"flagSet value", types.Condition{Type: types.FlagSet, Key: "door", Value: true}, "value is not allowed"},
		{"flagNotSet comparator", types.Condition{Type: types.FlagNotSet, Key: "door", Comparator: types.Eq}, "comparator is not allowed"},
		{"random ok", types.Condition{Type: types.Random, Chance: ptr(0.3)}, ""},
		{"random key", types.Condition{Type: types.Random, Key: "x", Chance: ptr(0.3)}, "key is not allowed"},
		{"random comparator", types.Condition{Type: types.Random, Comparator: types.Eq, Chance: ptr(0.3)}, "comparator is not allowed"},
		{"random too big", types.Condition{Type: types.Random, Chance: ptr(1.5)}, "between 0 and 1"},
		{"reputation ok", types.Condition{Type: types.Reputation, Key: "guild", Value: 3}, ""},
		{"reputation float whole", types.Condition{Type: types.Reputation, Key: "guild", Value: 3.0}, ""},
		{"reputation no value", types.Condition{Type: types.Reputation, Key: "guild"}, "value must be an integer"},
		{"timeOfDayIs ok", types.Condition{Type: types.TimeOfDayIs, Value: "night"}, ""},
		{"timeOfDayIs unknown", types.Condition{Type: types.TimeOfDayIs, Value: "noon"}, `"noon" is not one of`},
		{"timeOfDayIs key", types.Condition{Type: types.TimeOfDayIs, Key: "x", Value: "night"}, "key is not allowed"},
		{"seasonIs ok", types.Condition{Type: types.SeasonIs, Value: "winter"}, ""},
		{"seasonIs empty", types.Condition{Type: types.SeasonIs}, "non-empty string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := &ValidationError{}
			validateConditions([]types.Condition{tt.cond}, "test", ve)
			if tt.err == "" {
				if len(ve.Errors) != 0 {
					t.Errorf("unexpected errors: %v", ve.Errors)
				}
				return
			}
			assertContains(t, ve.Errors, tt.err)
		})
	}
}

func TestValidate_RandomWithoutChanceWarns(t *testing.T) {
	ve := &ValidationError{}
	validateConditions([]types.Condition{{Type: types.Random}}, "test", ve)
	if len(ve.Errors) != 0 {
		t.Errorf("errors = %v", ve.Errors)
	}
	assertContains(t, ve.Warnings, "always pass")
}

func TestValidate_UnknownConditionWarns(t *testing.T) {
	ve := &ValidationError{}
	validateConditions([]types.Condition{{Type: "moonPhase"}}, "test", ve)
	if len(ve.Errors) != 0 {
		t.Errorf("errors = %v", ve.Errors)
	}
	assertContains(t, ve.Warnings, "unknown condition type")
}

func TestValidate_StateChanges(t *testing.T) {
	tests := []struct {
		name   string
		change types.StateChange
		err    string
	}{
		{"addItem ok", types.StateChange{Type: types.AddItem, Key: "coin"}, ""},
		{"addItem amount", types.StateChange{Type: types.AddItem, Key: "coin", Amount: ptr(3)}, ""},
		{"removeItem zero", types.StateChange{Type: types.RemoveItem, Key: "coin", Amount: ptr(0)}, "at least 1"},
		{"setFlag ok", types.StateChange{Type: types.SetFlag, Key: "door"}, ""},
		{"setFlag amount", types.StateChange{Type: types.SetFlag, Key: "door", Amount: ptr(1)}, "amount is not allowed"},
		{"missing key", types.StateChange{Type: types.AddItem}, "key is required"},
		{"unknown type", types.StateChange{Type: "unsetFlag", Key: "door"}, "unknown state change type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := &ValidationError{}
			validateStateChanges([]types.StateChange{tt.change}, "test", ve)
			if tt.err == "" {
				if len(ve.Errors) != 0 {
					t.Errorf("unexpected errors: %v", ve.Errors)
				}
				return
			}
			assertContains(t, ve.Errors, tt.err)
		})
	}
}

func TestValidate_References(t *testing.T) {
	c := validCatalog()
	hall := c.Scenes["hall"]
	hall.Actions = append(hall.Actions, "missing_action")
	hall.ParentSceneID = "attic"
	hall.Choices = []types.Choice{
		{Text: "Up", NextNodeID: "attic"},
		{Text: "Ring", NextAction: "greet"},
		{Text: "Ok", ResultButtonText: "Sure"},
		{NextNodeID: "hall"},
	}
	c.Scenes["hall"] = hall
	c.Actions["orphan"] = types.Action{
		ID:       "orphan",
		Trigger:  types.OnChoice,
		Outcomes: []types.Outcome{{NextSceneOverride: "cellar"}},
	}
	c.Actions["empty"] = types.Action{ID: "empty", Trigger: types.OnFlag}

	ve := validate(c)
	assertContains(t, ve.Errors, "has no text")
	assertContains(t, ve.Warnings, `undefined action "missing_action"`)
	assertContains(t, ve.Warnings, `parentSceneId "attic"`)
	assertContains(t, ve.Warnings, `undefined scene "attic"`)
	assertContains(t, ve.Warnings, `nextAction "greet" listens for onEnter`)
	assertContains(t, ve.Warnings, "resultButtonText without resultMessage")
	assertContains(t, ve.Warnings, `nextSceneOverride "cellar"`)
	assertContains(t, ve.Warnings, `action "orphan" is not used`)
	assertContains(t, ve.Warnings, `action "empty" has no outcomes`)
}

func TestValidate_Triggers(t *testing.T) {
	c := validCatalog()
	c.Actions["greet"] = types.Action{ID: "greet", Outcomes: []types.Outcome{{}}}
	assertContains(t, validate(c).Errors, "has no trigger")

	c.Actions["greet"] = types.Action{ID: "greet", Trigger: "onLook", Outcomes: []types.Outcome{{}}}
	assertContains(t, validate(c).Errors, `unknown trigger "onLook"`)
}

func TestValidationError_Error(t *testing.T) {
	ve := &ValidationError{Errors: []string{"a", "b"}}
	msg := ve.Error()
	if !strings.Contains(msg, "2 error(s)") || !strings.Contains(msg, "a\n  b") {
		t.Errorf("Error() = %q", msg)
	}
}

func assertContains(t *testing.T, strs []string, substr string) {
	t.Helper()
	for _, s := range strs {
		if strings.Contains(s, substr) {
			return
		}
	}
	t.Errorf("expected one of %v to contain %q", strs, substr)
}
