package engine

import (
	"testing"

	"github.com/nathoo/cyoa/engine/state"
	"github.com/nathoo/cyoa/types"
)

func intp(n int) *int { return &n }

func helpBird() types.Action {
	return types.Action{
		ID:      "help_bird",
		Trigger: types.OnEnter,
		Conditions: []types.Condition{
			{Type: types.DoesNotHaveItem, Key: "gratitude_token"},
		},
		Outcomes: []types.Outcome{{
			Description: "You help the bird.",
			StateChanges: []types.StateChange{
				{Type: types.AddItem, Key: "gratitude_token", Amount: intp(1)},
				{Type: types.SetFlag, Key: "helped_bird"},
			},
		}},
	}
}

func catalogOf(actions ...types.Action) *state.Catalog {
	c := &state.Catalog{Scenes: map[string]types.Scene{}, Actions: map[string]types.Action{}}
	for _, a := range actions {
		c.Actions[a.ID] = a
	}
	return c
}

func emptyState() *types.GameState {
	return &types.GameState{Inventory: map[string]int{}, Flags: map[string]bool{}}
}

func TestRunHelpBirdEndToEnd(t *testing.T) {
	c := catalogOf(helpBird())
	s := emptyState()

	res := Run([]string{"help_bird"}, types.OnEnter, s, c, nil)

	if got := res.State.Inventory["gratitude_token"]; got != 1 {
		t.Errorf("gratitude_token = %d, want 1", got)
	}
	if !res.State.Flags["helped_bird"] {
		t.Error("helped_bird should be set")
	}
	if len(res.Directives) != 1 || res.Directives[0].Description != "You help the bird." {
		t.Fatalf("directives = %+v", res.Directives)
	}
	if res.Directives[0].Kind != types.ModalOutcome {
		t.Errorf("kind = %q, want outcome", res.Directives[0].Kind)
	}
	if len(s.Inventory) != 0 || len(s.Flags) != 0 {
		t.Error("input state was mutated")
	}

	again := Run([]string{"help_bird"}, types.OnEnter, res.State, c, nil)
	if again.State != res.State {
		t.Error("second run should return the same state")
	}
	if len(again.Directives) != 0 {
		t.Errorf("second run directives = %+v, want none", again.Directives)
	}
	if len(again.Diagnostics) != 1 || again.Diagnostics[0].Code != DiagConditionsFailed {
		t.Errorf("diagnostics = %+v", again.Diagnostics)
	}
}

func TestRunFirstMatchingOutcome(t *testing.T) {
	a := types.Action{
		ID:      "door",
		Trigger: types.OnEnter,
		Outcomes: []types.Outcome{
			{Description: "locked", Conditions: []types.Condition{{Type: types.HasItem, Key: "key"}}},
			{Description: "first open"},
			{Description: "second open"},
		},
	}
	res := Run([]string{"door"}, types.OnEnter, emptyState(), catalogOf(a), nil)
	if len(res.Directives) != 1 || res.Directives[0].Description != "first open" {
		t.Errorf("directives = %+v, want only 'first open'", res.Directives)
	}
}

func TestRunTriggerGating(t *testing.T) {
	a := helpBird()
	a.Trigger = types.OnExit
	s := emptyState()

	res := Run([]string{a.ID}, types.OnEnter, s, catalogOf(a), nil)
	if res.State != s {
		t.Error("state should be unchanged")
	}
	if len(res.Directives) != 0 || len(res.Events) != 0 {
		t.Errorf("got directives %v events %v", res.Directives, res.Events)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != DiagTriggerMismatch {
		t.Errorf("diagnostics = %+v", res.Diagnostics)
	}
}

func TestRunUnknownActionSkipped(t *testing.T) {
	s := emptyState()
	res := Run([]string{"nonexistent"}, types.OnEnter, s, catalogOf(), nil)
	if res.State != s {
		t.Error("state should be returned unchanged")
	}
	if len(res.Directives) != 0 {
		t.Errorf("directives = %+v", res.Directives)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != DiagActionNotFound {
		t.Errorf("diagnostics = %+v", res.Diagnostics)
	}
}

func TestRunNilCatalog(t *testing.T) {
	s := &types.GameState{}
	res := Run([]string{"nonexistent"}, types.OnEnter, s, nil, nil)
	if res.State != s {
		t.Error("state should be returned unchanged")
	}
	if len(res.Directives) != 0 {
		t.Errorf("directives = %+v", res.Directives)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != DiagActionNotFound {
		t.Errorf("diagnostics = %+v", res.Diagnostics)
	}
}

func TestRunNegativeAddItemKeepsCountAtZero(t *testing.T) {
	a := types.Action{
		ID: "a", Trigger: types.OnEnter,
		Outcomes: []types.Outcome{{StateChanges: []types.StateChange{
			{Type: types.AddItem, Key: "gold", Amount: intp(-3)},
		}}},
	}
	res := Run([]string{"a"}, types.OnEnter, emptyState(), catalogOf(a), nil)
	if got := res.State.Inventory["gold"]; got != 0 {
		t.Errorf("gold = %d, want 0", got)
	}
	if len(res.Events) != 0 {
		t.Errorf("events = %+v, want none", res.Events)
	}
}

func TestRunBatchSeesEarlierChanges(t *testing.T) {
	first := types.Action{
		ID: "open_gate", Trigger: types.OnEnter,
		Outcomes: []types.Outcome{{StateChanges: []types.StateChange{{Type: types.SetFlag, Key: "gate_open"}}}},
	}
	second := types.Action{
		ID: "walk_through", Trigger: types.OnEnter,
		Conditions: []types.Condition{{Type: types.FlagSet, Key: "gate_open"}},
		Outcomes:   []types.Outcome{{Description: "You walk through the gate."}},
	}
	res := Run([]string{"open_gate", "walk_through"}, types.OnEnter, emptyState(), catalogOf(first, second), nil)
	if len(res.Directives) != 1 || res.Directives[0].ActionID != "walk_through" {
		t.Errorf("directives = %+v, want walk_through", res.Directives)
	}

	// Reversed order: the guard is checked before the flag exists.
	res = Run([]string{"walk_through", "open_gate"}, types.OnEnter, emptyState(), catalogOf(first, second), nil)
	if len(res.Directives) != 0 {
		t.Errorf("directives = %+v, want none", res.Directives)
	}
}

func TestRunLastOverrideWins(t *testing.T) {
	a := types.Action{ID: "a", Trigger: types.OnEnter, Outcomes: []types.Outcome{{NextSceneOverride: "cave"}}}
	b := types.Action{ID: "b", Trigger: types.OnEnter, Outcomes: []types.Outcome{{NextSceneOverride: "river"}}}

	res := Run([]string{"a", "b"}, types.OnEnter, emptyState(), catalogOf(a, b), nil)
	if res.Override != "river" {
		t.Errorf("override = %q, want river", res.Override)
	}
	found := false
	for _, d := range res.Diagnostics {
		if d.Code == DiagOverrideReplaced && d.ActionID == "b" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected override_replaced diagnostic, got %+v", res.Diagnostics)
	}
}

func TestRunFailMessage(t *testing.T) {
	a := types.Action{
		ID: "climb", Trigger: types.OnChoice,
		Conditions:  []types.Condition{{Type: types.HasItem, Key: "rope"}},
		Outcomes:    []types.Outcome{{Description: "You climb."}},
		FailMessage: "You need a rope.",
	}
	res := Run([]string{"climb"}, types.OnChoice, emptyState(), catalogOf(a), nil)
	if len(res.Directives) != 1 {
		t.Fatalf("directives = %+v", res.Directives)
	}
	d := res.Directives[0]
	if d.Kind != types.ModalNotice || d.Description != "You need a rope." || d.ID != "climb:fail" {
		t.Errorf("notice = %+v", d)
	}
}

func TestRunEmptyOutcomeNoModal(t *testing.T) {
	a := types.Action{
		ID: "quiet", Trigger: types.OnEnter,
		Outcomes: []types.Outcome{{StateChanges: []types.StateChange{{Type: types.AddItem, Key: "coin"}}}},
	}
	res := Run([]string{"quiet"}, types.OnEnter, emptyState(), catalogOf(a), nil)
	if len(res.Directives) != 0 {
		t.Errorf("directives = %+v, want none", res.Directives)
	}
	if res.State.Inventory["coin"] != 1 {
		t.Errorf("coin = %d, want 1", res.State.Inventory["coin"])
	}
	if len(res.Events) != 1 {
		t.Errorf("events = %+v", res.Events)
	}
}

func TestRunNoMatchingOutcome(t *testing.T) {
	a := types.Action{
		ID: "gate", Trigger: types.OnEnter,
		Outcomes: []types.Outcome{{Conditions: []types.Condition{{Type: types.FlagSet, Key: "x"}}}},
	}
	res := Run([]string{"gate"}, types.OnEnter, emptyState(), catalogOf(a), nil)
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != DiagNoMatchingOutcome {
		t.Errorf("diagnostics = %+v", res.Diagnostics)
	}
}

func TestRunUnsupportedConditionPasses(t *testing.T) {
	a := types.Action{
		ID: "odd", Trigger: types.OnEnter,
		Conditions: []types.Condition{{Type: "moonPhase", Key: "full"}},
		Outcomes:   []types.Outcome{{Description: "The moon glows."}},
	}
	res := Run([]string{"odd"}, types.OnEnter, emptyState(), catalogOf(a), nil)
	if len(res.Directives) != 1 {
		t.Errorf("directives = %+v, want one", res.Directives)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != DiagUnsupportedCondition {
		t.Errorf("diagnostics = %+v", res.Diagnostics)
	}
}

func TestResolveChoiceRunsNextAction(t *testing.T) {
	a := types.Action{
		ID: "feed", Trigger: types.OnChoice,
		Outcomes: []types.Outcome{{Description: "The bird eats.", NextSceneOverride: "nest"}},
	}
	ch := types.Choice{
		Text:         "Feed it",
		NextAction:   "feed",
		NextScene:    "forest",
		StateChanges: []types.StateChange{{Type: types.RemoveItem, Key: "bread"}},
	}
	s := emptyState()
	s.Inventory["bread"] = 2
	origin := types.Modal{ID: "help_bird", Kind: types.ModalOutcome}

	cr := ResolveChoice(origin, ch, s, catalogOf(a), nil)
	if cr.State.Inventory["bread"] != 1 {
		t.Errorf("bread = %d, want 1", cr.State.Inventory["bread"])
	}
	if cr.Override != "nest" {
		t.Errorf("override = %q, want nest (action override beats nextScene)", cr.Override)
	}
	if !cr.Dismiss || cr.Ack != nil {
		t.Errorf("dismiss = %v ack = %v", cr.Dismiss, cr.Ack)
	}
	if len(cr.Directives) != 1 || cr.Directives[0].Description != "The bird eats." {
		t.Errorf("directives = %+v", cr.Directives)
	}
	if len(cr.Events) != 1 || cr.Events[0].Type != "item_removed" {
		t.Errorf("events = %+v", cr.Events)
	}
}

func TestResolveChoiceFallsBackToDestination(t *testing.T) {
	cr := ResolveChoice(types.Modal{}, types.Choice{Text: "Go", NextNodeID: "road"}, emptyState(), catalogOf(), nil)
	if cr.Override != "road" {
		t.Errorf("override = %q, want road", cr.Override)
	}
}

func TestResolveChoiceResultMessage(t *testing.T) {
	ch := types.Choice{
		Text:          "Wave",
		ResultMessage: "The bird waves back.",
		NextScene:     "meadow",
		StateChanges:  []types.StateChange{{Type: types.SetFlag, Key: "waved"}},
	}
	origin := types.Modal{ID: "help_bird", ActionID: "help_bird", Kind: types.ModalOutcome}

	cr := ResolveChoice(origin, ch, emptyState(), catalogOf(), nil)
	if !cr.State.Flags["waved"] {
		t.Error("stateChanges should apply before the acknowledgement")
	}
	if cr.Ack == nil {
		t.Fatal("expected acknowledgement modal")
	}
	if cr.Ack.ID != "help_bird:result" || cr.Ack.ButtonText != DefaultResultButtonText {
		t.Errorf("ack = %+v", cr.Ack)
	}
	if len(cr.Ack.Choices) != 1 || cr.Ack.Choices[0].NextScene != "meadow" {
		t.Errorf("ack continuation = %+v", cr.Ack.Choices)
	}
	if cr.Override != "" || cr.Dismiss {
		t.Errorf("override = %q dismiss = %v, want deferred", cr.Override, cr.Dismiss)
	}
}

func TestDestination(t *testing.T) {
	tests := []struct {
		ch   types.Choice
		want string
	}{
		{types.Choice{NextScene: "a", NextNodeID: "b"}, "a"},
		{types.Choice{NextNodeID: "b"}, "b"},
		{types.Choice{}, ""},
	}
	for _, tt := range tests {
		if got := Destination(tt.ch); got != tt.want {
			t.Errorf("Destination(%+v) = %q, want %q", tt.ch, got, tt.want)
		}
	}
}
