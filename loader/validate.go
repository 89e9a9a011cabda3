package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/cyoa/engine/rules"
	"github.com/nathoo/cyoa/engine/state"
	"github.com/nathoo/cyoa/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Known triggers.
var validTriggers = map[types.Trigger]bool{
	types.OnEnter: true, types.OnExit: true, types.OnChoice: true,
	types.OnItem: true, types.OnFlag: true, types.OnRep: true,
	types.OnHealth: true, types.OnAlignment: true, types.OnRandom: true,
}

var validComparators = map[types.Comparator]bool{
	types.Gte: true, types.Eq: true, types.Lte: true, types.Neq: true,
}

var validTimesOfDay = map[types.TimeOfDay]bool{
	types.Morning: true, types.Afternoon: true, types.Dusk: true, types.Night: true,
}

// validate checks the catalog's field shapes and references. Shape
// problems are errors; dangling references are warnings because the
// runtime skips them silently.
func validate(c *state.Catalog) *ValidationError {
	ve := &ValidationError{}

	// Game title required.
	if c.Game.Title == "" {
		ve.errorf("Game.title is required")
	}

	// Start scene exists.
	if c.Game.Start == "" {
		ve.errorf("Game.start is required")
	} else if _, ok := c.Scenes[c.Game.Start]; !ok {
		ve.errorf("start scene %q not found in defined scenes", c.Game.Start)
	}
	if t := c.Game.Initial.TimeOfDay; t != "" && !validTimesOfDay[t] {
		ve.errorf("Game.initial.timeOfDay %q is not one of morning, afternoon, dusk, night", t)
	}

	referenced := map[string]bool{}

	for _, id := range sortedKeys(c.Scenes) {
		scene := c.Scenes[id]
		where := fmt.Sprintf("scene %q", id)
		if id == "" {
			ve.errorf("scene with empty ID")
		}
		if scene.ParentSceneID != "" {
			if _, ok := c.Scenes[scene.ParentSceneID]; !ok {
				ve.warnf("%s parentSceneId %q is not a defined scene", where, scene.ParentSceneID)
			}
		}
		for _, aid := range scene.Actions {
			referenced[aid] = true
			if _, ok := c.Actions[aid]; !ok {
				ve.warnf("%s lists undefined action %q", where, aid)
			}
		}
		validateChoices(scene.Choices, where, c, referenced, ve)
	}

	for _, id := range sortedKeys(c.Actions) {
		a := c.Actions[id]
		where := fmt.Sprintf("action %q", id)

		if a.Trigger == "" {
			ve.errorf("%s has no trigger", where)
		} else if !validTriggers[a.Trigger] {
			ve.errorf("%s has unknown trigger %q", where, a.Trigger)
		}
		validateConditions(a.Conditions, where, ve)

		if len(a.Outcomes) == 0 {
			ve.warnf("%s has no outcomes and will never do anything", where)
		}
		for i, o := range a.Outcomes {
			owhere := fmt.Sprintf("%s outcome %d", where, i+1)
			validateConditions(o.Conditions, owhere, ve)
			validateStateChanges(o.StateChanges, owhere, ve)
			if o.NextSceneOverride != "" {
				if _, ok := c.Scenes[o.NextSceneOverride]; !ok {
					ve.warnf("%s nextSceneOverride %q is not a defined scene", owhere, o.NextSceneOverride)
				}
			}
			validateChoices(o.Choices, owhere, c, referenced, ve)
		}
	}

	for _, id := range sortedKeys(c.Actions) {
		if !referenced[id] {
			ve.warnf("action %q is not used by any scene or choice", id)
		}
	}

	return ve
}

func validateChoices(choices []types.Choice, where string, c *state.Catalog, referenced map[string]bool, ve *ValidationError) {
	for i, ch := range choices {
		cwhere := fmt.Sprintf("%s choice %d", where, i+1)
		if ch.Text == "" {
			ve.errorf("%s has no text", cwhere)
		}
		for _, dest := range []string{ch.NextNodeID, ch.NextScene} {
			if dest == "" {
				continue
			}
			if _, ok := c.Scenes[dest]; !ok {
				ve.warnf("%s leads to undefined scene %q", cwhere, dest)
			}
		}
		if ch.NextAction != "" {
			referenced[ch.NextAction] = true
			a, ok := c.Actions[ch.NextAction]
			switch {
			case !ok:
				ve.warnf("%s nextAction %q is not a defined action", cwhere, ch.NextAction)
			case a.Trigger != types.OnChoice:
				ve.warnf("%s nextAction %q listens for %s and will not fire on a choice", cwhere, ch.NextAction, a.Trigger)
			}
		}
		if ch.ResultButtonText != "" && ch.ResultMessage == "" {
			ve.warnf("%s has resultButtonText without resultMessage", cwhere)
		}
		validateStateChanges(ch.StateChanges, cwhere, ve)
	}
}

// validateConditions enforces the field set of each condition variant.
func validateConditions(conditions []types.Condition, where string, ve *ValidationError) {
	for i, cond := range conditions {
		cwhere := fmt.Sprintf("%s condition %d (%s)", where, i+1, cond.Type)

		if !rules.IsKnownCondition(cond.Type) {
			ve.warnf("%s: unknown condition type, it will always pass", cwhere)
			continue
		}

		switch cond.Type {
		case types.HasItem, types.DoesNotHaveItem:
			requireKey(cond, cwhere, ve)
			forbidChance(cond, cwhere, ve)
			if cond.Value != nil {
				if n, ok := intValue(cond.Value); !ok || n < 0 {
					ve.errorf("%s: value must be a non-negative integer, got %v", cwhere, cond.Value)
				}
			}
			checkComparator(cond, cwhere, ve)

		case types.FlagSet, types.FlagNotSet:
			requireKey(cond, cwhere, ve)
			forbidChance(cond, cwhere, ve)
			if cond.Value != nil {
				ve.errorf("%s: value is not allowed", cwhere)
			}
			if cond.Comparator != "" {
				ve.errorf("%s: comparator is not allowed", cwhere)
			}

		case types.Random:
			if cond.Key != "" {
				ve.errorf("%s: key is not allowed", cwhere)
			}
			if cond.Comparator != "" {
				ve.errorf("%s: comparator is not allowed", cwhere)
			}
			if cond.Value != nil {
				ve.errorf("%s: value is not allowed, use chance", cwhere)
			}
			switch {
			case cond.Chance == nil:
				ve.warnf("%s: no chance given, it will always pass", cwhere)
			case *cond.Chance < 0 || *cond.Chance > 1:
				ve.errorf("%s: chance must be between 0 and 1, got %g", cwhere, *cond.Chance)
			}

		case types.Reputation:
			requireKey(cond, cwhere, ve)
			forbidChance(cond, cwhere, ve)
			if _, ok := intValue(cond.Value); !ok {
				ve.errorf("%s: value must be an integer, got %v", cwhere, cond.Value)
			}
			checkComparator(cond, cwhere, ve)

		case types.TimeOfDayIs, types.SeasonIs:
			if cond.Key != "" {
				ve.errorf("%s: key is not allowed", cwhere)
			}
			if cond.Comparator != "" {
				ve.errorf("%s: comparator is not allowed", cwhere)
			}
			forbidChance(cond, cwhere, ve)
			s, ok := cond.Value.(string)
			switch {
			case !ok || s == "":
				ve.errorf("%s: value must be a non-empty string", cwhere)
			case cond.Type == types.TimeOfDayIs && !validTimesOfDay[types.TimeOfDay(s)]:
				ve.errorf("%s: %q is not one of morning, afternoon, dusk, night", cwhere, s)
			}
		}
	}
}

// validateStateChanges enforces the field set of each state change variant.
func validateStateChanges(changes []types.StateChange, where string, ve *ValidationError) {
	for i, ch := range changes {
		cwhere := fmt.Sprintf("%s state change %d (%s)", where, i+1, ch.Type)
		switch ch.Type {
		case types.AddItem, types.RemoveItem:
			if ch.Amount != nil && *ch.Amount < 1 {
				ve.errorf("%s: amount must be at least 1, got %d", cwhere, *ch.Amount)
			}
		case types.SetFlag:
			if ch.Amount != nil {
				ve.errorf("%s: amount is not allowed", cwhere)
			}
		default:
			ve.errorf("%s: unknown state change type", cwhere)
			continue
		}
		if ch.Key == "" {
			ve.errorf("%s: key is required", cwhere)
		}
	}
}

func requireKey(cond types.Condition, where string, ve *ValidationError) {
	if cond.Key == "" {
		ve.errorf("%s: key is required", where)
	}
}

func forbidChance(cond types.Condition, where string, ve *ValidationError) {
	if cond.Chance != nil {
		ve.errorf("%s: chance is only allowed on random", where)
	}
}

func checkComparator(cond types.Condition, where string, ve *ValidationError) {
	if cond.Comparator != "" && !validComparators[cond.Comparator] {
		ve.errorf("%s: unknown comparator %q", where, cond.Comparator)
	}
}

// intValue reports whether v is a whole number as decoded from Lua, YAML
// or JSON.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
