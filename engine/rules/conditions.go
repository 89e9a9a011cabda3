// Package rules implements condition evaluation and per-action rule
// selection: trigger gate, top-level guard, first matching outcome.
package rules

import (
	"fmt"
	"math/rand"

	"github.com/nathoo/cyoa/engine/state"
	"github.com/nathoo/cyoa/types"
)

// Rand is the source of uniform draws in [0,1) for random conditions.
type Rand interface {
	Float64() float64
}

// globalRand is used when no Rand is supplied.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Evaluation is the aggregate outcome of a condition list.
type Evaluation struct {
	Passed  bool
	Reports []types.ConditionReport
}

// Evaluate tests every condition in declaration order and ANDs the results.
// An empty or nil list passes with a single synthetic report. Every
// condition is evaluated even after one fails, so each yields a report.
func Evaluate(conditions []types.Condition, s *types.GameState, rng Rand) Evaluation {
	if len(conditions) == 0 {
		return Evaluation{
			Passed:  true,
			Reports: []types.ConditionReport{{Pass: true, Msg: "no conditions: always passes"}},
		}
	}
	ev := Evaluation{Passed: true, Reports: make([]types.ConditionReport, 0, len(conditions))}
	for _, c := range conditions {
		r := EvalCondition(c, s, rng)
		ev.Reports = append(ev.Reports, r)
		if !r.Pass {
			ev.Passed = false
		}
	}
	return ev
}

// EvalCondition evaluates a single condition against the state.
// Unknown condition types pass so new content never blocks older engines.
func EvalCondition(c types.Condition, s *types.GameState, rng Rand) types.ConditionReport {
	switch c.Type {
	case types.HasItem:
		pass, desc := itemCheck(c, s)
		return report(pass, "hasItem %s", desc)

	case types.DoesNotHaveItem:
		pass, desc := itemCheck(c, s)
		return report(!pass, "doesNotHaveItem not(%s)", desc)

	case types.FlagSet:
		return report(state.GetFlag(s, c.Key), "flagSet %s=%t", c.Key, s.Flags[c.Key])

	case types.FlagNotSet:
		return report(!state.GetFlag(s, c.Key), "flagNotSet %s=%t", c.Key, s.Flags[c.Key])

	case types.Random:
		chance := 1.0
		if c.Chance != nil {
			chance = *c.Chance
		}
		if rng == nil {
			rng = globalRand{}
		}
		draw := rng.Float64()
		return report(draw < chance, "random draw %.3f < chance %.3f", draw, chance)

	case types.Reputation:
		actual := state.Reputation(s, c.Key)
		want := toInt(c.Value)
		cmp := c.Comparator
		if cmp == "" {
			cmp = DefaultReputationComparator
		}
		return report(Compare(actual, cmp, want), "reputation %s: %d %s %d", c.Key, actual, cmp, want)

	case types.TimeOfDayIs:
		want := toString(c.Value)
		return report(string(s.TimeOfDay) == want, "timeOfDayIs %q (now %q)", want, s.TimeOfDay)

	case types.SeasonIs:
		want := toString(c.Value)
		return report(s.Season == want, "seasonIs %q (now %q)", want, s.Season)

	default:
		return report(true, "unsupported condition type %q: passes by default", c.Type)
	}
}

// Defaults applied when a condition omits value or comparator.
const (
	DefaultItemComparator       = types.Gte
	DefaultItemValue            = 1
	DefaultReputationComparator = types.Gte
)

// itemCheck is the shared hasItem test; doesNotHaveItem negates it.
func itemCheck(c types.Condition, s *types.GameState) (bool, string) {
	held := state.ItemCount(s, c.Key)
	want := DefaultItemValue
	if c.Value != nil {
		want = toInt(c.Value)
	}
	cmp := c.Comparator
	if cmp == "" {
		cmp = DefaultItemComparator
	}
	return Compare(held, cmp, want), fmt.Sprintf("%s: %d %s %d", c.Key, held, cmp, want)
}

// Compare applies a comparator. Unrecognized comparators behave as gte.
func Compare(actual int, cmp types.Comparator, want int) bool {
	switch cmp {
	case types.Eq:
		return actual == want
	case types.Lte:
		return actual <= want
	case types.Neq:
		return actual != want
	default:
		return actual >= want
	}
}

// IsKnownCondition reports whether the evaluator implements a condition type.
func IsKnownCondition(t types.ConditionType) bool {
	switch t {
	case types.HasItem, types.DoesNotHaveItem, types.FlagSet, types.FlagNotSet,
		types.Random, types.Reputation, types.TimeOfDayIs, types.SeasonIs:
		return true
	}
	return false
}

func report(pass bool, format string, args ...any) types.ConditionReport {
	return types.ConditionReport{Pass: pass, Msg: fmt.Sprintf(format, args...)}
}

// toInt converts an any value to int, handling float64 from JSON and Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case types.TimeOfDay:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
