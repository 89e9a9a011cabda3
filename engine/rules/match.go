package rules

import "github.com/nathoo/cyoa/types"

// MatchTrigger reports whether an action fires for the given trigger.
func MatchTrigger(a types.Action, trigger types.Trigger) bool {
	return a.Trigger == trigger
}

// SelectOutcome scans outcomes in order and returns the index of the first
// whose own conditions pass, or -1 when none do. Outcome conditions are
// independent of the parent action's conditions. Scanning stops at the
// first match, so random conditions on later outcomes are never drawn.
func SelectOutcome(outcomes []types.Outcome, s *types.GameState, rng Rand) (int, []types.ConditionReport) {
	var reports []types.ConditionReport
	for i, o := range outcomes {
		ev := Evaluate(o.Conditions, s, rng)
		reports = append(reports, ev.Reports...)
		if ev.Passed {
			return i, reports
		}
	}
	return -1, reports
}
