package rules

import "github.com/nathoo/cyoa/types"

// Status is the terminal state of evaluating one action.
type Status int

const (
	// Selected: an outcome was chosen and should be applied.
	Selected Status = iota
	// TriggerMismatch: the action listens for a different trigger.
	TriggerMismatch
	// ConditionsFailed: the top-level guard failed; show failMessage.
	ConditionsFailed
	// NoOutcome: the guard passed but no outcome's conditions did.
	NoOutcome
)

func (s Status) String() string {
	switch s {
	case Selected:
		return "selected"
	case TriggerMismatch:
		return "trigger_mismatch"
	case ConditionsFailed:
		return "conditions_failed"
	case NoOutcome:
		return "no_matching_outcome"
	default:
		return "unknown"
	}
}

// Decision is the result of running an action's rule pipeline against a
// state, before any effects are applied.
type Decision struct {
	Status       Status
	OutcomeIndex int // valid when Status == Selected
	Outcome      types.Outcome
	Reports      []types.ConditionReport
}

// EvaluateAction runs the per-action pipeline:
//  1. trigger gate
//  2. top-level conditions (ANDed)
//  3. first outcome whose conditions pass
//
// It is pure apart from random draws.
func EvaluateAction(a types.Action, trigger types.Trigger, s *types.GameState, rng Rand) Decision {
	if !MatchTrigger(a, trigger) {
		return Decision{Status: TriggerMismatch, OutcomeIndex: -1}
	}

	guard := Evaluate(a.Conditions, s, rng)
	if !guard.Passed {
		return Decision{Status: ConditionsFailed, OutcomeIndex: -1, Reports: guard.Reports}
	}

	idx, reports := SelectOutcome(a.Outcomes, s, rng)
	reports = append(guard.Reports, reports...)
	if idx < 0 {
		return Decision{Status: NoOutcome, OutcomeIndex: -1, Reports: reports}
	}
	return Decision{
		Status:       Selected,
		OutcomeIndex: idx,
		Outcome:      a.Outcomes[idx],
		Reports:      reports,
	}
}

// UnsupportedConditions returns the condition types in conds that the
// evaluator does not implement.
func UnsupportedConditions(conds []types.Condition) []types.ConditionType {
	var out []types.ConditionType
	for _, c := range conds {
		if !IsKnownCondition(c.Type) {
			out = append(out, c.Type)
		}
	}
	return out
}
