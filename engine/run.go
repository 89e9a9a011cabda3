package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/cyoa/engine/effects"
	"github.com/nathoo/cyoa/engine/rules"
	"github.com/nathoo/cyoa/engine/state"
	"github.com/nathoo/cyoa/types"
)

// Diagnostic codes. None of them change what the player sees.
const (
	DiagActionNotFound       = "action_not_found"
	DiagTriggerMismatch      = "trigger_mismatch"
	DiagConditionsFailed     = "conditions_failed"
	DiagNoMatchingOutcome    = "no_matching_outcome"
	DiagUnsupportedCondition = "unsupported_condition"
	DiagOverrideReplaced     = "override_replaced"
	DiagSceneNotFound        = "scene_not_found"
	DiagRedirectLoop         = "redirect_loop"
)

// DefaultResultButtonText labels acknowledgement modals without their own.
const DefaultResultButtonText = "Continue"

const (
	resultModalSuffix = ":result"
	failModalSuffix   = ":fail"
)

// Run evaluates a batch of actions for one trigger, in list order. Each
// action sees the state produced by the actions before it. The input state
// is never modified; Result.State is the final snapshot (s itself when
// nothing changed).
//
// Missing actions, trigger mismatches, failed guards and actions with no
// matching outcome are no-ops apart from an optional failMessage notice.
// When several outcomes set nextSceneOverride, the last one wins.
func Run(actionIDs []string, trigger types.Trigger, s *types.GameState, c *state.Catalog, rng rules.Rand) types.Result {
	res := types.Result{State: s}

	// A nil catalog behaves as an empty one.
	var actions map[string]types.Action
	if c != nil {
		actions = c.Actions
	}

	for _, id := range actionIDs {
		a, ok := actions[id]
		if !ok {
			res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
				Code: DiagActionNotFound, ActionID: id, Detail: "action is not in the catalog",
			})
			continue
		}

		d := rules.EvaluateAction(a, trigger, res.State, rng)
		res.Diagnostics = append(res.Diagnostics, unsupported(a, d)...)

		switch d.Status {
		case rules.TriggerMismatch:
			res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
				Code: DiagTriggerMismatch, ActionID: id,
				Detail: fmt.Sprintf("action listens for %s, fired with %s", a.Trigger, trigger),
			})
			continue

		case rules.ConditionsFailed:
			res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
				Code: DiagConditionsFailed, ActionID: id, Detail: failedReports(d.Reports),
			})
			if a.FailMessage != "" {
				res.Directives = append(res.Directives, types.Modal{
					ID:          id + failModalSuffix,
					Kind:        types.ModalNotice,
					ActionID:    id,
					Description: a.FailMessage,
				})
			}
			continue

		case rules.NoOutcome:
			res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
				Code: DiagNoMatchingOutcome, ActionID: id,
				Detail: fmt.Sprintf("none of %d outcomes matched", len(a.Outcomes)),
			})
			continue
		}

		o := d.Outcome
		if o.NextSceneOverride != "" {
			if res.Override != "" && res.Override != o.NextSceneOverride {
				res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
					Code: DiagOverrideReplaced, ActionID: id,
					Detail: fmt.Sprintf("override %q replaced by %q", res.Override, o.NextSceneOverride),
				})
			}
			res.Override = o.NextSceneOverride
		}

		if o.Description != "" || len(o.Choices) > 0 {
			res.Directives = append(res.Directives, types.Modal{
				ID:          id,
				Kind:        types.ModalOutcome,
				ActionID:    id,
				Description: o.Description,
				Choices:     o.Choices,
			})
		}

		next, evts := effects.Apply(res.State, o.StateChanges)
		res.State = next
		res.Events = append(res.Events, evts...)
	}

	return res
}

// ChoiceResult is the outcome of resolving a player's choice.
type ChoiceResult struct {
	types.Result

	// Ack, when set, replaces the originating modal. It carries the
	// choice's remaining nextAction/nextScene as its single choice, which
	// runs when the acknowledgement is dismissed.
	Ack *types.Modal

	// Dismiss reports that the originating modal should be closed.
	Dismiss bool
}

// ResolveChoice applies a selected choice:
//  1. the choice's own stateChanges
//  2. a resultMessage replaces the originating modal with an
//     acknowledgement and stops here
//  3. otherwise nextAction runs with trigger onChoice
//  4. the originating modal is dismissed
//
// Result.Override is the nextAction's override if any, else the choice's
// own destination (nextScene, then nextNodeId).
func ResolveChoice(origin types.Modal, ch types.Choice, s *types.GameState, c *state.Catalog, rng rules.Rand) ChoiceResult {
	var cr ChoiceResult
	cr.State = s

	if len(ch.StateChanges) > 0 {
		next, evts := effects.Apply(s, ch.StateChanges)
		cr.State = next
		cr.Events = evts
	}

	if ch.ResultMessage != "" {
		button := ch.ResultButtonText
		if button == "" {
			button = DefaultResultButtonText
		}
		ack := types.Modal{
			ID:          ackID(origin),
			Kind:        types.ModalResult,
			ActionID:    origin.ActionID,
			Description: ch.ResultMessage,
			ButtonText:  button,
		}
		if ch.NextAction != "" || Destination(ch) != "" {
			ack.Choices = []types.Choice{{
				Text:       button,
				NextAction: ch.NextAction,
				NextScene:  Destination(ch),
			}}
		}
		cr.Ack = &ack
		return cr
	}

	if ch.NextAction != "" {
		r := Run([]string{ch.NextAction}, types.OnChoice, cr.State, c, rng)
		cr.State = r.State
		cr.Directives = r.Directives
		cr.Override = r.Override
		cr.Events = append(cr.Events, r.Events...)
		cr.Diagnostics = r.Diagnostics
	}
	if cr.Override == "" {
		cr.Override = Destination(ch)
	}

	cr.Dismiss = true
	return cr
}

// Destination returns where a choice nominally leads: nextScene for modal
// choices, nextNodeId for scene choices.
func Destination(ch types.Choice) string {
	if ch.NextScene != "" {
		return ch.NextScene
	}
	return ch.NextNodeID
}

func ackID(origin types.Modal) string {
	if origin.ID == "" {
		return "choice" + resultModalSuffix
	}
	return origin.ID + resultModalSuffix
}

func unsupported(a types.Action, d rules.Decision) []types.Diagnostic {
	if d.Status == rules.TriggerMismatch {
		return nil
	}
	conds := a.Conditions
	if d.Status == rules.Selected || d.Status == rules.NoOutcome {
		for _, o := range a.Outcomes {
			conds = append(conds[:len(conds):len(conds)], o.Conditions...)
		}
	}
	var out []types.Diagnostic
	for _, t := range rules.UnsupportedConditions(conds) {
		out = append(out, types.Diagnostic{
			Code: DiagUnsupportedCondition, ActionID: a.ID,
			Detail: fmt.Sprintf("condition type %q is not supported and passed by default", t),
		})
	}
	return out
}

func failedReports(reports []types.ConditionReport) string {
	var msgs []string
	for _, r := range reports {
		if !r.Pass {
			msgs = append(msgs, r.Msg)
		}
	}
	return strings.Join(msgs, "; ")
}
