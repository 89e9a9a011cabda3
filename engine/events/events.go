// Package events maps state-change events to reactive triggers.
// Dispatch is single pass: actions it selects are run once and the events
// they emit are not dispatched again.
package events

import (
	"github.com/nathoo/cyoa/engine/effects"
	"github.com/nathoo/cyoa/engine/state"
	"github.com/nathoo/cyoa/types"
)

// Firing is one reactive batch: the current scene's actions that listen for
// Trigger.
type Firing struct {
	Trigger   types.Trigger
	ActionIDs []string
}

// TriggerFor returns the reactive trigger an event maps to, if any.
func TriggerFor(e types.Event) (types.Trigger, bool) {
	switch e.Type {
	case effects.EventItemAdded, effects.EventItemRemoved:
		return types.OnItem, true
	case effects.EventFlagSet:
		return types.OnFlag, true
	default:
		return "", false
	}
}

// Dispatch collects the reactive firings caused by events, in order of the
// first event for each trigger. Each trigger fires at most once per call,
// and only for actions attached to the player's current scene.
func Dispatch(evts []types.Event, s *types.GameState, c *state.Catalog) []Firing {
	var firings []Firing
	seen := map[types.Trigger]bool{}

	for _, e := range evts {
		trigger, ok := TriggerFor(e)
		if !ok || seen[trigger] {
			continue
		}
		seen[trigger] = true

		var ids []string
		for _, id := range state.SceneActions(c, s.CurrentSceneID) {
			if a, ok := c.Actions[id]; ok && a.Trigger == trigger {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			firings = append(firings, Firing{Trigger: trigger, ActionIDs: ids})
		}
	}

	return firings
}
