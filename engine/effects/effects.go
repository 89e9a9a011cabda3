// Package effects implements the state mutator. Apply never writes to its
// input: it returns a new snapshot with the changes applied in order.
package effects

import (
	"github.com/nathoo/cyoa/engine/state"
	"github.com/nathoo/cyoa/types"
)

// Event types emitted by Apply.
const (
	EventItemAdded   = "item_added"
	EventItemRemoved = "item_removed"
	EventFlagSet     = "flag_set"
)

// Apply applies changes to a copy of s, in declaration order, each change
// seeing the effect of the ones before it. Returns the new state and one
// event per applied change. Item counts never go below zero; an addItem or
// removeItem with an amount below 1 is skipped.
func Apply(s *types.GameState, changes []types.StateChange) (*types.GameState, []types.Event) {
	if s == nil {
		s = &types.GameState{}
	}
	next := state.Clone(s)
	var events []types.Event

	for _, ch := range changes {
		switch ch.Type {
		case types.AddItem:
			n := amount(ch)
			if n < 1 {
				continue
			}
			next.Inventory[ch.Key] = max(next.Inventory[ch.Key]+n, 0)
			events = append(events, types.Event{
				Type: EventItemAdded,
				Data: map[string]any{"item": ch.Key, "amount": n, "count": next.Inventory[ch.Key]},
			})

		case types.RemoveItem:
			n := amount(ch)
			if n < 1 {
				continue
			}
			held := max(next.Inventory[ch.Key], 0)
			remaining := max(held-n, 0)
			next.Inventory[ch.Key] = remaining
			events = append(events, types.Event{
				Type: EventItemRemoved,
				Data: map[string]any{"item": ch.Key, "amount": held - remaining, "count": remaining},
			})

		case types.SetFlag:
			next.Flags[ch.Key] = true
			events = append(events, types.Event{
				Type: EventFlagSet,
				Data: map[string]any{"flag": ch.Key},
			})

		default:
			// Unknown change type: ignored.
		}
	}

	return next, events
}

// amount returns the change amount, defaulting to 1 when unset.
func amount(ch types.StateChange) int {
	if ch.Amount == nil {
		return 1
	}
	return *ch.Amount
}
