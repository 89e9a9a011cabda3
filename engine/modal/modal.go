// Package modal is the presentation queue the engine's directives are
// committed to. The UI shows the front modal; dismissing it reveals the
// next one.
package modal

import "github.com/nathoo/cyoa/types"

// Queue is a FIFO of modal directives.
type Queue struct {
	items []types.Modal
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends modals in order.
func (q *Queue) Push(ms ...types.Modal) {
	q.items = append(q.items, ms...)
}

// Front returns the modal currently on screen.
func (q *Queue) Front() (types.Modal, bool) {
	if len(q.items) == 0 {
		return types.Modal{}, false
	}
	return q.items[0], true
}

// Replace swaps the modal with the given ID for m, keeping its position.
// Returns false if no modal has that ID.
func (q *Queue) Replace(id string, m types.Modal) bool {
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i] = m
			return true
		}
	}
	return false
}

// Dismiss removes the modal with the given ID. Returns false if absent.
func (q *Queue) Dismiss(id string) bool {
	for i := range q.items {
		if q.items[i].ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of queued modals.
func (q *Queue) Len() int {
	return len(q.items)
}

// All returns a copy of the queued modals, front first.
func (q *Queue) All() []types.Modal {
	out := make([]types.Modal, len(q.items))
	copy(out, q.items)
	return out
}

// Clear drops every queued modal.
func (q *Queue) Clear() {
	q.items = nil
}
