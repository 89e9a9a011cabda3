// Package tui provides a Bubble Tea terminal UI for the cyoa engine.
package tui

import "slices"

// History keeps recent input lines, oldest first, with a cursor for
// Up/Down recall. Re-entering a line moves it to the newest slot.
type History struct {
	lines []string
	limit int
	pos   int // len(lines) when not browsing
}

// NewHistory creates a history holding at most limit lines.
func NewHistory(limit int) *History {
	return &History{lines: make([]string, 0, limit), limit: limit}
}

// Push records a line and stops browsing.
func (h *History) Push(line string) {
	if i := slices.Index(h.lines, line); i >= 0 {
		h.lines = slices.Delete(h.lines, i, i+1)
	}
	h.lines = append(h.lines, line)
	if over := len(h.lines) - h.limit; over > 0 {
		h.lines = slices.Delete(h.lines, 0, over)
	}
	h.pos = len(h.lines)
}

// Prev steps back to an older line, stopping at the oldest.
// Returns ("", false) if history is empty.
func (h *History) Prev() (string, bool) {
	if len(h.lines) == 0 {
		return "", false
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.lines[h.pos], true
}

// Next steps forward to a newer line. Returns ("", false) when stepping
// past the newest, which ends browsing.
func (h *History) Next() (string, bool) {
	if h.pos >= len(h.lines)-1 {
		h.pos = len(h.lines)
		return "", false
	}
	h.pos++
	return h.lines[h.pos], true
}

// ResetCursor ends browsing; the next Prev returns the newest line.
func (h *History) ResetCursor() {
	h.pos = len(h.lines)
}

// Len returns the number of stored lines.
func (h *History) Len() int {
	return len(h.lines)
}
