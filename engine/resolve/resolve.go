// Package resolve maps player intents to choice indexes.
package resolve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nathoo/cyoa/types"
)

// AmbiguityError indicates multiple choices matched the input.
type AmbiguityError struct {
	Text       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %q? (%s)", e.Text, names)
}

// NotFoundError indicates no choice matched the input.
type NotFoundError struct {
	Text string
}

func (e *NotFoundError) Error() string {
	if e.Text == "" {
		return "choose what?"
	}
	return fmt.Sprintf("there is no choice like %q", e.Text)
}

// Choice returns the zero-based index of the choice an intent selects.
// Numbers are 1-based; text matches a label exactly, then by words.
func Choice(choices []types.Choice, intent types.Intent) (int, error) {
	if intent.Number > 0 {
		if intent.Number > len(choices) {
			return -1, &NotFoundError{Text: fmt.Sprint(intent.Number)}
		}
		return intent.Number - 1, nil
	}
	if intent.Text == "" {
		return -1, &NotFoundError{}
	}

	query := strings.ToLower(intent.Text)

	// 1. Exact label match.
	for i, ch := range choices {
		if strings.ToLower(ch.Text) == query {
			return i, nil
		}
	}

	// 2. Every query word appears in the label.
	var matches []int
	for i, ch := range choices {
		if matchesWords(ch.Text, query) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return -1, &NotFoundError{Text: intent.Text}
	case 1:
		return matches[0], nil
	default:
		candidates := make([]string, len(matches))
		for i, m := range matches {
			candidates[i] = choices[m].Text
		}
		return -1, &AmbiguityError{Text: intent.Text, Candidates: candidates}
	}
}

// matchesWords checks that every word of query is a word of label,
// ignoring case and trailing punctuation.
// e.g. "bread" matches "Share your bread.", "path" matches "Follow the path".
func matchesWords(label, query string) bool {
	words := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?' || r == ';' || r == ':'
	})
	for _, q := range strings.Fields(query) {
		if !slices.Contains(words, q) {
			return false
		}
	}
	return true
}
