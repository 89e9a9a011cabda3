// Package parser converts player input lines into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/cyoa/types"
)

// Verbs produced by Parse.
const (
	Choose    = "choose"
	Look      = "look"
	Inventory = "inventory"
	Back      = "back"
	Undo      = "undo"
	Dismiss   = "dismiss"
)

var verbAliases = map[string]string{
	// Look
	"l":        Look,
	"look":     Look,
	"describe": Look,
	"where":    Look,

	// Inventory
	"i":         Inventory,
	"inv":       Inventory,
	"inventory": Inventory,
	"items":     Inventory,
	"bag":       Inventory,

	// Back
	"b":      Back,
	"back":   Back,
	"return": Back,

	// Undo
	"u":    Undo,
	"undo": Undo,

	// Dismiss / acknowledge
	"ok":       Dismiss,
	"okay":     Dismiss,
	"dismiss":  Dismiss,
	"continue": Dismiss,
	"close":    Dismiss,
}

// chooseWords introduce an explicit choice: "choose 2", "pick the path".
var chooseWords = map[string]bool{
	"choose": true, "pick": true, "select": true, "c": true, "option": true,
}

// fillerVerbs are dropped from free text so "go to the river" matches a
// choice labelled "The river".
var fillerVerbs = map[string]bool{
	"go": true, "walk": true, "head": true, "follow": true, "try": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true, "to": true,
}

// Parse converts a raw input line into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	if n, ok := number(words[0]); ok && len(words) == 1 {
		return types.Intent{Verb: Choose, Number: n}
	}

	if len(words) == 1 {
		if verb, ok := verbAliases[words[0]]; ok {
			return types.Intent{Verb: verb}
		}
	}

	if chooseWords[words[0]] {
		words = words[1:]
		if len(words) == 1 {
			if n, ok := number(words[0]); ok {
				return types.Intent{Verb: Choose, Number: n}
			}
		}
	}

	words = stripFiller(words)
	if len(words) == 0 {
		return types.Intent{Verb: Choose}
	}
	return types.Intent{Verb: Choose, Text: strings.Join(words, " ")}
}

// number parses a 1-based choice number, accepting "2", "2." and "#2".
func number(w string) (int, bool) {
	w = strings.TrimPrefix(strings.TrimSuffix(w, "."), "#")
	n, err := strconv.Atoi(w)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// stripFiller removes articles and a leading movement verb.
func stripFiller(words []string) []string {
	result := make([]string, 0, len(words))
	for i, w := range words {
		if i == 0 && fillerVerbs[w] && len(words) > 1 {
			continue
		}
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}
