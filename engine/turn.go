package engine

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nathoo/cyoa/engine/parser"
	"github.com/nathoo/cyoa/engine/resolve"
	"github.com/nathoo/cyoa/types"
)

// Turn is the result of one line of player input: the engine step plus the
// narrative lines to show. Open modals are not part of Output; front ends
// render the queue themselves.
type Turn struct {
	Step
	Output []string
}

// Begin enters the start scene and returns the opening narrative.
func (e *Engine) Begin() (Turn, error) {
	st, err := e.Start()
	if err != nil {
		return Turn{}, err
	}
	return Turn{Step: st, Output: e.DescribeScene()}, nil
}

// Input processes one line of player input: parse → resolve → step → output.
// Input errors are reported as output lines, never returned.
func (e *Engine) Input(line string) Turn {
	intent := parser.Parse(line)

	switch intent.Verb {
	case "":
		return Turn{}

	case parser.Look:
		return Turn{Output: e.DescribeScene()}

	case parser.Inventory:
		return Turn{Output: e.DescribeInventory()}

	case parser.Undo:
		if !e.Undo() {
			return Turn{Output: []string{"Nothing to undo."}}
		}
		return Turn{Output: append([]string{"Undone."}, e.DescribeScene()...)}

	case parser.Back:
		st, err := e.Back()
		return e.turn(st, err)

	case parser.Dismiss:
		st, err := e.Dismiss()
		if errors.Is(err, ErrNoModal) {
			return Turn{Output: []string{"There is nothing to dismiss."}}
		}
		return e.turn(st, err)
	}

	// Choose: the front modal takes input before the scene does.
	if front, ok := e.Modals.Front(); ok {
		if len(front.Choices) == 0 {
			st, err := e.Dismiss()
			return e.turn(st, err)
		}
		idx, err := resolve.Choice(front.Choices, intent)
		if err != nil {
			return Turn{Output: []string{sentence(err.Error())}}
		}
		st, err := e.SelectModalChoice(idx)
		return e.turn(st, err)
	}

	scene, _ := e.Scene()
	if len(scene.Choices) == 0 {
		return Turn{Output: []string{"There is nothing to choose here."}}
	}
	idx, err := resolve.Choice(scene.Choices, intent)
	if err != nil {
		return Turn{Output: []string{sentence(err.Error())}}
	}
	st, err := e.Choose(idx)
	return e.turn(st, err)
}

// turn wraps a step, describing the new scene when the player moved.
func (e *Engine) turn(st Step, err error) Turn {
	t := Turn{Step: st}
	if err != nil {
		t.Output = []string{sentence(err.Error()) + "."}
		return t
	}
	if len(st.Scenes) > 0 {
		t.Output = e.DescribeScene()
	}
	return t
}

// DescribeScene renders the current scene: title, description and numbered
// choices.
func (e *Engine) DescribeScene() []string {
	scene, ok := e.Scene()
	if !ok {
		return []string{"You are nowhere."}
	}
	lines := []string{SceneTitle(scene)}
	if scene.Description != "" {
		lines = append(lines, scene.Description)
	}
	if len(scene.Choices) > 0 {
		lines = append(lines, "")
		lines = append(lines, numbered(scene.Choices)...)
	}
	return lines
}

// DescribeModal renders a modal: its text, then numbered choices or the
// acknowledgement button.
func DescribeModal(m types.Modal) []string {
	var lines []string
	if m.Description != "" {
		lines = append(lines, m.Description)
	}
	if m.Kind == types.ModalResult || len(m.Choices) == 0 {
		button := m.ButtonText
		if button == "" {
			button = DefaultResultButtonText
		}
		return append(lines, "["+button+"]")
	}
	return append(lines, numbered(m.Choices)...)
}

// DescribeInventory lists held items with their counts, sorted by name.
func (e *Engine) DescribeInventory() []string {
	items := InventoryItems(e.State)
	if len(items) == 0 {
		return []string{"You are empty-handed."}
	}
	lines := []string{"You are carrying:"}
	for _, it := range items {
		lines = append(lines, "  "+it)
	}
	return lines
}

// InventoryItems returns held items as display strings ("coin x3"), sorted.
// Items with a zero count are left out.
func InventoryItems(s *types.GameState) []string {
	var items []string
	for _, key := range slices.Sorted(maps.Keys(s.Inventory)) {
		n := s.Inventory[key]
		switch {
		case n <= 0:
			continue
		case n == 1:
			items = append(items, DisplayName(key))
		default:
			items = append(items, fmt.Sprintf("%s x%d", DisplayName(key), n))
		}
	}
	return items
}

// SceneTitle is the heading shown for a scene, with its location when set.
func SceneTitle(s types.Scene) string {
	title := DisplayName(s.ID)
	if s.Location != "" {
		title += " (" + DisplayName(s.Location) + ")"
	}
	return title
}

// DisplayName derives a human-readable name from an ID.
// "forest_edge" -> "Forest Edge", "gratitude-token" -> "Gratitude Token".
func DisplayName(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}

func numbered(choices []types.Choice) []string {
	lines := make([]string, len(choices))
	for i, ch := range choices {
		lines[i] = fmt.Sprintf("  %d. %s", i+1, ch.Text)
	}
	return lines
}

// sentence upper-cases the first letter of an error message.
func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
