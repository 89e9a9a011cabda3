package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/cyoa/engine"
)

// renderStatusBar produces a full-width inverted status line showing the
// current scene, time of day, health and inventory.
func (m Model) renderStatusBar() string {
	s := m.engine.State

	sceneName := engine.DisplayName(s.CurrentSceneID)
	if scene, ok := m.engine.Scene(); ok {
		sceneName = engine.SceneTitle(scene)
	}

	left := fmt.Sprintf(" %s | %s", sceneName, s.TimeOfDay)
	if s.Season != "" {
		left += ", " + s.Season
	}
	right := fmt.Sprintf("HP:%d ", s.Health)

	// Show inventory items if they fit, otherwise just count.
	if items := engine.InventoryItems(s); len(items) > 0 {
		candidate := fmt.Sprintf("Inv: %s | HP:%d ", strings.Join(items, ", "), s.Health)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Inv: %d | HP:%d ", len(items), s.Health)
		}
	}

	// Breadcrumb depth, when there is somewhere to go back to.
	if n := len(s.Breadcrumbs); n > 1 {
		right = fmt.Sprintf("Depth:%d | %s", n, right)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
