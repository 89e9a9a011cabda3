// Package state holds the immutable content catalog and read helpers over
// game state snapshots.
package state

import (
	"maps"
	"slices"

	"github.com/nathoo/cyoa/types"
)

// Catalog holds the immutable game content. It is read-only once loaded.
type Catalog struct {
	Game    types.GameDef
	Scenes  map[string]types.Scene
	Actions map[string]types.Action
}

// NewState creates a fresh game state from the catalog's template.
// The current scene is left empty until the start scene is entered.
func NewState(c *Catalog) *types.GameState {
	t := c.Game.Initial
	s := &types.GameState{
		Inventory:       copyMap(t.Inventory),
		Flags:           copyMap(t.Flags),
		Reputation:      copyMap(t.Reputation),
		Health:          t.Health,
		NPCs:            copyMap(t.NPCs),
		CompletedScenes: []string{},
		TimeOfDay:       t.TimeOfDay,
		Season:          t.Season,
		Breadcrumbs:     []string{},
	}
	if s.TimeOfDay == "" {
		s.TimeOfDay = types.Morning
	}
	return s
}

// Clone returns a deep copy of s. Nil maps and slices come back non-nil.
func Clone(s *types.GameState) *types.GameState {
	if s == nil {
		return nil
	}
	c := *s
	c.Inventory = copyMap(s.Inventory)
	c.Flags = copyMap(s.Flags)
	c.Reputation = copyMap(s.Reputation)
	c.NPCs = copyMap(s.NPCs)
	c.CompletedScenes = copySlice(s.CompletedScenes)
	c.Breadcrumbs = copySlice(s.Breadcrumbs)
	return &c
}

// ItemCount returns how many of an item the player holds. Absent keys are 0.
func ItemCount(s *types.GameState, key string) int {
	return s.Inventory[key]
}

// GetFlag returns the value of a flag. Unset flags return false.
func GetFlag(s *types.GameState, key string) bool {
	return s.Flags[key]
}

// Reputation returns the standing with a faction. Absent keys are 0.
func Reputation(s *types.GameState, key string) int {
	return s.Reputation[key]
}

// VisitScene returns a copy of s with the player moved to sceneID. The
// scene being left is appended to CompletedScenes. The breadcrumb trail
// gains sceneID, or is cut back to it when the scene is already on it.
func VisitScene(s *types.GameState, sceneID string) *types.GameState {
	next := Clone(s)
	if s.CurrentSceneID != "" && s.CurrentSceneID != sceneID {
		next.CompletedScenes = append(next.CompletedScenes, s.CurrentSceneID)
	}
	next.CurrentSceneID = sceneID
	if i := slices.Index(next.Breadcrumbs, sceneID); i >= 0 {
		next.Breadcrumbs = next.Breadcrumbs[:i+1]
	} else {
		next.Breadcrumbs = append(next.Breadcrumbs, sceneID)
	}
	return next
}

// CurrentScene returns the scene the player is in, if it exists.
func CurrentScene(s *types.GameState, c *Catalog) (types.Scene, bool) {
	scene, ok := c.Scenes[s.CurrentSceneID]
	return scene, ok
}

// SceneChoices returns the choices offered by a scene.
func SceneChoices(c *Catalog, sceneID string) []types.Choice {
	if scene, ok := c.Scenes[sceneID]; ok {
		return scene.Choices
	}
	return nil
}

// SceneActions returns the action IDs attached to a scene.
func SceneActions(c *Catalog, sceneID string) []string {
	if scene, ok := c.Scenes[sceneID]; ok {
		return scene.Actions
	}
	return nil
}

// Ancestors returns the parent chain of a scene, nearest first. Cycles in
// parentSceneId links are cut at the first repeat.
func Ancestors(c *Catalog, sceneID string) []string {
	var chain []string
	seen := map[string]bool{sceneID: true}
	for {
		scene, ok := c.Scenes[sceneID]
		if !ok || scene.ParentSceneID == "" || seen[scene.ParentSceneID] {
			return chain
		}
		sceneID = scene.ParentSceneID
		seen[sceneID] = true
		chain = append(chain, sceneID)
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	maps.Copy(out, m)
	return out
}

func copySlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
