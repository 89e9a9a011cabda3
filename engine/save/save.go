// Package save implements JSON serialization and deserialization of a play
// session.
package save

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/nathoo/cyoa/engine"
	"github.com/nathoo/cyoa/engine/state"
	"github.com/nathoo/cyoa/types"
)

// FormatVersion is written to every save and checked on load. Version 2
// added the modal queue; version 1 saves load with no modals open.
const FormatVersion = 2

// DefaultName is used when the player saves without naming the slot.
const DefaultName = "quicksave"

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Format      int             `json:"format"`
	Version     string          `json:"version"`
	Game        string          `json:"game"`
	SessionID   string          `json:"session_id"`
	RNGSeed     int64           `json:"rng_seed"`
	RNGPosition int64           `json:"rng_position"`
	State       types.GameState `json:"state"`
	Modals      []types.Modal   `json:"modals,omitempty"`
}

// NewSessionID returns a fresh identifier for a play session.
func NewSessionID() string {
	return uuid.NewString()
}

// Save serializes the session to JSON bytes. An empty sessionID gets a new one.
func Save(e *engine.Engine, sessionID string) ([]byte, error) {
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	data := SaveData{
		Format:      FormatVersion,
		Version:     e.Catalog.Game.Version,
		Game:        e.Catalog.Game.Title,
		SessionID:   sessionID,
		RNGSeed:     e.RNG.Seed(),
		RNGPosition: e.RNG.Position(),
		State:       *state.Clone(e.State),
		Modals:      e.Modals.All(),
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Format > FormatVersion {
		return nil, fmt.Errorf("save format %d is newer than supported %d", sd.Format, FormatVersion)
	}
	if _, err := uuid.Parse(sd.SessionID); err != nil {
		sd.SessionID = NewSessionID()
	}
	// Ensure maps are never nil after load.
	sd.State = *state.Clone(&sd.State)
	return &sd, nil
}

// ApplySave restores a loaded save into the session, including the modals
// that were open. The save must belong to the same game and its scene must
// exist in the catalog.
func ApplySave(e *engine.Engine, sd *SaveData) error {
	if sd.Game != e.Catalog.Game.Title {
		return fmt.Errorf("save is for %q, not %q", sd.Game, e.Catalog.Game.Title)
	}
	if _, ok := e.Catalog.Scenes[sd.State.CurrentSceneID]; !ok {
		return fmt.Errorf("%w: %q", engine.ErrNoScene, sd.State.CurrentSceneID)
	}
	e.Restore(&sd.State)
	e.Modals.Push(sd.Modals...)
	e.RestoreRNG(sd.RNGSeed, sd.RNGPosition)
	return nil
}

// Path returns the file a named save slot lives in.
func Path(dir, name string) string {
	if name == "" {
		name = DefaultName
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return filepath.Join(dir, filepath.Base(name))
}

// WriteFile saves the session to a named slot under dir.
func WriteFile(dir, name string, e *engine.Engine, sessionID string) (string, error) {
	data, err := Save(e, sessionID)
	if err != nil {
		return "", fmt.Errorf("encoding save: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating save dir: %w", err)
	}
	path := Path(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing save: %w", err)
	}
	return path, nil
}

// ReadFile loads a named slot from dir and applies it to the session.
func ReadFile(dir, name string, e *engine.Engine) (*SaveData, error) {
	data, err := os.ReadFile(Path(dir, name))
	if err != nil {
		return nil, fmt.Errorf("reading save: %w", err)
	}
	sd, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("decoding save: %w", err)
	}
	if err := ApplySave(e, sd); err != nil {
		return nil, err
	}
	return sd, nil
}
