package save

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/cyoa/engine"
	"github.com/nathoo/cyoa/engine/state"
	"github.com/nathoo/cyoa/types"
)

func testCatalog() *state.Catalog {
	return &state.Catalog{
		Game: types.GameDef{
			Title:   "Test Game",
			Version: "1.0",
			Start:   "hall",
			Initial: types.StateTemplate{Health: 5},
		},
		Scenes: map[string]types.Scene{
			"hall":   {ID: "hall", Description: "A hall.", Choices: []types.Choice{{Text: "North", NextNodeID: "garden"}}},
			"garden": {ID: "garden", Description: "A garden."},
		},
		Actions: map[string]types.Action{},
	}
}

func startedEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(testCatalog(), engine.WithSeed(42))
	_, err := e.Start()
	require.NoError(t, err)
	return e
}

func TestRoundTrip(t *testing.T) {
	e := startedEngine(t)
	_, err := e.Choose(0)
	require.NoError(t, err)
	e.State.Inventory["key"] = 2
	e.State.Flags["door_open"] = true
	e.State.Reputation["guild"] = -3
	e.RNG.Float64()
	e.RNG.Float64()

	id := NewSessionID()
	data, err := Save(e, id)
	require.NoError(t, err)

	sd, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, sd.Format)
	assert.Equal(t, "Test Game", sd.Game)
	assert.Equal(t, "1.0", sd.Version)
	assert.Equal(t, id, sd.SessionID)
	assert.Equal(t, int64(42), sd.RNGSeed)
	assert.Equal(t, int64(2), sd.RNGPosition)
	assert.Equal(t, "garden", sd.State.CurrentSceneID)
	assert.Equal(t, 2, sd.State.Inventory["key"])
	assert.True(t, sd.State.Flags["door_open"])
	assert.Equal(t, -3, sd.State.Reputation["guild"])
	assert.Equal(t, []string{"hall", "garden"}, sd.State.Breadcrumbs)
	assert.Equal(t, []string{"hall"}, sd.State.CompletedScenes)

	fresh := engine.New(testCatalog())
	require.NoError(t, ApplySave(fresh, sd))
	assert.Equal(t, "garden", fresh.State.CurrentSceneID)
	assert.Equal(t, e.RNG.Float64(), fresh.RNG.Float64(), "restored RNG should continue the same stream")
}

func TestRoundTripKeepsOpenModal(t *testing.T) {
	c := testCatalog()
	vault := c.Scenes["garden"]
	vault.ID = "vault"
	c.Scenes["vault"] = vault
	hall := c.Scenes["hall"]
	hall.Choices = nil
	hall.Actions = []string{"gold"}
	c.Scenes["hall"] = hall
	c.Actions["gold"] = types.Action{
		ID:      "gold",
		Trigger: types.OnEnter,
		Outcomes: []types.Outcome{{
			Description: "Gold glitters in the corner.",
			Choices:     []types.Choice{{Text: "Take gold", NextScene: "vault"}},
		}},
	}

	e := engine.New(c, engine.WithSeed(3))
	_, err := e.Start()
	require.NoError(t, err)
	require.Equal(t, 1, e.Modals.Len())

	data, err := Save(e, "")
	require.NoError(t, err)
	sd, err := Load(data)
	require.NoError(t, err)
	require.Len(t, sd.Modals, 1)

	fresh := engine.New(c)
	require.NoError(t, ApplySave(fresh, sd))
	front, ok := fresh.Modals.Front()
	require.True(t, ok, "open modal should survive a save")
	assert.Equal(t, "Gold glitters in the corner.", front.Description)

	// The restored modal's choice still leads on.
	_, err = fresh.SelectModalChoice(0)
	require.NoError(t, err)
	assert.Equal(t, "vault", fresh.State.CurrentSceneID)
	assert.Zero(t, fresh.Modals.Len())
}

func TestLoadFormatOneHasNoModals(t *testing.T) {
	sd, err := Load([]byte(`{"format":1,"game":"Test Game","state":{"currentSceneId":"hall"}}`))
	require.NoError(t, err)
	assert.Empty(t, sd.Modals)

	e := startedEngine(t)
	require.NoError(t, ApplySave(e, sd))
	assert.Zero(t, e.Modals.Len())
}

func TestSaveGeneratesSessionID(t *testing.T) {
	data, err := Save(startedEngine(t), "")
	require.NoError(t, err)

	var sd SaveData
	require.NoError(t, json.Unmarshal(data, &sd))
	_, err = uuid.Parse(sd.SessionID)
	assert.NoError(t, err)
}

func TestLoadNormalizesNilMaps(t *testing.T) {
	sd, err := Load([]byte(`{"format":1,"game":"Test Game","state":{"currentSceneId":"hall"}}`))
	require.NoError(t, err)
	assert.NotNil(t, sd.State.Inventory)
	assert.NotNil(t, sd.State.Flags)
	assert.NotNil(t, sd.State.Reputation)
	assert.NotNil(t, sd.State.NPCs)
	assert.NotNil(t, sd.State.Breadcrumbs)
	assert.NotEmpty(t, sd.SessionID)
}

func TestLoadRejectsNewerFormat(t *testing.T) {
	_, err := Load([]byte(`{"format":99}`))
	assert.Error(t, err)
}

func TestLoadInvalidJSON(t *testing.T) {
	_, err := Load([]byte(`{not json`))
	assert.Error(t, err)
}

func TestApplySaveWrongGame(t *testing.T) {
	e := startedEngine(t)
	err := ApplySave(e, &SaveData{Game: "Other", State: types.GameState{CurrentSceneID: "hall"}})
	assert.Error(t, err)
}

func TestApplySaveUnknownScene(t *testing.T) {
	e := startedEngine(t)
	err := ApplySave(e, &SaveData{Game: "Test Game", State: types.GameState{CurrentSceneID: "attic"}})
	assert.ErrorIs(t, err, engine.ErrNoScene)
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	e := startedEngine(t)
	_, err := e.Choose(0)
	require.NoError(t, err)

	path, err := WriteFile(dir, "", e, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "quicksave.json"), path)

	fresh := engine.New(testCatalog())
	sd, err := ReadFile(dir, "quicksave", fresh)
	require.NoError(t, err)
	assert.Equal(t, "garden", sd.State.CurrentSceneID)
	assert.Equal(t, "garden", fresh.State.CurrentSceneID)
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("saves", "quicksave.json"), Path("saves", ""))
	assert.Equal(t, filepath.Join("saves", "slot1.json"), Path("saves", "slot1"))
	assert.Equal(t, filepath.Join("saves", "slot1.json"), Path("saves", "slot1.json"))
	assert.Equal(t, filepath.Join("saves", "evil.json"), Path("saves", "../evil"))
}
