// Package engine runs actions against game state and drives a play
// session: scene navigation, choice resolution, modal queue and undo.
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nathoo/cyoa/engine/events"
	"github.com/nathoo/cyoa/engine/modal"
	"github.com/nathoo/cyoa/engine/state"
	"github.com/nathoo/cyoa/types"
)

// Errors returned by session operations. The rule engine itself never fails.
var (
	ErrNoScene     = errors.New("no such scene")
	ErrNoModal     = errors.New("no modal is open")
	ErrModalOpen   = errors.New("a modal is waiting for a response")
	ErrChoiceRange = errors.New("no such choice")
	ErrNoWayBack   = errors.New("there is nowhere to go back to")
)

const (
	// maxRedirects bounds chained scene overrides within one navigation.
	maxRedirects = 8
	// DefaultHistoryLimit is the number of undo snapshots kept.
	DefaultHistoryLimit = 50
)

// Step collects everything one player operation produced.
type Step struct {
	Directives  []types.Modal
	Events      []types.Event
	Diagnostics []types.Diagnostic
	Scenes      []string // scenes entered, in order
}

// Engine is a single play session. It is not safe for concurrent use; the
// owning UI drives it from one goroutine.
type Engine struct {
	Catalog *state.Catalog
	State   *types.GameState
	RNG     *RNG
	Modals  *modal.Queue
	Logger  *zap.Logger

	history      []snapshot
	historyLimit int
}

// snapshot is what Undo puts back: the state, the modals on screen and the
// RNG position, so an undone random outcome replays the same draw.
type snapshot struct {
	state  *types.GameState
	modals []types.Modal
	rngPos int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed seeds the random stream used by random conditions.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.RNG = NewRNG(seed) }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.Logger = l
		}
	}
}

// WithHistoryLimit sets how many undo snapshots are kept.
func WithHistoryLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.historyLimit = n
		}
	}
}

// New creates a session from a catalog. The player is not in any scene
// until Start is called.
func New(c *state.Catalog, opts ...Option) *Engine {
	e := &Engine{
		Catalog:      c,
		State:        state.NewState(c),
		RNG:          NewRNG(0),
		Modals:       modal.NewQueue(),
		Logger:       zap.NewNop(),
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RestoreRNG re-creates the RNG from seed and advances to the saved position.
func (e *Engine) RestoreRNG(seed int64, position int64) {
	e.RNG = RestoreRNG(seed, position)
}

// Restore replaces the session state, e.g. after loading a save. Modals
// and undo history are cleared.
func (e *Engine) Restore(s *types.GameState) {
	e.State = state.Clone(s)
	e.Modals.Clear()
	e.history = nil
}

// Start enters the catalog's start scene.
func (e *Engine) Start() (Step, error) {
	var st Step
	start := e.Catalog.Game.Start
	if _, ok := e.Catalog.Scenes[start]; !ok {
		return st, fmt.Errorf("%w: start scene %q", ErrNoScene, start)
	}
	e.navigate(&st, start)
	return st, nil
}

// Scene returns the scene the player is in.
func (e *Engine) Scene() (types.Scene, bool) {
	return state.CurrentScene(e.State, e.Catalog)
}

// Navigate moves the player to a scene, running onExit for the old scene
// and onEnter for the new one. Overrides from those batches redirect.
func (e *Engine) Navigate(sceneID string) (Step, error) {
	var st Step
	if _, ok := e.Catalog.Scenes[sceneID]; !ok {
		return st, fmt.Errorf("%w: %q", ErrNoScene, sceneID)
	}
	e.remember()
	e.navigate(&st, sceneID)
	return st, nil
}

// Back navigates to the previous scene on the breadcrumb trail, or to the
// parent scene when the trail has nowhere to go.
func (e *Engine) Back() (Step, error) {
	if e.Modals.Len() > 0 {
		return Step{}, ErrModalOpen
	}
	crumbs := e.State.Breadcrumbs
	if len(crumbs) >= 2 {
		return e.Navigate(crumbs[len(crumbs)-2])
	}
	if parents := state.Ancestors(e.Catalog, e.State.CurrentSceneID); len(parents) > 0 {
		return e.Navigate(parents[0])
	}
	return Step{}, ErrNoWayBack
}

// Choose selects choice i (zero-based) of the current scene.
func (e *Engine) Choose(i int) (Step, error) {
	var st Step
	if _, ok := e.Scene(); !ok {
		return st, fmt.Errorf("%w: %q", ErrNoScene, e.State.CurrentSceneID)
	}
	if e.Modals.Len() > 0 {
		return st, ErrModalOpen
	}
	choices := state.SceneChoices(e.Catalog, e.State.CurrentSceneID)
	if i < 0 || i >= len(choices) {
		return st, fmt.Errorf("%w: %d", ErrChoiceRange, i+1)
	}
	e.remember()
	e.resolveChoice(&st, types.Modal{}, choices[i])
	return st, nil
}

// SelectModalChoice resolves choice i (zero-based) of the front modal.
func (e *Engine) SelectModalChoice(i int) (Step, error) {
	var st Step
	front, ok := e.Modals.Front()
	if !ok {
		return st, ErrNoModal
	}
	if i < 0 || i >= len(front.Choices) {
		return st, fmt.Errorf("%w: %d", ErrChoiceRange, i+1)
	}
	e.remember()
	e.resolveChoice(&st, front, front.Choices[i])
	return st, nil
}

// Dismiss closes the front modal. An acknowledgement modal that carries a
// pending continuation runs it.
func (e *Engine) Dismiss() (Step, error) {
	front, ok := e.Modals.Front()
	if !ok {
		return Step{}, ErrNoModal
	}
	if front.Kind == types.ModalResult && len(front.Choices) == 1 {
		return e.SelectModalChoice(0)
	}
	e.Modals.Dismiss(front.ID)
	return Step{}, nil
}

// Fire runs the current scene's actions for an arbitrary trigger, e.g.
// onRandom on a timer or onHealth after an external change.
func (e *Engine) Fire(trigger types.Trigger) Step {
	var st Step
	e.remember()
	ids := state.SceneActions(e.Catalog, e.State.CurrentSceneID)
	if override := e.run(&st, ids, trigger); override != "" {
		e.navigate(&st, override)
	}
	return st
}

// Undo restores the state, modal queue and RNG position from before the
// last player operation. Returns false when there is nothing to undo.
func (e *Engine) Undo() bool {
	if len(e.history) == 0 {
		return false
	}
	snap := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]

	e.State = snap.state
	e.Modals.Clear()
	e.Modals.Push(snap.modals...)
	if snap.rngPos != e.RNG.Position() {
		e.RNG = RestoreRNG(e.RNG.Seed(), snap.rngPos)
	}
	return true
}

// CanUndo reports whether Undo would restore anything.
func (e *Engine) CanUndo() bool {
	return len(e.history) > 0
}

func (e *Engine) resolveChoice(st *Step, origin types.Modal, ch types.Choice) {
	cr := ResolveChoice(origin, ch, e.State, e.Catalog, e.RNG)
	override := e.apply(st, cr.Result)

	switch {
	case cr.Ack != nil:
		if origin.ID == "" || !e.Modals.Replace(origin.ID, *cr.Ack) {
			e.Modals.Push(*cr.Ack)
		}
		st.Directives = append(st.Directives, *cr.Ack)
	case cr.Dismiss && origin.ID != "":
		e.Modals.Dismiss(origin.ID)
	}

	if override != "" {
		e.navigate(st, override)
	}
}

// navigate moves to dest, following onExit/onEnter overrides up to
// maxRedirects hops.
func (e *Engine) navigate(st *Step, dest string) {
	for hops := 0; dest != ""; hops++ {
		if hops == maxRedirects {
			e.diagnose(st, types.Diagnostic{
				Code: DiagRedirectLoop, Detail: fmt.Sprintf("stopped after %d redirects at %q", hops, dest),
			})
			return
		}
		if !e.sceneExists(st, dest) {
			return
		}

		if cur := e.State.CurrentSceneID; cur != "" {
			override := e.run(st, state.SceneActions(e.Catalog, cur), types.OnExit)
			if override != "" && override != dest {
				if !e.sceneExists(st, override) {
					return
				}
				dest = override
			}
		}

		from := e.State.CurrentSceneID
		e.State = state.VisitScene(e.State, dest)
		st.Scenes = append(st.Scenes, dest)
		e.Logger.Info("scene entered", zap.String("from", from), zap.String("scene", dest))

		override := e.run(st, state.SceneActions(e.Catalog, dest), types.OnEnter)
		if override == dest {
			return
		}
		dest = override
	}
}

// run evaluates a batch and commits it. Returns the batch override.
func (e *Engine) run(st *Step, ids []string, trigger types.Trigger) string {
	if len(ids) == 0 {
		return ""
	}
	return e.apply(st, Run(ids, trigger, e.State, e.Catalog, e.RNG))
}

// apply commits a result, then runs the single reactive pass for the
// events it produced. Returns the last override seen.
func (e *Engine) apply(st *Step, res types.Result) string {
	e.commit(st, res)
	override := res.Override
	for _, f := range events.Dispatch(res.Events, e.State, e.Catalog) {
		r := Run(f.ActionIDs, f.Trigger, e.State, e.Catalog, e.RNG)
		e.commit(st, r)
		if r.Override != "" {
			override = r.Override
		}
	}
	return override
}

func (e *Engine) commit(st *Step, res types.Result) {
	if res.State != nil {
		e.State = res.State
	}
	e.Modals.Push(res.Directives...)
	st.Directives = append(st.Directives, res.Directives...)
	st.Events = append(st.Events, res.Events...)
	for _, d := range res.Diagnostics {
		e.diagnose(st, d)
	}
}

func (e *Engine) sceneExists(st *Step, id string) bool {
	if _, ok := e.Catalog.Scenes[id]; ok {
		return true
	}
	e.diagnose(st, types.Diagnostic{Code: DiagSceneNotFound, Detail: fmt.Sprintf("scene %q is not in the catalog", id)})
	return false
}

func (e *Engine) diagnose(st *Step, d types.Diagnostic) {
	st.Diagnostics = append(st.Diagnostics, d)
	e.Logger.Debug("rule diagnostic",
		zap.String("code", d.Code),
		zap.String("action", d.ActionID),
		zap.String("detail", d.Detail))
}

func (e *Engine) remember() {
	e.history = append(e.history, snapshot{
		state:  e.State,
		modals: e.Modals.All(),
		rngPos: e.RNG.Position(),
	})
	if len(e.history) > e.historyLimit {
		e.history = e.history[1:]
	}
}
