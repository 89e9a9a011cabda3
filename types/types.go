// Package types defines the shared data structures for the cyoa engine.
// This package contains only type definitions and constants, no logic.
package types

// TimeOfDay is the coarse in-game clock.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Dusk      TimeOfDay = "dusk"
	Night     TimeOfDay = "night"
)

// NPCRelation is the player's standing with a single NPC.
type NPCRelation struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Affinity int    `json:"affinity" yaml:"affinity"`
	Met      bool   `json:"met" yaml:"met"`
}

// GameState is the player's save state. It is never mutated in place once
// committed: every state-changing operation produces a new value.
type GameState struct {
	Inventory       map[string]int         `json:"inventory" yaml:"inventory"`
	Flags           map[string]bool        `json:"flags" yaml:"flags"`
	Reputation      map[string]int         `json:"reputation" yaml:"reputation"`
	Health          int                    `json:"health" yaml:"health"`
	NPCs            map[string]NPCRelation `json:"npcs" yaml:"npcs"`
	CurrentSceneID  string                 `json:"currentSceneId" yaml:"currentSceneId"`
	CompletedScenes []string               `json:"completedScenes" yaml:"completedScenes"`
	TimeOfDay       TimeOfDay              `json:"timeOfDay" yaml:"timeOfDay"`
	Season          string                 `json:"season,omitempty" yaml:"season,omitempty"`
	Breadcrumbs     []string               `json:"breadcrumbs" yaml:"breadcrumbs"`
}

// Trigger names the event that activates an action.
type Trigger string

const (
	OnEnter     Trigger = "onEnter"
	OnExit      Trigger = "onExit"
	OnChoice    Trigger = "onChoice"
	OnItem      Trigger = "onItem"
	OnFlag      Trigger = "onFlag"
	OnRep       Trigger = "onRep"
	OnHealth    Trigger = "onHealth"
	OnAlignment Trigger = "onAlignment"
	OnRandom    Trigger = "onRandom"
)

// ConditionType tags the Condition variant.
type ConditionType string

const (
	HasItem         ConditionType = "hasItem"
	DoesNotHaveItem ConditionType = "doesNotHaveItem"
	FlagSet         ConditionType = "flagSet"
	FlagNotSet      ConditionType = "flagNotSet"
	Random          ConditionType = "random"
	Reputation      ConditionType = "reputation"
	SeasonIs        ConditionType = "seasonIs"
	TimeOfDayIs     ConditionType = "timeOfDayIs"
)

// Comparator is the numeric comparison used by hasItem and reputation.
type Comparator string

const (
	Gte Comparator = "gte"
	Eq  Comparator = "eq"
	Lte Comparator = "lte"
	Neq Comparator = "neq"
)

// Condition is a single guard predicate. Which fields are meaningful
// depends on Type; the loader rejects fields that do not belong to it.
type Condition struct {
	Type       ConditionType `json:"type" yaml:"type"`
	Key        string        `json:"key,omitempty" yaml:"key,omitempty"`
	Value      any           `json:"value,omitempty" yaml:"value,omitempty"` // int threshold or string for seasonIs/timeOfDayIs
	Comparator Comparator    `json:"comparator,omitempty" yaml:"comparator,omitempty"`
	Chance     *float64      `json:"chance,omitempty" yaml:"chance,omitempty"` // random only
}

// ConditionReport is the diagnostic produced for one evaluated condition.
type ConditionReport struct {
	Pass bool   `json:"pass"`
	Msg  string `json:"msg"`
}

// StateChangeType tags the StateChange variant.
type StateChangeType string

const (
	AddItem    StateChangeType = "addItem"
	RemoveItem StateChangeType = "removeItem"
	SetFlag    StateChangeType = "setFlag"
)

// StateChange is one atomic mutation. Amount defaults to 1 and is ignored
// by setFlag.
type StateChange struct {
	Type   StateChangeType `json:"type" yaml:"type"`
	Key    string          `json:"key" yaml:"key"`
	Amount *int            `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// Choice is a player-selectable option, offered either by a scene or by an
// outcome's modal.
type Choice struct {
	Text             string        `json:"text" yaml:"text"`
	NextNodeID       string        `json:"nextNodeId,omitempty" yaml:"nextNodeId,omitempty"`
	NextScene        string        `json:"nextScene,omitempty" yaml:"nextScene,omitempty"`
	NextAction       string        `json:"nextAction,omitempty" yaml:"nextAction,omitempty"`
	ResultMessage    string        `json:"resultMessage,omitempty" yaml:"resultMessage,omitempty"`
	ResultButtonText string        `json:"resultButtonText,omitempty" yaml:"resultButtonText,omitempty"`
	StateChanges     []StateChange `json:"stateChanges,omitempty" yaml:"stateChanges,omitempty"`
}

// Outcome is one branch of an action. The first outcome whose conditions
// pass is selected.
type Outcome struct {
	Description       string        `json:"description" yaml:"description"`
	Conditions        []Condition   `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	StateChanges      []StateChange `json:"stateChanges,omitempty" yaml:"stateChanges,omitempty"`
	NextSceneOverride string        `json:"nextSceneOverride,omitempty" yaml:"nextSceneOverride,omitempty"`
	Choices           []Choice      `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Action is a named rule definition.
type Action struct {
	ID          string      `json:"id" yaml:"id"`
	Trigger     Trigger     `json:"trigger" yaml:"trigger"`
	Conditions  []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Outcomes    []Outcome   `json:"outcomes" yaml:"outcomes"`
	FailMessage string      `json:"failMessage,omitempty" yaml:"failMessage,omitempty"`
}

// Scene is a narrative node.
type Scene struct {
	ID            string   `json:"id" yaml:"id"`
	Location      string   `json:"location,omitempty" yaml:"location,omitempty"`
	Description   string   `json:"description" yaml:"description"`
	Choices       []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`
	Actions       []string `json:"actions,omitempty" yaml:"actions,omitempty"`
	ParentSceneID string   `json:"parentSceneId,omitempty" yaml:"parentSceneId,omitempty"`
}

// StateTemplate seeds a fresh GameState at game start.
type StateTemplate struct {
	Inventory  map[string]int         `json:"inventory,omitempty" yaml:"inventory,omitempty"`
	Flags      map[string]bool        `json:"flags,omitempty" yaml:"flags,omitempty"`
	Reputation map[string]int         `json:"reputation,omitempty" yaml:"reputation,omitempty"`
	Health     int                    `json:"health,omitempty" yaml:"health,omitempty"`
	NPCs       map[string]NPCRelation `json:"npcs,omitempty" yaml:"npcs,omitempty"`
	TimeOfDay  TimeOfDay              `json:"timeOfDay,omitempty" yaml:"timeOfDay,omitempty"`
	Season     string                 `json:"season,omitempty" yaml:"season,omitempty"`
}

// GameDef holds game metadata.
type GameDef struct {
	Title   string        `json:"title" yaml:"title"`
	Author  string        `json:"author,omitempty" yaml:"author,omitempty"`
	Version string        `json:"version,omitempty" yaml:"version,omitempty"`
	Start   string        `json:"start" yaml:"start"` // starting scene ID
	Intro   string        `json:"intro,omitempty" yaml:"intro,omitempty"`
	Initial StateTemplate `json:"initial,omitempty" yaml:"initial,omitempty"`
}

// ModalKind distinguishes what produced a modal directive.
type ModalKind string

const (
	ModalOutcome ModalKind = "outcome" // an action's selected outcome
	ModalNotice  ModalKind = "notice"  // an action's failMessage
	ModalResult  ModalKind = "result"  // acknowledgement of a choice's resultMessage
)

// Modal is a presentation directive for the UI layer.
type Modal struct {
	ID          string    `json:"id"`
	Kind        ModalKind `json:"kind"`
	ActionID    string    `json:"actionId,omitempty"`
	Description string    `json:"description"`
	Choices     []Choice  `json:"choices,omitempty"`
	ButtonText  string    `json:"buttonText,omitempty"`
}

// Event is emitted by the state mutator for each applied change.
type Event struct {
	Type string
	Data map[string]any
}

// Diagnostic is an authoring-tool warning. Diagnostics never alter what the
// player sees.
type Diagnostic struct {
	Code     string
	ActionID string
	Detail   string
}

// Result is the output of one Run batch.
type Result struct {
	State       *GameState
	Directives  []Modal
	Override    string
	Events      []Event
	Diagnostics []Diagnostic
}

// Intent is a parsed line of player input.
type Intent struct {
	Verb   string // choose, look, inventory, back, undo, dismiss
	Number int    // 1-based choice number, 0 when Text is used
	Text   string // free text to match against choice labels
}
