package compiler

// ---------------------------------------------------------------------------
// Statements: one code block each
// ---------------------------------------------------------------------------

// Statement is the interface implemented by every code block kind.
type Statement interface {
	// DisplayName is the human-readable label, e.g. "Player Action: SendMessage".
	DisplayName() string
	// BlockName is the technical block identifier written to the output.
	BlockName() string
	statement() // marker method
}

// BracketType distinguishes conditional scopes from loop scopes.
type BracketType string

const (
	BracketNorm   BracketType = "norm"
	BracketRepeat BracketType = "repeat"
)

// PlayerEvent starts a line when a player event fires.
type PlayerEvent struct {
	Event string
}

// EntityEvent starts a line when an entity event fires.
type EntityEvent struct {
	Event string
}

// Function defines a named function.
type Function struct {
	Name   string
	Params Params
}

// Process defines a named process.
type Process struct {
	Name   string
	Params Params
}

// PlayerAction runs an action on the targeted players.
type PlayerAction struct {
	Action string
	Params Params
	Target Selector
}

// EntityAction runs an action on the targeted entities.
type EntityAction struct {
	Action string
	Params Params
	Target Selector
}

// SetVariable runs a variable action.
type SetVariable struct {
	Action string
	Params Params
}

// GameAction runs a game-wide action.
type GameAction struct {
	Action string
	Params Params
}

// Control runs a control action (wait, return, ...).
type Control struct {
	Action string
	Params Params
}

// SelectObject changes the current selection.
type SelectObject struct {
	Action    string
	SubAction string
	Params    Params
	Not       bool
}

// IfVariable opens a scope when a variable condition holds.
type IfVariable struct {
	Action string
	Params Params
	Not    bool
}

// IfPlayer opens a scope when a player condition holds.
type IfPlayer struct {
	Action string
	Params Params
	Target Selector
	Not    bool
}

// IfEntity opens a scope when an entity condition holds.
type IfEntity struct {
	Action string
	Params Params
	Target Selector
	Not    bool
}

// IfGame opens a scope when a game condition holds.
type IfGame struct {
	Action string
	Params Params
	Not    bool
}

// Else opens the alternative scope of the preceding conditional.
type Else struct{}

// Close closes the innermost conditional scope.
type Close struct{}

// CloseRepeat closes the innermost loop scope.
type CloseRepeat struct{}

// Repeat opens a loop scope.
type Repeat struct {
	Action    string
	SubAction string
	Params    Params
	Not       bool
}

// CallFunction calls a function by name.
type CallFunction struct {
	Name   string
	Params Params
}

// CallProcess starts a process by name.
type CallProcess struct {
	Name   string
	Params Params
}

func (*PlayerEvent) statement()  {}
func (*EntityEvent) statement()  {}
func (*Function) statement()     {}
func (*Process) statement()      {}
func (*PlayerAction) statement() {}
func (*EntityAction) statement() {}
func (*SetVariable) statement()  {}
func (*GameAction) statement()   {}
func (*Control) statement()      {}
func (*SelectObject) statement() {}
func (*IfVariable) statement()   {}
func (*IfPlayer) statement()     {}
func (*IfEntity) statement()     {}
func (*IfGame) statement()       {}
func (*Else) statement()         {}
func (*Close) statement()        {}
func (*CloseRepeat) statement()  {}
func (*Repeat) statement()       {}
func (*CallFunction) statement() {}
func (*CallProcess) statement()  {}

func (*PlayerEvent) BlockName() string  { return "event" }
func (*EntityEvent) BlockName() string  { return "entity_event" }
func (*Function) BlockName() string     { return "func" }
func (*Process) BlockName() string      { return "process" }
func (*PlayerAction) BlockName() string { return "player_action" }
func (*EntityAction) BlockName() string { return "entity_action" }
func (*SetVariable) BlockName() string  { return "set_var" }
func (*GameAction) BlockName() string   { return "game_action" }
func (*Control) BlockName() string      { return "control" }
func (*SelectObject) BlockName() string { return "select_obj" }
func (*IfVariable) BlockName() string   { return "if_var" }
func (*IfPlayer) BlockName() string     { return "if_player" }
func (*IfEntity) BlockName() string     { return "if_entity" }
func (*IfGame) BlockName() string       { return "if_game" }
func (*Else) BlockName() string         { return "else" }
func (*Close) BlockName() string        { return "bracket" }
func (*CloseRepeat) BlockName() string  { return "bracket" }
func (*Repeat) BlockName() string       { return "repeat" }
func (*CallFunction) BlockName() string { return "call_func" }
func (*CallProcess) BlockName() string  { return "start_process" }

func (s *PlayerEvent) DisplayName() string  { return "Player Event: " + s.Event }
func (s *EntityEvent) DisplayName() string  { return "Entity Event: " + s.Event }
func (s *Function) DisplayName() string     { return "Function: " + s.Name }
func (s *Process) DisplayName() string      { return "Process: " + s.Name }
func (s *PlayerAction) DisplayName() string { return "Player Action: " + s.Action }
func (s *EntityAction) DisplayName() string { return "Entity Action: " + s.Action }
func (s *SetVariable) DisplayName() string  { return "Set Variable Action: " + s.Action }
func (s *GameAction) DisplayName() string   { return "Game Action: " + s.Action }
func (s *Control) DisplayName() string      { return "Control: " + s.Action }
func (s *SelectObject) DisplayName() string { return "Select Object: " + s.Action }
func (s *IfVariable) DisplayName() string   { return "If Variable: " + s.Action }
func (s *IfPlayer) DisplayName() string     { return "If Player: " + s.Action }
func (s *IfEntity) DisplayName() string     { return "If Entity: " + s.Action }
func (s *IfGame) DisplayName() string       { return "If Game: " + s.Action }
func (*Else) DisplayName() string           { return "Else" }
func (*Close) DisplayName() string          { return "Close Bracket" }
func (*CloseRepeat) DisplayName() string    { return "Close Bracket" }
func (s *Repeat) DisplayName() string       { return "Repeat: " + s.Action }
func (s *CallFunction) DisplayName() string { return "Call: " + s.Name }
func (s *CallProcess) DisplayName() string  { return "Start Process: " + s.Name }

// Opens reports whether s opens a bracket scope after its own block, and
// of which type.
func Opens(s Statement) (BracketType, bool) {
	switch s.(type) {
	case *IfVariable, *IfPlayer, *IfEntity, *IfGame, *Else:
		return BracketNorm, true
	case *Repeat:
		return BracketRepeat, true
	}
	return "", false
}

// Closes reports whether s closes a bracket scope, and of which type.
func Closes(s Statement) (BracketType, bool) {
	switch s.(type) {
	case *Close:
		return BracketNorm, true
	case *CloseRepeat:
		return BracketRepeat, true
	}
	return "", false
}

// ParamsOf returns the slot array carried by s, or nil for statements
// without parameters.
func ParamsOf(s Statement) *Params {
	switch n := s.(type) {
	case *Function:
		return &n.Params
	case *Process:
		return &n.Params
	case *PlayerAction:
		return &n.Params
	case *EntityAction:
		return &n.Params
	case *SetVariable:
		return &n.Params
	case *GameAction:
		return &n.Params
	case *Control:
		return &n.Params
	case *SelectObject:
		return &n.Params
	case *IfVariable:
		return &n.Params
	case *IfPlayer:
		return &n.Params
	case *IfEntity:
		return &n.Params
	case *IfGame:
		return &n.Params
	case *Repeat:
		return &n.Params
	case *CallFunction:
		return &n.Params
	case *CallProcess:
		return &n.Params
	}
	return nil
}

// tagAction is the action a Tag reports when attached to s.
func tagAction(s Statement) string {
	switch n := s.(type) {
	case *PlayerEvent:
		return n.Event
	case *EntityEvent:
		return n.Event
	case *Function, *Process, *CallFunction, *CallProcess:
		return "dynamic"
	case *PlayerAction:
		return n.Action
	case *EntityAction:
		return n.Action
	case *SetVariable:
		return n.Action
	case *GameAction:
		return n.Action
	case *Control:
		return n.Action
	case *IfVariable:
		return n.Action
	case *IfPlayer:
		return n.Action
	case *IfEntity:
		return n.Action
	case *IfGame:
		return n.Action
	case *Else:
		return "else"
	case *Close, *CloseRepeat:
		return "bracket"
	case *SelectObject:
		return orAction(n.SubAction, n.Action)
	case *Repeat:
		return orAction(n.SubAction, n.Action)
	}
	return ""
}

func orAction(sub, action string) string {
	if sub != "" {
		return sub
	}
	return action
}
