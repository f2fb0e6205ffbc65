package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Action is a user intent submitted to a game engine.
// The numeric values are part of the wire format: remote clients send the
// ordinal, so the order below must not change.
type Action int

const (
	ActionStart     Action = iota // Enter - start or restart a game
	ActionPause                   // P - toggle pause
	ActionTerminate               // Q - stop the hosting process
	ActionLeft                    // Left arrow
	ActionRight                   // Right arrow
	ActionUp                      // Up arrow
	ActionDown                    // Down arrow
	ActionAction                  // Space - rotate, boost
	ActionNothing                 // no input
)

var actionNames = [...]string{
	ActionStart:     "Start",
	ActionPause:     "Pause",
	ActionTerminate: "Terminate",
	ActionLeft:      "Left",
	ActionRight:     "Right",
	ActionUp:        "Up",
	ActionDown:      "Down",
	ActionAction:    "Action",
	ActionNothing:   "Nothing",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if !a.Valid() {
		return "Unknown"
	}
	return actionNames[a]
}

// Valid reports whether a is one of the defined actions.
func (a Action) Valid() bool {
	return a >= ActionStart && a <= ActionNothing
}

// IsDirection reports whether a is one of the four arrow actions.
func (a Action) IsDirection() bool {
	switch a {
	case ActionLeft, ActionRight, ActionUp, ActionDown:
		return true
	}
	return false
}

// ParseAction accepts either the action name (case-insensitive) or its ordinal.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		a := Action(n)
		if !a.Valid() {
			return ActionNothing, fmt.Errorf("core: action %d out of range", n)
		}
		return a, nil
	}
	for i, name := range actionNames {
		if strings.EqualFold(name, s) {
			return Action(i), nil
		}
	}
	return ActionNothing, fmt.Errorf("core: unknown action %q", s)
}

// MarshalJSON encodes the action as its name.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a JSON number (ordinal) or a JSON string (name or ordinal).
func (a *Action) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		parsed := Action(n)
		if !parsed.Valid() {
			return fmt.Errorf("core: action %d out of range", n)
		}
		*a = parsed
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("core: action must be a number or a string: %w", err)
	}
	parsed, err := ParseAction(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ActionBuffer holds the most recently submitted action.
// Submitting overwrites whatever was pending; nothing is queued. The zero
// value is empty. It is not safe for concurrent use: engines are
// single-writer and callers serialize.
type ActionBuffer struct {
	pending Action
	hold    bool
	set     bool
}

// Submit replaces the pending action.
func (b *ActionBuffer) Submit(a Action, hold bool) {
	b.pending = a
	b.hold = hold
	b.set = true
}

// Peek returns the pending action without consuming it.
func (b *ActionBuffer) Peek() Action {
	if !b.set {
		return ActionNothing
	}
	return b.pending
}

// Take returns the pending action and clears the buffer.
func (b *ActionBuffer) Take() (Action, bool) {
	a, hold := b.Peek(), b.hold
	b.Clear()
	return a, hold
}

// Clear drops the pending action.
func (b *ActionBuffer) Clear() {
	*b = ActionBuffer{}
}
