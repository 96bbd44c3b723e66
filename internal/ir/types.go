package ir

import (
	"errors"
	"fmt"
	"strings"
)

// Policy controls how a store treats actions its reducer does not recognize
type Policy int

const (
	// PolicyStrict surfaces unknown actions to the dispatch caller
	PolicyStrict Policy = iota
	// PolicyLenient drops unknown actions and keeps the current state
	PolicyLenient
)

// String returns the string representation of Policy
func (p Policy) String() string {
	switch p {
	case PolicyStrict:
		return "strict"
	case PolicyLenient:
		return "lenient"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the declared policies
func (p Policy) Valid() bool {
	return p == PolicyStrict || p == PolicyLenient
}

// ParsePolicy parses "strict" or "lenient" (case-insensitive).
// An empty string yields PolicyStrict.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return PolicyStrict, nil
	case "lenient":
		return PolicyLenient, nil
	default:
		return PolicyStrict, fmt.Errorf("unknown policy %q", s)
	}
}

// ActionType is a named action identifier
type ActionType string

// HandlerType identifies a named handler
type HandlerType string

// Action is a string-tagged action with optional payload
type Action struct {
	Type    ActionType
	Payload any
}

// ActionType returns the action's tag
func (a Action) ActionType() ActionType {
	return a.Type
}

// Handler computes the next state for a tagged action.
// Handlers must not mutate state in place.
type Handler[S any] func(state S, action Action) (S, error)

// ErrUnknownAction is matched by every error that reports an action the
// reducer does not recognize.
var ErrUnknownAction = errors.New("unknown action")

// UnknownActionError reports an action type missing from a reducer's action set
type UnknownActionError struct {
	Reducer string
	Type    ActionType
}

func (e *UnknownActionError) Error() string {
	if e.Reducer == "" {
		return fmt.Sprintf("unknown action %q", e.Type)
	}
	return fmt.Sprintf("reducer %q: unknown action %q", e.Reducer, e.Type)
}

// Is makes UnknownActionError match ErrUnknownAction
func (e *UnknownActionError) Is(target error) bool {
	return target == ErrUnknownAction
}
