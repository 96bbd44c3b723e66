package storekit

import (
	"fmt"
	"reflect"

	"github.com/felixgeelhaar/storekit/internal/ir"
)

// Re-export non-generic types from internal/ir for public API
type (
	// ActionType is a named action identifier
	ActionType = ir.ActionType
	// HandlerType identifies a named handler
	HandlerType = ir.HandlerType
	// Action is a string-tagged action with optional payload
	Action = ir.Action
	// Policy selects how unknown actions are treated
	Policy = ir.Policy
	// UnknownActionError reports an action type a tagged reducer does not accept
	UnknownActionError = ir.UnknownActionError
	// ValidationError aggregates reducer definition problems
	ValidationError = ir.ValidationError
	// ValidationIssue is a single reducer definition problem
	ValidationIssue = ir.ValidationIssue
)

// Re-export constants
const (
	PolicyStrict  = ir.PolicyStrict
	PolicyLenient = ir.PolicyLenient
)

// ErrUnknownAction is matched (via errors.Is) by any reducer error that
// reports an unrecognized action.
var ErrUnknownAction = ir.ErrUnknownAction

// ParsePolicy parses "strict" or "lenient" (case-insensitive).
func ParsePolicy(s string) (Policy, error) {
	return ir.ParsePolicy(s)
}

// Reducer computes the next state from the current state and an action.
//
// Reducers must be deterministic and free of side effects. A strict reducer
// reports an unrecognized action with an error matching ErrUnknownAction; a
// lenient reducer returns the state unchanged with a nil error.
type Reducer[S, A any] func(state S, action A) (S, error)

// Handler computes the next state for a tagged action
type Handler[S any] func(state S, action Action) (S, error)

// Change describes one applied transition
type Change[S, A any] struct {
	Version uint64 // Store version after the transition
	Action  A
	Prev    S
	State   S
}

// Listener observes applied transitions
type Listener[S, A any] func(change Change[S, A])

// Typed is implemented by actions that can name themselves.
// The name is used for logs, metrics and trace attributes.
type Typed interface {
	ActionType() ActionType
}

// NameOf returns a stable, human-readable name for an action value
func NameOf(action any) string {
	if v := reflect.ValueOf(action); v.Kind() == reflect.Ptr && v.IsNil() {
		return "<nil>"
	}
	switch a := action.(type) {
	case nil:
		return "<nil>"
	case Typed:
		return string(a.ActionType())
	case fmt.Stringer:
		return a.String()
	}
	t := reflect.TypeOf(action)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
