package storekit

import (
	"fmt"
	"reflect"

	"github.com/felixgeelhaar/storekit/internal/ir"
	"github.com/felixgeelhaar/storekit/internal/parser"
)

// ReducerDef is a marker type that must be embedded in a struct
// to define a reducer using the reflection DSL.
//
// Use struct tags to configure the reducer:
//   - id:"reducerId" - Required reducer identifier
//   - policy:"strict|lenient" - Optional unknown-action policy (default strict)
//
// Example:
//
//	type Counter struct {
//	    storekit.ReducerDef `id:"counter" policy:"lenient"`
//	    Increment storekit.ActionNode `do:"inc"`
//	    Decrement storekit.ActionNode `do:"dec"`
//	}
type ReducerDef struct{}

// ActionNode is a marker type declaring one accepted action.
//
// Use struct tags to configure the action:
//   - action:"type" - Action type (defaults to the snake_case field name)
//   - do:"handler1,handler2" - Required handlers, applied in order
//   - desc:"text" - Optional description carried into exports
type ActionNode struct{}

// HandlerRegistry holds handler implementations referenced by name in the
// reflection DSL.
//
// HandlerRegistry is not safe for concurrent use. It should be fully
// configured before calling FromStruct or FromStructWithInitial.
type HandlerRegistry[S any] struct {
	handlers map[HandlerType]Handler[S]
}

// NewHandlerRegistry creates a new empty handler registry.
func NewHandlerRegistry[S any]() *HandlerRegistry[S] {
	return &HandlerRegistry[S]{
		handlers: make(map[HandlerType]Handler[S]),
	}
}

// WithHandler registers a handler function by name.
// Returns the registry for method chaining.
func (r *HandlerRegistry[S]) WithHandler(name HandlerType, handler Handler[S]) *HandlerRegistry[S] {
	r.handlers[name] = handler
	return r
}

// FromStruct builds a ReducerConfig from a struct definition using the
// reflection DSL. The initial state is the zero value of S.
//
// Example:
//
//	registry := storekit.NewHandlerRegistry[CounterState]().
//	    WithHandler("inc", func(s CounterState, a storekit.Action) (CounterState, error) { ... }).
//	    WithHandler("dec", func(s CounterState, a storekit.Action) (CounterState, error) { ... })
//
//	reducer, err := storekit.FromStruct[Counter, CounterState](registry)
func FromStruct[M any, S any](registry *HandlerRegistry[S]) (*ir.ReducerConfig[S], error) {
	var zero S
	return FromStructWithInitial[M, S](registry, zero)
}

// FromStructWithInitial builds a ReducerConfig with an initial state value.
func FromStructWithInitial[M any, S any](registry *HandlerRegistry[S], initial S) (*ir.ReducerConfig[S], error) {
	t := reflect.TypeOf((*M)(nil)).Elem()

	schema, err := parser.ParseReducerStruct(t)
	if err != nil {
		return nil, fmt.Errorf("parse struct: %w", err)
	}

	return buildReducerFromSchema(schema, registry, initial)
}

// buildReducerFromSchema converts a parsed schema into a ReducerConfig.
func buildReducerFromSchema[S any](schema *parser.ReducerSchema, registry *HandlerRegistry[S], initial S) (*ir.ReducerConfig[S], error) {
	policy, err := ir.ParsePolicy(schema.Policy)
	if err != nil {
		return nil, fmt.Errorf("reducer %q: %w", schema.ID, err)
	}

	reducer := ir.NewReducerConfig(schema.ID, initial)
	reducer.Policy = policy

	if registry != nil {
		for name, handler := range registry.handlers {
			reducer.Handlers[name] = ir.Handler[S](handler)
		}
	}

	for _, actionSchema := range schema.Actions {
		action := ir.NewActionConfig(ir.ActionType(actionSchema.Type))
		action.Description = actionSchema.Description
		for _, h := range actionSchema.Handlers {
			action.Handlers = append(action.Handlers, ir.HandlerType(h))
		}
		reducer.AddAction(action)
	}

	if err := ir.Validate(reducer); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return reducer, nil
}
