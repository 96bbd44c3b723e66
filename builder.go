package storekit

import "github.com/felixgeelhaar/storekit/internal/ir"

// ReducerBuilder provides a fluent API for constructing tagged reducers
type ReducerBuilder[S any] struct {
	id       string
	initial  S
	policy   Policy
	actions  []*ActionBuilder[S]
	handlers map[HandlerType]Handler[S]
}

// ActionBuilder provides a fluent API for declaring an accepted action
type ActionBuilder[S any] struct {
	reducer     *ReducerBuilder[S]
	typ         ActionType
	description string
	handlers    []HandlerType
}

// NewReducer creates a new ReducerBuilder with the given ID
func NewReducer[S any](id string) *ReducerBuilder[S] {
	return &ReducerBuilder[S]{
		id:       id,
		policy:   PolicyStrict,
		handlers: make(map[HandlerType]Handler[S]),
	}
}

// WithInitial sets the initial state value
func (b *ReducerBuilder[S]) WithInitial(initial S) *ReducerBuilder[S] {
	b.initial = initial
	return b
}

// WithPolicy sets the unknown-action policy stores built from this reducer default to
func (b *ReducerBuilder[S]) WithPolicy(p Policy) *ReducerBuilder[S] {
	b.policy = p
	return b
}

// WithHandler registers a named handler
func (b *ReducerBuilder[S]) WithHandler(name HandlerType, handler Handler[S]) *ReducerBuilder[S] {
	b.handlers[name] = handler
	return b
}

// On starts declaring an action of the given type
func (b *ReducerBuilder[S]) On(t ActionType) *ActionBuilder[S] {
	ab := &ActionBuilder[S]{
		reducer: b,
		typ:     t,
	}
	b.actions = append(b.actions, ab)
	return ab
}

// Build constructs the final ReducerConfig from the builder
func (b *ReducerBuilder[S]) Build() (*ir.ReducerConfig[S], error) {
	reducer := ir.NewReducerConfig(b.id, b.initial)
	reducer.Policy = b.policy

	for name, handler := range b.handlers {
		reducer.Handlers[name] = ir.Handler[S](handler)
	}

	for _, ab := range b.actions {
		action := ir.NewActionConfig(ab.typ)
		action.Description = ab.description
		action.Handlers = append(action.Handlers, ab.handlers...)
		reducer.AddAction(action)
	}

	if err := ir.Validate(reducer); err != nil {
		return nil, err
	}

	return reducer, nil
}

// --- ActionBuilder methods ---

// Do appends a handler to run when the action is dispatched
func (b *ActionBuilder[S]) Do(handler HandlerType) *ActionBuilder[S] {
	b.handlers = append(b.handlers, handler)
	return b
}

// Describe attaches a human-readable description, carried into exports
func (b *ActionBuilder[S]) Describe(description string) *ActionBuilder[S] {
	b.description = description
	return b
}

// On starts declaring another action (chainable)
func (b *ActionBuilder[S]) On(t ActionType) *ActionBuilder[S] {
	return b.reducer.On(t)
}

// Done completes the action declaration and returns to the reducer builder
func (b *ActionBuilder[S]) Done() *ReducerBuilder[S] {
	return b.reducer
}
