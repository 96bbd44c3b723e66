package ir

// ReducerConfig is the immutable internal representation of a tagged reducer
type ReducerConfig[S any] struct {
	ID       string
	Initial  S
	Policy   Policy
	Actions  []*ActionConfig
	Handlers map[HandlerType]Handler[S]

	index map[ActionType]*ActionConfig
}

// ActionConfig describes a single accepted action type
type ActionConfig struct {
	Type        ActionType
	Description string
	Handlers    []HandlerType // Applied in order
}

// NewReducerConfig creates a new ReducerConfig with initialized maps
func NewReducerConfig[S any](id string, initial S) *ReducerConfig[S] {
	return &ReducerConfig[S]{
		ID:       id,
		Initial:  initial,
		Policy:   PolicyStrict,
		Handlers: make(map[HandlerType]Handler[S]),
		index:    make(map[ActionType]*ActionConfig),
	}
}

// NewActionConfig creates a new ActionConfig
func NewActionConfig(t ActionType) *ActionConfig {
	return &ActionConfig{
		Type:        t,
		Description: "",
		Handlers:    nil,
	}
}

// AddAction appends an action to the config.
// The first declaration of a type wins lookups; duplicates are reported by Validate.
func (r *ReducerConfig[S]) AddAction(a *ActionConfig) {
	r.Actions = append(r.Actions, a)
	if r.index == nil {
		r.index = make(map[ActionType]*ActionConfig)
	}
	if _, ok := r.index[a.Type]; !ok {
		r.index[a.Type] = a
	}
}

// GetAction returns the action config for the given type, or nil if not found
func (r *ReducerConfig[S]) GetAction(t ActionType) *ActionConfig {
	return r.index[t]
}

// GetHandler returns the handler for the given type, or nil if not found
func (r *ReducerConfig[S]) GetHandler(t HandlerType) Handler[S] {
	return r.Handlers[t]
}

// ActionTypes returns the declared action types in declaration order
func (r *ReducerConfig[S]) ActionTypes() []ActionType {
	types := make([]ActionType, 0, len(r.Actions))
	for _, a := range r.Actions {
		types = append(types, a.Type)
	}
	return types
}

// Reduce applies the handlers registered for action.Type to state.
// Unknown types yield an *UnknownActionError and the unchanged state.
// A failing handler aborts the chain and the original state is returned.
func (r *ReducerConfig[S]) Reduce(state S, action Action) (S, error) {
	cfg := r.GetAction(action.Type)
	if cfg == nil {
		return state, &UnknownActionError{Reducer: r.ID, Type: action.Type}
	}

	next := state
	for _, name := range cfg.Handlers {
		handler := r.GetHandler(name)
		if handler == nil {
			continue
		}
		var err error
		next, err = handler(next, action)
		if err != nil {
			return state, err
		}
	}
	return next, nil
}
