package storekit

import (
	"errors"
	"testing"
)

type testState struct {
	Count int
	Log   []string
}

func addHandler(delta int) Handler[testState] {
	return func(s testState, a Action) (testState, error) {
		return testState{Count: s.Count + delta, Log: s.Log}, nil
	}
}

func TestReducerBuilder_Basic(t *testing.T) {
	reducer, err := NewReducer[testState]("counter").
		WithHandler("inc", addHandler(1)).
		On("increment").Do("inc").
		Done().
		Build()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reducer.ID != "counter" {
		t.Errorf("expected ID 'counter', got %v", reducer.ID)
	}
	if reducer.Policy != PolicyStrict {
		t.Errorf("expected strict policy by default, got %v", reducer.Policy)
	}
	if len(reducer.Actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(reducer.Actions))
	}
}

func TestReducerBuilder_WithInitial(t *testing.T) {
	reducer, err := NewReducer[testState]("test").
		WithInitial(testState{Count: 42}).
		WithHandler("inc", addHandler(1)).
		On("increment").Do("inc").
		Done().
		Build()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reducer.Initial.Count != 42 {
		t.Errorf("expected initial Count 42, got %v", reducer.Initial.Count)
	}
}

func TestReducerBuilder_ChainedActions(t *testing.T) {
	reducer, err := NewReducer[testState]("counter").
		WithPolicy(PolicyLenient).
		WithHandler("inc", addHandler(1)).
		WithHandler("dec", addHandler(-1)).
		On("increment").Do("inc").Describe("Add one").
		On("decrement").Do("dec").Describe("Subtract one").
		Done().
		Build()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reducer.Policy != PolicyLenient {
		t.Errorf("expected lenient policy, got %v", reducer.Policy)
	}

	types := reducer.ActionTypes()
	if len(types) != 2 || types[0] != "increment" || types[1] != "decrement" {
		t.Errorf("expected [increment decrement], got %v", types)
	}
	if reducer.GetAction("decrement").Description != "Subtract one" {
		t.Errorf("expected description, got %q", reducer.GetAction("decrement").Description)
	}
}

func TestReducerBuilder_HandlerChain(t *testing.T) {
	reducer, err := NewReducer[testState]("test").
		WithHandler("inc", addHandler(1)).
		WithHandler("log", func(s testState, a Action) (testState, error) {
			log := append(append([]string(nil), s.Log...), string(a.Type))
			return testState{Count: s.Count, Log: log}, nil
		}).
		On("increment").Do("inc").Do("log").
		Done().
		Build()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := NewFromConfig(reducer)
	if err := store.Dispatch(Action{Type: "increment"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := store.State()
	if state.Count != 1 {
		t.Errorf("expected Count 1, got %d", state.Count)
	}
	if len(state.Log) != 1 || state.Log[0] != "increment" {
		t.Errorf("expected log [increment], got %v", state.Log)
	}
}

func TestReducerBuilder_HandlerFailureKeepsState(t *testing.T) {
	errInsufficient := errors.New("insufficient")
	reducer, err := NewReducer[testState]("test").
		WithInitial(testState{Count: 1}).
		WithHandler("dec", addHandler(-1)).
		WithHandler("nonNegative", func(s testState, a Action) (testState, error) {
			if s.Count < 0 {
				return s, errInsufficient
			}
			return s, nil
		}).
		On("decrement").Do("dec").Do("nonNegative").
		Done().
		Build()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := NewFromConfig(reducer)
	if err := store.Dispatch(Action{Type: "decrement"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = store.Dispatch(Action{Type: "decrement"})
	if !errors.Is(err, errInsufficient) {
		t.Fatalf("expected errInsufficient, got %v", err)
	}
	if store.State().Count != 0 {
		t.Errorf("expected Count 0 after rejected dispatch, got %d", store.State().Count)
	}
}

func TestReducerBuilder_HandlersAreCopied(t *testing.T) {
	b := NewReducer[testState]("test").
		WithHandler("inc", addHandler(1)).
		On("increment").Do("inc").
		Done()

	first, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b.WithHandler("inc", addHandler(100))

	next, err := first.Reduce(testState{}, Action{Type: "increment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Count != 1 {
		t.Errorf("expected built reducer to be unaffected by later builder changes, got %d", next.Count)
	}
}
