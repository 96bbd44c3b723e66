package storekit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/storekit/internal/ir"
	"github.com/felixgeelhaar/storekit/telemetry"
)

const tracerName = "github.com/felixgeelhaar/storekit"

// DispatchError reports a dispatch rejected by the reducer.
// The store state is unchanged when a DispatchError is returned.
type DispatchError struct {
	Store  string
	Action string
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("store %q: dispatch %s: %v", e.Store, e.Action, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Store owns a single current state value and applies actions to it through
// a pure reducer.
//
// Dispatches are serialized, so every dispatch observes the state produced by
// the previous one. Store is safe for concurrent use.
type Store[S, A any] struct {
	id        uuid.UUID
	name      string
	reducer   Reducer[S, A]
	policy    Policy
	logger    zerolog.Logger
	collector telemetry.Collector
	tracer    trace.Tracer
	dispatch  func(A) error

	mu      sync.Mutex
	state   S
	version uint64

	subMu     sync.RWMutex
	listeners []subscription[S, A]
	nextSub   uint64
}

type subscription[S, A any] struct {
	id uint64
	fn Listener[S, A]
}

// New creates a store holding initial and transitioning through reducer.
// It panics if reducer is nil.
func New[S, A any](reducer Reducer[S, A], initial S, opts ...Option) *Store[S, A] {
	if reducer == nil {
		panic("storekit: nil reducer")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.New()
	name := o.name
	if name == "" {
		name = id.String()
	}

	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	s := &Store[S, A]{
		id:        id,
		name:      name,
		reducer:   reducer,
		policy:    o.policy,
		logger:    o.logger.With().Str("store", name).Logger(),
		collector: o.collector,
		tracer:    tp.Tracer(tracerName),
		state:     initial,
	}
	s.dispatch = s.Dispatch
	return s
}

// NewFromConfig creates a store over a tagged reducer built with NewReducer
// or FromStruct. The initial state and policy come from cfg; WithPolicy
// overrides the policy and WithName defaults to cfg.ID.
func NewFromConfig[S any](cfg *ir.ReducerConfig[S], opts ...Option) *Store[S, Action] {
	base := []Option{WithName(cfg.ID), WithPolicy(cfg.Policy)}
	return New(Reducer[S, Action](cfg.Reduce), cfg.Initial, append(base, opts...)...)
}

// ID returns the store's unique identifier
func (s *Store[S, A]) ID() uuid.UUID {
	return s.id
}

// Name returns the store name
func (s *Store[S, A]) Name() string {
	return s.name
}

// Policy returns the unknown-action policy
func (s *Store[S, A]) Policy() Policy {
	return s.policy
}

// State returns the current state snapshot
func (s *Store[S, A]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Version returns the number of transitions applied so far
func (s *Store[S, A]) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Dispatch applies action to the current state
func (s *Store[S, A]) Dispatch(action A) error {
	return s.DispatchContext(context.Background(), action)
}

// Dispatcher returns a dispatch function bound to the store.
// The returned function is the same for the lifetime of the store.
func (s *Store[S, A]) Dispatcher() func(A) error {
	return s.dispatch
}

// DispatchContext applies action to the current state.
//
// If the reducer fails, the state is left untouched. Unknown actions are
// dropped silently under PolicyLenient; every other failure is returned as a
// *DispatchError. Listeners are notified after a successful transition.
func (s *Store[S, A]) DispatchContext(ctx context.Context, action A) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	actionName := NameOf(action)
	_, span := s.tracer.Start(ctx, "Store.Dispatch", trace.WithAttributes(
		attribute.String("store.name", s.name),
		attribute.String("action.type", actionName),
	))
	defer span.End()

	start := time.Now()
	prev, next, version, err := s.apply(action)
	if err != nil {
		return s.reject(span, actionName, err)
	}

	s.collector.ObserveDispatch(s.name, time.Since(start).Seconds())
	s.collector.IncDispatch(s.name, actionName)
	span.SetAttributes(attribute.Int64("store.version", int64(version)))
	s.logger.Debug().
		Str("action", actionName).
		Uint64("version", version).
		Msg("dispatched")

	s.notify(Change[S, A]{
		Version: version,
		Action:  action,
		Prev:    prev,
		State:   next,
	})
	return nil
}

// apply runs the reducer under the dispatch lock. The lock is released even
// if the reducer panics.
func (s *Store[S, A]) apply(action A) (prev, next S, version uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev = s.state
	next, err = s.reducer(prev, action)
	if err != nil {
		return prev, prev, s.version, err
	}
	s.state = next
	s.version++
	return prev, next, s.version, nil
}

func (s *Store[S, A]) reject(span trace.Span, actionName string, err error) error {
	if s.policy == PolicyLenient && errors.Is(err, ErrUnknownAction) {
		s.collector.IncIgnored(s.name, actionName)
		span.SetAttributes(attribute.Bool("action.ignored", true))
		s.logger.Warn().
			Str("action", actionName).
			Msg("ignoring unknown action")
		return nil
	}

	s.collector.IncFailed(s.name, actionName)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Debug().
		Err(err).
		Str("action", actionName).
		Msg("dispatch rejected")
	return &DispatchError{Store: s.name, Action: actionName, Err: err}
}

// Subscribe registers l to be called after every applied transition, in
// subscription order. The returned function removes the listener; calling
// it more than once is harmless.
func (s *Store[S, A]) Subscribe(l Listener[S, A]) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}

	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.listeners = append(s.listeners, subscription[S, A]{id: id, fn: l})
	count := len(s.listeners)
	s.subMu.Unlock()
	s.collector.SetSubscribers(s.name, count)

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *Store[S, A]) unsubscribe(id uint64) {
	s.subMu.Lock()
	for i, sub := range s.listeners {
		if sub.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			break
		}
	}
	count := len(s.listeners)
	s.subMu.Unlock()
	s.collector.SetSubscribers(s.name, count)
}

func (s *Store[S, A]) notify(change Change[S, A]) {
	s.subMu.RLock()
	if len(s.listeners) == 0 {
		s.subMu.RUnlock()
		return
	}
	listeners := make([]subscription[S, A], len(s.listeners))
	copy(listeners, s.listeners)
	s.subMu.RUnlock()

	for _, sub := range listeners {
		sub.fn(change)
	}
}
