package storekit

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/storekit/telemetry"
)

type options struct {
	name           string
	policy         Policy
	logger         zerolog.Logger
	collector      telemetry.Collector
	tracerProvider trace.TracerProvider
}

// Option configures a Store
type Option func(*options)

func defaultOptions() options {
	return options{
		policy:    PolicyStrict,
		logger:    zerolog.Nop(),
		collector: telemetry.Noop(),
	}
}

// WithName sets the store name used in logs, metrics and spans.
// Defaults to the store ID.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithPolicy selects how unknown actions are treated
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLogger sets the store logger
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCollector sets the telemetry collector. A nil collector disables telemetry.
func WithCollector(c telemetry.Collector) Option {
	return func(o *options) {
		if c == nil {
			c = telemetry.Noop()
		}
		o.collector = c
	}
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}
