package system

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation name used for the default tracer.
const tracerName = "github.com/mkock/system"

// defaultName is the name of a System constructed without WithName.
const defaultName = "system"

// Option configures a System.
type Option func(*options)

type options struct {
	name     string
	logger   zerolog.Logger
	progress []ProgressFunc
	tracer   trace.Tracer
	metrics  *Metrics
	deps     []string
}

func defaultOptions() options {
	return options{
		name:   defaultName,
		logger: zerolog.Nop(),
		tracer: otel.Tracer(tracerName),
	}
}

// WithName names the System in logs, traces, metrics and Progress reports.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger the System writes its debug trail to. Component failures are returned, never logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithProgress registers fn to receive a Progress report for every component that completes a phase. It may be
// given more than once.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.progress = append(o.progress, fn)
		}
	}
}

// WithTracer sets the tracer used to record one span per Start/Stop call, per level and per component. The default is
// the tracer of the global OpenTelemetry provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithMetrics records lifecycle durations, failures and states in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithDependencies declares the dependencies of the System itself, for when it is registered as a component of a
// larger System.
func WithDependencies(names ...string) Option {
	return func(o *options) {
		o.deps = append(o.deps, names...)
	}
}
