package cosched

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/webriots/cosched"

// Option configures a Scheduler.
type Option func(o *options)

type options struct {
	name          string
	stackSize     int
	maxCoroutines int
	allocator     StackAllocator
	logger        *slog.Logger
	tracer        trace.Tracer
	ctx           context.Context
}

func newOptions(opts []Option) *options {
	o := &options{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(o)
	}
	if o.name == "" {
		o.name = uuid.NewString()
	}
	if o.allocator == nil {
		o.allocator = NewPoolAllocator(o.maxCoroutines)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(instrumentationName)
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	return o
}

// WithStackSize sets the private stack size in bytes of every coroutine.
// Sizes of zero or less keep DefaultStackSize. See DefaultStackSize for
// what the size bounds.
func WithStackSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.stackSize = size
		}
	}
}

// WithMaxCoroutines bounds the number of live coroutines; Create fails with
// ErrAllocationFailed beyond it. Ignored when WithAllocator is used.
func WithMaxCoroutines(n int) Option {
	return func(o *options) {
		o.maxCoroutines = n
	}
}

// WithAllocator sets the stack allocator, for example a PoolAllocator shared
// by several schedulers.
func WithAllocator(a StackAllocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

// WithName sets the scheduler name. By default a random UUID is used.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the structured logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer sets the tracer used for Resume and Destroy spans. By default
// the global OpenTelemetry provider is used.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithContext sets the parent context of every span.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}
