package cosched

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Entry is the body of a coroutine. It receives the argument given to
// Create and its return value is handed to the Resume call that observes
// the coroutine finishing.
type Entry[V any] func(arg V) V

// Scheduler runs coroutines whose transfer values have type V. All of its
// methods must be called from the driving flow or from the coroutine that
// is currently running; a Scheduler is not safe for concurrent use.
type Scheduler[V any] struct {
	name      string
	stackSize int
	alloc     StackAllocator
	reg       *registry[V]
	running   ID
	current   *record[V]
	unwinding []*record[V] // destroyed while suspended, awaiting their unwind
	log       *slog.Logger
	tracer    trace.Tracer
	ctx       context.Context
}

// New returns a scheduler configured by opts.
func New[V any](opts ...Option) *Scheduler[V] {
	o := newOptions(opts)
	return &Scheduler[V]{
		name:      o.name,
		stackSize: o.stackSize,
		alloc:     o.allocator,
		reg:       newRegistry[V](),
		log:       o.logger.With("scheduler", o.name),
		tracer:    o.tracer,
		ctx:       o.ctx,
	}
}

// Name returns the scheduler name used in logs and spans.
func (s *Scheduler[V]) Name() string { return s.name }

// StackSize returns the private stack size of every coroutine.
func (s *Scheduler[V]) StackSize() int { return s.stackSize }

// Len returns the number of live coroutines.
func (s *Scheduler[V]) Len() int { return s.reg.len() }

// Create registers a Ready coroutine that will run entry(arg) on its first
// Resume. If the private stack cannot be allocated no id is consumed.
func (s *Scheduler[V]) Create(entry Entry[V], arg V) (ID, error) {
	if entry == nil {
		return noID, fmt.Errorf("%w: nil entry", ErrInvalidState)
	}
	st, err := s.alloc.Allocate(s.stackSize)
	if err != nil {
		if !errors.Is(err, ErrAllocationFailed) {
			err = fmt.Errorf("%w: %w", ErrAllocationFailed, err)
		}
		s.log.Warn("stack allocation failed", "size", s.stackSize, "error", err)
		return noID, err
	}
	id := s.reg.insert(&record[V]{
		status: Ready,
		entry:  entry,
		arg:    arg,
		stack:  st,
	})
	s.log.Debug("coroutine created", "coroutine", id)
	return id, nil
}

// IsAlive reports whether id names a coroutine that has not finished or
// been destroyed.
func (s *Scheduler[V]) IsAlive(id ID) bool {
	_, ok := s.reg.lookup(id)
	return ok
}

// Status returns the state of a live coroutine.
func (s *Scheduler[V]) Status(id ID) (Status, error) {
	r, ok := s.reg.lookup(id)
	if !ok {
		return Finished, fmt.Errorf("%w: coroutine %d", ErrNotFound, id)
	}
	return r.status, nil
}

// Current returns the id of the running coroutine, if any.
func (s *Scheduler[V]) Current() (ID, bool) {
	return s.running, s.current != nil
}

// Stack returns the private stack buffer of the running coroutine. It is
// scratch memory sized by WithStackSize; the coroutine itself runs on a
// runtime-managed goroutine stack.
func (s *Scheduler[V]) Stack() ([]byte, error) {
	if s.current == nil {
		return nil, ErrNoActiveCoroutine
	}
	return s.current.stack.Bytes(), nil
}

// Resume switches into coroutine id, delivering v to its pending Yield,
// and returns the next value it yields. When the coroutine returns
// instead, its return value is returned, and the coroutine is released
// before Resume returns. A panic inside the coroutine finishes it and is
// returned as a *PanicError.
//
// Resuming from inside a running coroutine is not supported and fails
// with ErrInvalidState, as does resuming an unknown id; the latter error
// also matches ErrNotFound.
func (s *Scheduler[V]) Resume(id ID, v V) (V, error) {
	var zero V
	r, ok := s.reg.lookup(id)
	if !ok {
		return zero, fmt.Errorf("%w: %w: coroutine %d", ErrInvalidState, ErrNotFound, id)
	}
	if s.current != nil {
		return zero, fmt.Errorf("%w: cannot resume coroutine %d while coroutine %d is running", ErrInvalidState, id, s.running)
	}
	if !r.status.resumable() {
		return zero, fmt.Errorf("%w: coroutine %d is %s", ErrInvalidState, id, r.status)
	}

	span := s.startSpan("cosched.Resume", id)
	r.pending = v
	s.switchIn(r)
	out := r.pending
	r.pending = zero

	var err error
	if r.status == Finished {
		if err = s.finish(r); err != nil {
			out = zero
		}
	}
	endSpan(span, r.status, err)
	if derr := s.drain(); derr != nil {
		s.log.Warn("destroyed coroutine failed to unwind", "error", derr)
	}
	return out, err
}

// Yield suspends the running coroutine, handing v to the Resume call that
// switched into it, and returns the value of the Resume that continues it.
// It fails with ErrNoActiveCoroutine outside a coroutine.
func (s *Scheduler[V]) Yield(v V) (V, error) {
	var zero V
	r := s.current
	if r == nil {
		return zero, ErrNoActiveCoroutine
	}
	if r.killed {
		panic(errDestroyed)
	}
	r.pending = v
	s.switchOut(r)
	in := r.pending
	r.pending = zero
	return in, nil
}

// Destroy removes coroutine id whatever its state and releases its stack.
//
// A Ready coroutine is dropped without running. A Suspended coroutine is
// switched into once so that its pending Yield unwinds it; deferred calls
// run and a panic other than the unwind itself is returned as a
// *PanicError. When the caller is itself a coroutine the unwind happens on
// the driving flow right after that coroutine switches out, before the
// Resume that drove it returns; a cleanup panic is then logged rather than
// returned. A coroutine destroying itself loses its id at once and is
// unwound at its next Yield.
func (s *Scheduler[V]) Destroy(id ID) error {
	r, ok := s.reg.lookup(id)
	if !ok {
		return fmt.Errorf("%w: coroutine %d", ErrNotFound, id)
	}
	s.reg.remove(id)
	r.killed = true

	switch r.status {
	case Running:
		s.log.Debug("coroutine destroyed while running", "coroutine", id)
		return nil
	case Suspended:
		if s.current != nil {
			s.unwinding = append(s.unwinding, r)
			s.log.Debug("coroutine destroyed, unwind deferred", "coroutine", id, "by", s.running)
			return nil
		}
		err := s.unwind(r)
		s.log.Debug("coroutine destroyed", "coroutine", id, "status", Suspended)
		if derr := s.drain(); derr != nil {
			err = errors.Join(err, derr)
		}
		return err
	default:
		r.status = Finished
		s.release(r)
		s.log.Debug("coroutine destroyed", "coroutine", id, "status", Ready)
		return nil
	}
}

// Close destroys every remaining coroutine in ascending id order and
// returns the joined errors of their unwinding. It must be called from the
// driving flow.
func (s *Scheduler[V]) Close() error {
	if s.current != nil {
		return fmt.Errorf("%w: close from inside coroutine %d", ErrInvalidState, s.running)
	}
	errs := []error{s.drain()}
	for s.reg.len() != 0 {
		for _, id := range s.reg.ids() {
			if err := s.Destroy(id); err != nil && !errors.Is(err, ErrNotFound) {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// unwind switches a destroyed Suspended coroutine in so that its pending
// Yield panics and its goroutine exits, then releases its stack.
func (s *Scheduler[V]) unwind(r *record[V]) error {
	span := s.startSpan("cosched.Destroy", r.id)
	s.switchIn(r)
	var err error
	if r.perr != nil {
		err = r.perr
	}
	s.release(r)
	endSpan(span, r.status, err)
	return err
}

// drain unwinds the coroutines destroyed from inside another coroutine. It
// runs on the driving flow. An unwinding coroutine may destroy more, so the
// queue is consumed until empty.
func (s *Scheduler[V]) drain() error {
	var errs []error
	for len(s.unwinding) != 0 {
		r := s.unwinding[0]
		s.unwinding = s.unwinding[1:]
		if err := s.unwind(r); err != nil {
			errs = append(errs, err)
		}
		s.log.Debug("coroutine unwound after deferred destroy", "coroutine", r.id)
	}
	s.unwinding = nil
	return errors.Join(errs...)
}

// finish releases a coroutine whose trampoline has returned.
func (s *Scheduler[V]) finish(r *record[V]) error {
	s.reg.remove(r.id)
	s.release(r)
	switch {
	case r.perr != nil:
		s.log.Warn("coroutine panicked", "coroutine", r.id, "panic", r.perr.Value)
		return r.perr
	case r.unwound:
		s.log.Debug("coroutine unwound", "coroutine", r.id)
		return fmt.Errorf("%w: coroutine %d was destroyed", ErrNotFound, r.id)
	case !r.returned:
		s.log.Warn("coroutine exited without returning", "coroutine", r.id)
		return fmt.Errorf("%w: coroutine %d exited without returning", ErrInvalidState, r.id)
	}
	s.log.Debug("coroutine finished", "coroutine", r.id)
	return nil
}

// release returns the stack to the allocator. The stack pointer is
// cleared so a record can never release twice.
func (s *Scheduler[V]) release(r *record[V]) {
	if r.stack != nil {
		s.alloc.Release(r.stack)
		r.stack = nil
	}
	var zero V
	r.co = nil
	r.entry = nil
	r.arg = zero
	r.pending = zero
}

func (s *Scheduler[V]) startSpan(name string, id ID) trace.Span {
	_, span := s.tracer.Start(s.ctx, name, trace.WithAttributes(
		attribute.String("cosched.scheduler", s.name),
		attribute.Int64("coroutine.id", int64(id)),
	))
	return span
}

func endSpan(span trace.Span, st Status, err error) {
	span.SetAttributes(attribute.String("coroutine.status", st.String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
