package cosched

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedScheduler(t *testing.T) (*Scheduler[int], *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return New[int](WithTracer(provider.Tracer("test")), WithName("traced")), exporter
}

func spanAttr(span tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestResumeSpans(t *testing.T) {
	r := require.New(t)
	s, exporter := newTracedScheduler(t)

	id, err := s.Create(func(int) int {
		_, _ = s.Yield(1)
		return 2
	}, 0)
	r.NoError(err)
	_, err = s.Resume(id, 0)
	r.NoError(err)
	_, err = s.Resume(id, 0)
	r.NoError(err)

	spans := exporter.GetSpans()
	r.Len(spans, 2)
	for i, want := range []string{"suspended", "finished"} {
		span := spans[i]
		r.Equal("cosched.Resume", span.Name)
		r.Equal(codes.Ok, span.Status.Code)

		v, ok := spanAttr(span, "coroutine.id")
		r.True(ok)
		r.Equal(int64(id), v.AsInt64())

		v, ok = spanAttr(span, "coroutine.status")
		r.True(ok)
		r.Equal(want, v.AsString())

		v, ok = spanAttr(span, "cosched.scheduler")
		r.True(ok)
		r.Equal("traced", v.AsString())
	}
}

func TestPanicAndDestroySpans(t *testing.T) {
	r := require.New(t)
	s, exporter := newTracedScheduler(t)

	panicking, err := s.Create(func(int) int { panic("boom") }, 0)
	r.NoError(err)
	_, err = s.Resume(panicking, 0)
	r.Error(err)

	suspended, err := s.Create(func(int) int {
		_, _ = s.Yield(1)
		return 2
	}, 0)
	r.NoError(err)
	_, err = s.Resume(suspended, 0)
	r.NoError(err)
	r.NoError(s.Destroy(suspended))

	spans := exporter.GetSpans()
	r.Len(spans, 3)
	r.Equal("cosched.Resume", spans[0].Name)
	r.Equal(codes.Error, spans[0].Status.Code)
	r.NotEmpty(spans[0].Events)
	r.Equal("cosched.Resume", spans[1].Name)
	r.Equal("cosched.Destroy", spans[2].Name)
	r.Equal(codes.Ok, spans[2].Status.Code)
}
