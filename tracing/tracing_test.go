package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/webriots/cosched"
)

func TestNewProviderRecordsSchedulerSpans(t *testing.T) {
	r := require.New(t)

	exporter := tracetest.NewInMemoryExporter()
	tp, err := NewProvider("cosched-test", "v0", exporter)
	r.NoError(err)
	defer func() { r.NoError(tp.Shutdown(context.Background())) }()

	s := cosched.New[int](cosched.WithTracer(tp.Tracer("test")))
	id, err := s.Create(func(arg int) int { return arg + 1 }, 1)
	r.NoError(err)
	out, err := s.Resume(id, 0)
	r.NoError(err)
	r.Equal(2, out)

	spans := exporter.GetSpans()
	r.Len(spans, 1)
	r.Equal("cosched.Resume", spans[0].Name)

	var service string
	for _, kv := range spans[0].Resource.Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	r.Equal("cosched-test", service)
}

func TestInitInstallsGlobalProvider(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	r.NoError(Init("cosched-init", "v1", &buf))
	r.NoError(Init("ignored", "v2", nil))

	s := cosched.New[int]()
	id, err := s.Create(func(int) int { return 0 }, 0)
	r.NoError(err)
	_, err = s.Resume(id, 0)
	r.NoError(err)

	r.NoError(Shutdown(context.Background()))
	r.Contains(buf.String(), "cosched.Resume")
	r.Contains(buf.String(), "cosched-init")
	r.NotNil(otel.GetTracerProvider())
}

func TestInitWithNilExporter(t *testing.T) {
	require.NoError(t, InitWithExporter("x", "y", nil))
}
