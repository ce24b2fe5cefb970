package telemetry

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), false, nil, "test")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestSetup_ExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := Setup(context.Background(), true, &buf, "1.2.3")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	_, span := Tracer().Start(context.Background(), "fetch")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"Name":"fetch"`) {
		t.Errorf("exported spans should include fetch, got: %s", out)
	}
	if !strings.Contains(out, "1.2.3") {
		t.Errorf("resource should carry the service version, got: %s", out)
	}
}

func TestRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := tp.Tracer("test").Start(context.Background(), "extract")
	RecordError(span, nil)
	RecordError(span, errors.New("marker page not found"))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("got %d spans, want 1", len(ended))
	}
	if got := ended[0].Status().Description; got != "marker page not found" {
		t.Errorf("status description = %q", got)
	}
	if n := len(ended[0].Events()); n != 1 {
		t.Errorf("got %d events, want 1 error event", n)
	}
}
