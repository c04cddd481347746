package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestViewMeta_SpanNameWithPortal verifies span name includes portal.
func TestViewMeta_SpanNameWithPortal(t *testing.T) {
	meta := ViewMeta{
		Portal: "faculty",
		Entity: "roster",
	}

	expected := "view.compute.faculty.roster"
	if got := meta.SpanName(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

// TestViewMeta_SpanNameWithoutPortal verifies span name without portal.
func TestViewMeta_SpanNameWithoutPortal(t *testing.T) {
	meta := ViewMeta{
		Portal: "",
		Entity: "dashboard",
	}

	expected := "view.compute.dashboard"
	if got := meta.SpanName(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

// TestViewMeta_ID verifies ID generation with and without portal.
func TestViewMeta_ID(t *testing.T) {
	tests := []struct {
		name     string
		meta     ViewMeta
		expected string
	}{
		{
			name:     "with portal",
			meta:     ViewMeta{Portal: "student", Entity: "transcript"},
			expected: "student.transcript",
		},
		{
			name:     "without portal",
			meta:     ViewMeta{Portal: "", Entity: "calendar"},
			expected: "calendar",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.meta.ViewID(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

// TestTracer_SpanAttributes verifies all attributes are present on span.
func TestTracer_SpanAttributes(t *testing.T) {
	// Set up in-memory span recorder
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := ViewMeta{
		Key:    "view:roster:ab12cd34ef56ab78",
		Portal: "faculty",
		Entity: "roster",
		Tags:   []string{"course:cs101", "term:2026f"},
	}

	ctx, span := tr.StartSpan(context.Background(), meta)
	tr.EndSpan(span, nil)
	_ = ctx // Suppress unused warning

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]

	// Verify span name
	if s.Name() != "view.compute.faculty.roster" {
		t.Errorf("expected span name 'view.compute.faculty.roster', got %q", s.Name())
	}

	// Verify attributes
	attrs := s.Attributes()
	attrMap := make(map[string]attribute.Value)
	for _, a := range attrs {
		attrMap[string(a.Key)] = a.Value
	}

	// Required attributes
	if v, ok := attrMap["view.id"]; !ok || v.AsString() != "faculty.roster" {
		t.Errorf("expected view.id='faculty.roster', got %v", v)
	}
	if v, ok := attrMap["view.portal"]; !ok || v.AsString() != "faculty" {
		t.Errorf("expected view.portal='faculty', got %v", v)
	}
	if v, ok := attrMap["view.entity"]; !ok || v.AsString() != "roster" {
		t.Errorf("expected view.entity='roster', got %v", v)
	}
	if v, ok := attrMap["view.error"]; !ok || v.AsBool() != false {
		t.Errorf("expected view.error=false, got %v", v)
	}

	// Optional attributes
	if v, ok := attrMap["view.key"]; !ok || v.AsString() != "view:roster:ab12cd34ef56ab78" {
		t.Errorf("expected view.key='view:roster:ab12cd34ef56ab78', got %v", v)
	}
	if v, ok := attrMap["view.tags"]; !ok || len(v.AsStringSlice()) != 2 {
		t.Errorf("expected two view.tags, got %v", v)
	}
}

// TestTracer_SpanAttributesMinimal verifies only required attributes when minimal meta.
func TestTracer_SpanAttributesMinimal(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := ViewMeta{
		Entity: "calendar",
	}

	ctx, span := tr.StartSpan(context.Background(), meta)
	tr.EndSpan(span, nil)
	_ = ctx

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	attrs := s.Attributes()
	attrMap := make(map[string]attribute.Value)
	for _, a := range attrs {
		attrMap[string(a.Key)] = a.Value
	}

	// Required attributes should be present
	if _, ok := attrMap["view.id"]; !ok {
		t.Error("expected view.id attribute")
	}
	if _, ok := attrMap["view.entity"]; !ok {
		t.Error("expected view.entity attribute")
	}
	if _, ok := attrMap["view.error"]; !ok {
		t.Error("expected view.error attribute")
	}

	// Optional attributes should NOT be present when empty
	if v, ok := attrMap["view.portal"]; ok && v.AsString() != "" {
		t.Errorf("expected no view.portal, got %v", v)
	}
	if v, ok := attrMap["view.key"]; ok && v.AsString() != "" {
		t.Errorf("expected no view.key, got %v", v)
	}
}

// TestTracer_ContextPropagation verifies parent span is propagated.
func TestTracer_ContextPropagation(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := ViewMeta{Entity: "dashboard"}

	// Create parent span
	parentCtx, parentSpan := tracer.Start(context.Background(), "parent")

	// Create child span through our tracer
	childCtx, childSpan := tr.StartSpan(parentCtx, meta)
	tr.EndSpan(childSpan, nil)
	parentSpan.End()
	_ = childCtx

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	// Find the child span (the one with view.compute prefix)
	var child sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Name() == "view.compute.dashboard" {
			child = s
			break
		}
	}
	if child == nil {
		t.Fatal("child span not found")
	}

	// Verify parent-child relationship
	if child.Parent().TraceID() != parentSpan.SpanContext().TraceID() {
		t.Error("child span should have same trace ID as parent")
	}
	if !child.Parent().SpanID().IsValid() {
		t.Error("child span should have valid parent span ID")
	}
}

// TestTracer_ErrorRecording verifies error sets span status and attribute.
func TestTracer_ErrorRecording(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := ViewMeta{Entity: "gradebook"}

	ctx, span := tr.StartSpan(context.Background(), meta)
	testErr := errors.New("computation failed")
	tr.EndSpan(span, testErr)
	_ = ctx

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]

	// Verify error status
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status().Code)
	}

	// Verify view.error attribute
	attrs := s.Attributes()
	var viewError bool
	for _, a := range attrs {
		if string(a.Key) == "view.error" {
			viewError = a.Value.AsBool()
			break
		}
	}
	if !viewError {
		t.Error("expected view.error=true")
	}
}
