package telemetry

import (
	"context"

	"github.com/vango-dev/retree/pkg/recon"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name.
const defaultTracerName = "retree"

// TraceConfig configures the frame tracer.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "retree").
	TracerName string

	// Provider is the tracer provider. Default: the global provider.
	Provider trace.TracerProvider

	// Parent is the context frame spans are started under.
	// Default: context.Background().
	Parent context.Context

	// Attributes are added to every frame span.
	Attributes []attribute.KeyValue
}

// TraceOption configures the frame tracer.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(provider trace.TracerProvider) TraceOption {
	return func(c *TraceConfig) {
		c.Provider = provider
	}
}

// WithParent sets the context frame spans are started under.
func WithParent(ctx context.Context) TraceOption {
	return func(c *TraceConfig) {
		c.Parent = ctx
	}
}

// WithAttributes adds constant attributes to every frame span.
func WithAttributes(attrs ...attribute.KeyValue) TraceOption {
	return func(c *TraceConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// Tracer records one span per frame. It implements recon.Observer and, like
// the tree, is used from a single goroutine.
type Tracer struct {
	config TraceConfig
	tracer trace.Tracer

	ctx  context.Context
	span trace.Span
}

// NewTracer creates a frame tracer.
func NewTracer(opts ...TraceOption) *Tracer {
	config := TraceConfig{
		TracerName: defaultTracerName,
		Parent:     context.Background(),
	}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.Provider != nil {
		tracer = config.Provider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}
	return &Tracer{config: config, tracer: tracer, ctx: config.Parent}
}

// Context returns the context of the frame in progress, or the parent
// context between frames. Background jobs started during declaration use
// it to join the frame's trace.
func (t *Tracer) Context() context.Context {
	return t.ctx
}

// BeginFrame implements recon.Observer.
func (t *Tracer) BeginFrame(frame uint64) {
	attrs := append([]attribute.KeyValue{
		attribute.Int64("retree.frame", int64(frame)),
	}, t.config.Attributes...)

	t.ctx, t.span = t.tracer.Start(t.config.Parent, "retree.frame",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndFrame implements recon.Observer.
func (t *Tracer) EndFrame(s recon.FrameStats) {
	if t.span == nil {
		return
	}
	t.span.SetAttributes(
		attribute.Int("retree.live", s.Live),
		attribute.Int("retree.inserted", s.Inserted),
		attribute.Int("retree.refreshed", s.Refreshed),
		attribute.Int("retree.twins", s.Twins),
		attribute.Int("retree.pruned", s.Pruned),
		attribute.Int("retree.dirty", s.Dirty),
		attribute.Int("retree.cosmetic", s.Cosmetic),
	)
	if s.Err != nil {
		t.span.RecordError(s.Err)
		t.span.SetStatus(codes.Error, s.Err.Error())
	} else {
		t.span.SetStatus(codes.Ok, "")
	}
	t.span.End()
	t.span = nil
	t.ctx = t.config.Parent
}
