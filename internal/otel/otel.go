// Package otel exports compile runs as OpenTelemetry traces.
package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hanpama/qlc/internal/eventbus"
	"github.com/hanpama/qlc/internal/events"
	"github.com/hanpama/qlc/internal/runid"
)

const tracerName = "qlc"

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(ctx context.Context, endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	unsubscribe := Register(tp.Tracer(tracerName))
	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Register subscribes tracer to the compile events of the global bus.
func Register(tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	return s.register()
}

type subscriber struct {
	tracer   trace.Tracer
	runSpans sync.Map // run id -> trace.Span
}

func (s *subscriber) register() func() {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.RunStarted) {
			rid, _ := runid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "qlc.run", trace.WithTimestamp(e.Start))
			span.SetAttributes(
				attribute.String("qlc.run_id", rid),
				attribute.String("qlc.root_dir", e.RootDir),
				attribute.Int("qlc.threads", e.Threads),
			)
			s.runSpans.Store(rid, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.FileCompiled) {
			rid, _ := runid.FromContext(ctx)
			parent := ctx
			if v, ok := s.runSpans.Load(rid); ok {
				parent = trace.ContextWithSpan(ctx, v.(trace.Span))
			}
			_, span := s.tracer.Start(parent, "qlc.compile_file", trace.WithTimestamp(e.Start))
			span.SetAttributes(
				attribute.String("qlc.path", e.Path),
				attribute.Int("qlc.error_count", e.Errors),
				attribute.Int("qlc.warning_count", e.Warnings),
				attribute.Int("qlc.global_types_count", e.Globals),
			)
			span.End(trace.WithTimestamp(e.Start.Add(e.Duration)))
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.RunFinished) {
			rid, _ := runid.FromContext(ctx)
			v, ok := s.runSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(
				attribute.Int("qlc.file_count", e.Files),
				attribute.Int("qlc.error_count", e.Errors),
				attribute.Int("qlc.warning_count", e.Warnings),
			)
			if e.Err != nil {
				span.RecordError(e.Err)
			}
			span.End()
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
