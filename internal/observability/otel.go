package observability

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/m-karthika14/mindmirrorai/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TracerName is the instrumentation scope used for spans created here.
const TracerName = "github.com/m-karthika14/mindmirrorai"

// Tracer returns the tracer for application spans. It is a no-op until Init
// installs a provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// Init installs a global tracer provider. With tracing disabled it returns a
// shutdown func that does nothing.
func Init(ctx context.Context, conf config.TracingConfig, log *zap.Logger) (func(context.Context) error, error) {
	if !conf.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(conf.ServiceName),
	))
	if err != nil {
		log.Warn("otel resource init failed (continuing)", zap.Error(err))
	}

	exporter, err := buildExporter(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("otel exporter init failed: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(clampRatio(conf.SampleRatio)))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("otel tracing initialized",
		zap.String("service", conf.ServiceName),
		zap.String("exporter", conf.Exporter),
	)
	return tp.Shutdown, nil
}

func buildExporter(ctx context.Context, conf config.TracingConfig) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(conf.Exporter) {
	case "otlp":
		target, err := parseOTLPEndpoint(conf.Endpoint)
		if err != nil {
			return nil, err
		}
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(target.hostPort)}
		if target.path != "" {
			opts = append(opts, otlptracehttp.WithURLPath(target.path))
		}
		if target.insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	case "stdout", "":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", conf.Exporter)
	}
}

type otlpTarget struct {
	hostPort string
	path     string
	insecure bool
}

// parseOTLPEndpoint accepts either host:port, which is sent over plain HTTP,
// or a full http(s) URL.
func parseOTLPEndpoint(endpoint string) (otlpTarget, error) {
	if !strings.Contains(endpoint, "://") {
		return otlpTarget{hostPort: endpoint, insecure: true}, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return otlpTarget{}, fmt.Errorf("invalid otlp endpoint %q: %w", endpoint, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return otlpTarget{}, fmt.Errorf("invalid otlp endpoint %q: unsupported scheme %q", endpoint, u.Scheme)
	}
	if u.Host == "" {
		return otlpTarget{}, fmt.Errorf("invalid otlp endpoint %q: missing host", endpoint)
	}
	path := u.Path
	if path == "/" {
		path = ""
	}
	return otlpTarget{hostPort: u.Host, path: path, insecure: u.Scheme == "http"}, nil
}

func clampRatio(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
