// Package tracing exports completion calls to Langfuse over OpenTelemetry.
// Without Langfuse keys every tracer is a no-op.
package tracing

import (
	"context"
	"encoding/base64"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	InstrumentationName = "seo-assistant"
	DefaultHost         = "https://cloud.langfuse.com"
	otlpPath            = "/api/public/otel/v1/traces"
)

type Config struct {
	PublicKey   string
	SecretKey   string
	Host        string
	ServiceName string
}

func (c Config) enabled() bool {
	return c.PublicKey != "" && c.SecretKey != ""
}

// Provider owns the tracer provider used by TracedClient.
type Provider struct {
	tp  trace.TracerProvider
	sdk *sdktrace.TracerProvider
}

// Disabled returns a Provider whose tracers record nothing.
func Disabled() *Provider {
	return &Provider{tp: noop.NewTracerProvider()}
}

// New returns an exporting Provider when both keys are set and a no-op one
// otherwise. The exporter does not connect until the first export.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.enabled() {
		return Disabled(), nil
	}
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(EndpointURL(cfg.Host)),
		otlptracehttp.WithHeaders(map[string]string{
			"Authorization": authHeader(cfg.PublicKey, cfg.SecretKey),
		}),
	)
	if err != nil {
		return nil, err
	}
	return newSDKProvider(exporter, cfg.ServiceName)
}

func newSDKProvider(exporter sdktrace.SpanExporter, serviceName string) (*Provider, error) {
	if serviceName == "" {
		serviceName = InstrumentationName
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		),
	)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return &Provider{tp: tp, sdk: tp}, nil
}

// Enabled reports whether spans leave the process.
func (p *Provider) Enabled() bool {
	return p != nil && p.sdk != nil
}

func (p *Provider) Tracer() trace.Tracer {
	if p == nil || p.tp == nil {
		return noop.NewTracerProvider().Tracer(InstrumentationName)
	}
	return p.tp.Tracer(InstrumentationName)
}

// Flush exports every finished span.
func (p *Provider) Flush(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return p.sdk.ForceFlush(ctx)
}

func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return p.sdk.Shutdown(ctx)
}

// EndpointURL returns the OTLP traces endpoint of a Langfuse host.
func EndpointURL(host string) string {
	base := strings.TrimRight(strings.TrimSpace(host), "/")
	if base == "" {
		base = DefaultHost
	}
	return base + otlpPath
}

func authHeader(publicKey, secretKey string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(publicKey+":"+secretKey))
}
