package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials/insecure"
)

// Manager owns the TracerProvider for the process: it builds it from
// configuration, registers it globally and flushes it on shutdown.
type Manager struct {
	enabled        bool
	tracerProvider *sdktrace.TracerProvider
	config         Config
}

// Config holds the OpenTelemetry settings used by the Manager.
type Config struct {
	Enabled  bool
	Endpoint string // OTLP gRPC collector, e.g. "localhost:4317"
	Insecure bool

	// SamplingRate is the fraction of traces kept, from 0.0 to 1.0.
	SamplingRate float64

	ServiceName    string
	ServiceVersion string

	// APIHost is recorded as peer.service so traces show which directory
	// tenant was called.
	APIHost string
}

// NewManager creates a manager. Nothing is exported until Initialize runs.
func NewManager(cfg Config) *Manager {
	return &Manager{
		enabled: cfg.Enabled,
		config:  cfg,
	}
}

// Initialize builds the OTLP exporter and TracerProvider and installs them,
// with the W3C trace context propagator, as the global defaults.
//
// Failures are logged and leave the manager disabled; they are not returned,
// so a missing collector never prevents a command from running.
func (m *Manager) Initialize(ctx context.Context) error {
	logger := log.WithField("component", "telemetry")
	if !m.config.Enabled {
		logger.Debug("Tracing disabled")
		return nil
	}

	tp, err := m.buildProvider(ctx)
	if err != nil {
		logger.WithError(err).Warn("Tracing unavailable, continuing without spans")
		m.enabled = false
		return nil
	}

	m.tracerProvider = tp
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.WithFields(log.Fields{
		"endpoint": m.config.Endpoint,
		"sampling": m.config.SamplingRate,
	}).Info("Tracing enabled")
	return nil
}

// buildProvider assembles exporter, resource and sampler into a provider.
func (m *Manager) buildProvider(ctx context.Context) (*sdktrace.TracerProvider, error) {
	exporter, err := m.createExporter(ctx)
	if err != nil {
		return nil, err
	}
	res, err := m.createResource(ctx)
	if err != nil {
		return nil, fmt.Errorf("building trace resource: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(m.createSampler()),
	), nil
}

func (m *Manager) createExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	if m.config.Endpoint == "" {
		return nil, errors.New("OTLP endpoint is empty")
	}
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(m.config.Endpoint)}
	if m.config.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter for %s: %w", m.config.Endpoint, err)
	}
	return exporter, nil
}

// createResource describes this process; the API host becomes peer.service.
func (m *Manager) createResource(ctx context.Context) (*resource.Resource, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	kvs := []attribute.KeyValue{
		semconv.ServiceName(m.config.ServiceName),
		semconv.ServiceVersion(m.config.ServiceVersion),
		semconv.HostName(hostname),
	}
	if m.config.APIHost != "" {
		kvs = append(kvs, semconv.PeerService(m.config.APIHost))
	}
	return resource.New(ctx, resource.WithAttributes(kvs...))
}

// createSampler keeps every trace at rate 1 and a TraceID ratio below it.
func (m *Manager) createSampler() sdktrace.Sampler {
	if m.config.SamplingRate >= 1.0 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.TraceIDRatioBased(m.config.SamplingRate)
}

// Shutdown flushes pending spans. Call it before the process exits.
func (m *Manager) Shutdown(ctx context.Context) error {
	if !m.enabled || m.tracerProvider == nil {
		return nil
	}
	if err := m.tracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("flushing spans: %w", err)
	}
	log.WithField("component", "telemetry").Debug("Tracing shut down")
	return nil
}

// IsEnabled reports whether tracing is operational. It turns false when
// Initialize fails.
func (m *Manager) IsEnabled() bool {
	return m.enabled
}

// TracerProvider returns the provider for injection into the client, or nil
// when tracing is off.
func (m *Manager) TracerProvider() trace.TracerProvider {
	if m.tracerProvider == nil {
		return nil
	}
	return m.tracerProvider
}
