// Package telemetry provides OpenTelemetry integration for hrdir.
//
// Manager builds and owns the TracerProvider (OTLP over gRPC) and installs the
// W3C trace context propagator, so every request the client sends carries a
// traceparent header. Span attribute keys shared by the client live in
// attributes.go, and operator-facing error templates in errors.go.
//
// Typical use from the CLI:
//
//	manager := telemetry.NewManager(telemetry.Config{
//	    Enabled:        cfg.OpenTelemetry.Enabled,
//	    Endpoint:       cfg.OpenTelemetry.Endpoint,
//	    Insecure:       cfg.OpenTelemetry.Insecure,
//	    SamplingRate:   cfg.OpenTelemetry.SamplingRate,
//	    ServiceName:    "hrdir",
//	    ServiceVersion: version,
//	})
//	_ = manager.Initialize(ctx)
//	defer manager.Shutdown(ctx)
//
//	c, err := client.New(cfg, client.WithTracerProvider(manager.TracerProvider()))
//
// If the collector cannot be reached at startup the manager disables itself
// and the client falls back to a noop tracer.
package telemetry
