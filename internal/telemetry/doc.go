// Package telemetry provides OpenTelemetry instrumentation for the
// constellation daemon.
//
// # Overview
//
// Traces and metrics are exported over OTLP (gRPC or HTTP) to a collector.
// Telemetry is off by default. When enabled but the exporters cannot be
// built, the instance is marked degraded and the global no-op providers
// stay in place; the daemon keeps serving.
//
// # Usage
//
//	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg, version))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(ctx)
//
//	tracer := tel.Tracer("constellation.aggregator")
//	ctx, span := tracer.Start(ctx, "constellation.Build")
//	defer span.End()
//
// # Testing
//
// NewTestTelemetry records spans in memory and collects metrics through a
// manual reader:
//
//	tt := telemetry.NewTestTelemetry()
//	agg := constellation.NewAggregator(store, ls, logger, constellation.Options{
//	    Tracer: tt.Tracer("test"),
//	})
//	agg.Build(ctx)
//	tt.RequireSpan(t, "constellation.Build")
package telemetry
