// Package instrumentation wires OpenTelemetry metrics for the MCP server.
//
// The Provider owns the meter provider and exporter selection (Prometheus by
// default, OTLP or stdout via configuration); Metrics is the typed recording
// surface the rest of the application uses. Instrumentation is optional: a
// disabled provider hands out no-op recorders so call sites never need to
// branch.
package instrumentation
