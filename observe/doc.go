// Package observe provides telemetry for cached view computations.
//
// It wires OpenTelemetry tracing and metrics plus a structured JSON logger
// behind one Observer, and exports cache engine behavior through a
// Recorder implementation.
package observe
