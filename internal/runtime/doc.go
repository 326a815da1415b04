// Package runtime wires configuration, queues, dispatch groups,
// telemetry, and worker pools for a single process embedding spool.
package runtime
