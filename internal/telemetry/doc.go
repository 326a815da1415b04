// Package telemetry emits queue observability events to pluggable
// sinks. Events are fired as side effects of queue operations; a
// failing sink never breaks the operation that emitted the event.
package telemetry
