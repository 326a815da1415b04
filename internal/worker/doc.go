// Package worker consumes a queue with a pool of long-lived workers.
//
// Each Worker owns a single control loop that suspends on one of three
// signals: a wake-up broadcast from its dispatch group, a completion
// notification from its current job task, or a one-second idle poll
// tick. Job handlers run in a separate goroutine guarded by a kill
// timer; a timed-out handler is abandoned (its context is cancelled,
// but there is no cooperative cleanup) and the outcome is recorded as
// a timeout. Handler panics become error outcomes. No handler failure
// ever takes the worker down.
//
// Completion notifications carry the identity of the task that
// produced them; the worker discards notifications that do not match
// its current task.
package worker
