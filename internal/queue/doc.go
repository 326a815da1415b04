// Package queue implements a durable, filesystem-backed job queue.
//
// A queue is a directory pair under a shared root:
//
//	<root>/<queue>/queued/  - messages available for pull
//	<root>/<queue>/pulled/  - messages owned by a live worker
//
// Each message is one file. Its filename encodes everything the queue
// needs without reading the file:
//
//	<timestamp_ms>(.<flag>)*
//
// where the timestamp is the decimal push time in milliseconds and
// each flag records one prior failed attempt (timeout, error, dead, or
// a caller-supplied token). The payload is the file's contents and is
// read lazily at pull time.
//
// # Message Lifecycle
//
//  1. Push: payload written to an exclusive temp file, renamed into
//     queued/. Capacity and size limits are checked first.
//  2. Pull: the lexicographically first file in queued/ is renamed
//     into pulled/. Losing a rename race returns no message. Messages
//     older than the queue TTL are routed as dead and the pull moves
//     on to the next candidate.
//  3. Acknowledge: the file is deleted. Terminal success.
//  4. Fail: the file is renamed back into queued/ with the failure
//     flag appended, or routed to the dead-letter queue (a sibling
//     queue) once the retry cap is reached, or deleted when no
//     dead-letter queue is configured.
//  5. Recovery: Open sweeps pulled/ and fails every orphan with a
//     timeout flag, so pulled/ only ever holds messages owned by a
//     live worker once startup completes.
//
// # Concurrency
//
// Atomic same-filesystem rename is the only synchronization primitive.
// Producers, workers, and restarted processes share nothing but the
// directory tree; a file exists in exactly one state directory at any
// instant. Delivery order approximates timestamp order but is not a
// strict FIFO under concurrent consumers.
package queue
