// Package id provides a per-process monotonic millisecond source.
//
// Queue message filenames begin with a decimal millisecond timestamp
// and carry no other distinguishing token, so two pushes landing in
// the same millisecond would collide on a destination name. The Clock
// hands out strictly increasing millisecond values: a second caller
// within the same millisecond receives the next one. Values stay close
// to wall-clock time and remain lexicographically sortable when
// rendered as equal-width decimal strings.
package id
