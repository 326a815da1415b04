// Package fsdir wraps the directory operations queue state is built
// on: ensure a directory exists, count and list its regular files,
// find the lexicographically first file, and move files between
// directories by atomic rename.
//
// Rename atomicity on a single filesystem is the only concurrency
// primitive the queue uses. Two processes racing to move the same file
// resolve without locks: exactly one rename succeeds, the loser gets
// an error. All queue directories must therefore live on one
// filesystem.
package fsdir
