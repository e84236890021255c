// Package reactor provides reactive primitives — Signal, Value, Future,
// and reactive collections — built on a shared, re-entrancy-safe
// listener dispatch core. It introduces no threads or schedulers of its
// own; dispatch runs synchronously on the goroutine that triggers it, and
// a notification arriving while a frame of the same reactor is active is
// queued and run by that frame's goroutine.
package reactor
