// Package ratelimit implements fixed-window quota checks over an atomic
// counter primitive.
//
// The limiter does not own any storage; it composes a Counter (typically a
// Redis client wrapper) so the same quota semantics can be enforced from any
// number of processes without in-process locking.
package ratelimit
