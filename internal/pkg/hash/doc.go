// Package hash provides helpers for hashing and verifying secrets.
//
// Typical usage is for one-time code hashing: store only the digest, then verify
// user input by comparing the plaintext against the stored digest. Implementations
// (like HMAC-SHA256) live in this package behind a small interface.
package hash
