// Package sanitizer normalizes free-text rental input before validation and
// storage.
//
// All functions are idempotent. They never fail; input that cannot be
// cleaned comes back empty so the validator rejects it.
package sanitizer
