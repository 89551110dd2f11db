// Package availability computes how many units of an item are free over a
// time window, given the reservations that compete for it.
//
// Everything in this package is pure: no I/O, no logging, no shared state.
// Reservation windows are half-open, [Start, End), and two windows overlap
// only when they share a non-empty span; touching endpoints do not count.
package availability
