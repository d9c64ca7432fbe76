// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reservation engine to distinguish between different failure scenarios.
// For example, ErrConflict signals that a guarded update found the row in
// an unexpected state (a seat already booked, a reservation no longer
// ACTIVE), which the engine surfaces as a Conflict to the caller.
package repository

import "errors"

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as confirming a reservation whose seat has
// already been booked by a concurrent transaction. The engine translates
// this into its Conflict error code.
var ErrConflict = errors.New("conflict")
