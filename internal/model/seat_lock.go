package model

import "time"

// SeatLock is the ephemeral, TTL-bounded right to proceed to payment for a
// seat.  It lives only in Redis under the key "lock:{seatID}" and vanishes
// on its own at ExpiresAt.  For any seat at most one lock exists at any
// instant; Redis SET NX is the atomic gate that enforces this.
//
// Fields:
//  SeatID     – seat the lock covers (encoded in the key, not the value).
//  Token      – fresh opaque reservation token minted on acquire.
//  UserID     – user holding the lock.
//  AcquiredAt – when the lock was taken.
//  ExpiresAt  – when the lock lapses; comparisons are strict.
type SeatLock struct {
	SeatID     uint64    `json:"-"`
	Token      string    `json:"token"`
	UserID     string    `json:"user_id"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
