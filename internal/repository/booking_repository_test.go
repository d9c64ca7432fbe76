package repository

import (
	"regexp"
	"testing"
	"time"
)

func TestNewBookingIDFormat(t *testing.T) {
	now := time.Date(2026, 7, 4, 18, 30, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^BK-20260704-[0-9A-Z]{6}$`)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id, err := NewBookingID(now)
		if err != nil {
			t.Fatalf("mint booking id: %v", err)
		}
		if !pattern.MatchString(id) {
			t.Fatalf("booking id %q does not match BK-YYYYMMDD-XXXXXX", id)
		}
		if seen[id] {
			// Collisions are possible in principle; the transaction retries
			// them. Two hundred draws colliding in practice points at a
			// broken suffix generator.
			t.Fatalf("duplicate booking id %q after %d draws", id, i)
		}
		seen[id] = true
	}
}

func TestNewBookingIDUsesUTCDate(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// Local date is already July 5th; the id must carry the UTC date.
	now := time.Date(2026, 7, 5, 3, 0, 0, 0, loc)

	id, err := NewBookingID(now)
	if err != nil {
		t.Fatalf("mint booking id: %v", err)
	}
	if want := "BK-20260704-"; id[:len(want)] != want {
		t.Fatalf("booking id %q, want prefix %q", id, want)
	}
}
