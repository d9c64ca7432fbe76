package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/booking-backend/internal/model"
	"github.com/iliyamo/booking-backend/internal/utils"
)

// lockKeyPrefix namespaces seat lock keys in Redis.  The full key for a
// seat is "lock:{seatID}".
const lockKeyPrefix = "lock:"

// ErrSeatHeld is returned by Acquire when another requester already holds
// the lock for the seat.  The remaining TTL is returned alongside so the
// caller can tell the client when to retry.
var ErrSeatHeld = errors.New("seat already held")

// releaseScript deletes a lock only when its stored token matches the
// expected one.  The compare and the delete run inside a single Lua call,
// so a lock that expired and was re-acquired by someone else between our
// read and our delete can never be removed by the wrong owner.  An empty
// expected token skips the comparison (unconditional delete).
var releaseScript = redis.NewScript(`
	local cur = redis.call('GET', KEYS[1])
	if not cur then
		return 0
	end
	if ARGV[1] == '' then
		return redis.call('DEL', KEYS[1])
	end
	local ok, data = pcall(cjson.decode, cur)
	if ok and data.token == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// SeatLockRepo is the lock store adapter.  It provides the only atomic
// gate that decides which single requester gets a seat: SET NX with a TTL
// guarantees that under arbitrary concurrency exactly one acquire wins and
// the lock auto-disappears at its expiry without any external action.
// All timestamps are UTC.
type SeatLockRepo struct {
	rdb *redis.Client
	ttl time.Duration // lock lifetime granted on acquire
}

// NewSeatLockRepo returns a SeatLockRepo bound to the provided client.
// The ttl bounds how long a user has to complete payment.
func NewSeatLockRepo(rdb *redis.Client, ttl time.Duration) *SeatLockRepo {
	return &SeatLockRepo{rdb: rdb, ttl: ttl}
}

// TTL reports the lock lifetime this repo grants on acquire.
func (r *SeatLockRepo) TTL() time.Duration { return r.ttl }

func lockKey(seatID uint64) string {
	return lockKeyPrefix + strconv.FormatUint(seatID, 10)
}

// Acquire mints a fresh reservation token and attempts an atomic
// create-if-absent with expiry on the seat's lock key.  On success it
// returns the new lock and the granted TTL.  When the key already exists
// it returns ErrSeatHeld together with the remaining TTL of the current
// holder.  Store I/O failures are returned wrapped and never reported as
// success.
func (r *SeatLockRepo) Acquire(ctx context.Context, seatID uint64, userID string) (*model.SeatLock, time.Duration, error) {
	token, err := utils.RandomToken(16)
	if err != nil {
		return nil, 0, fmt.Errorf("lock store: mint token: %w", err)
	}
	now := time.Now().UTC()
	lock := model.SeatLock{
		SeatID:     seatID,
		Token:      token,
		UserID:     userID,
		AcquiredAt: now,
		ExpiresAt:  now.Add(r.ttl),
	}
	payload, err := json.Marshal(lock)
	if err != nil {
		return nil, 0, fmt.Errorf("lock store: encode lock: %w", err)
	}
	ok, err := r.rdb.SetNX(ctx, lockKey(seatID), payload, r.ttl).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("lock store: acquire: %w", err)
	}
	if !ok {
		remaining, err := r.rdb.PTTL(ctx, lockKey(seatID)).Result()
		if err != nil {
			return nil, 0, fmt.Errorf("lock store: remaining ttl: %w", err)
		}
		if remaining < 0 {
			// Key vanished between SETNX and PTTL; report the full TTL so
			// the caller's retry hint stays within (0, L].
			remaining = r.ttl
		}
		return nil, remaining, ErrSeatHeld
	}
	return &lock, r.ttl, nil
}

// Inspect returns the current lock for a seat without mutating it, or nil
// when no lock exists.
func (r *SeatLockRepo) Inspect(ctx context.Context, seatID uint64) (*model.SeatLock, error) {
	raw, err := r.rdb.Get(ctx, lockKey(seatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock store: inspect: %w", err)
	}
	var lock model.SeatLock
	if err := json.Unmarshal(raw, &lock); err != nil {
		return nil, fmt.Errorf("lock store: decode lock: %w", err)
	}
	lock.SeatID = seatID
	return &lock, nil
}

// Verify reports whether a live lock exists for the seat with a matching
// token and user.  The expiry comparison is strict: a lock inspected at
// exactly its expiration instant is already dead.
func (r *SeatLockRepo) Verify(ctx context.Context, seatID uint64, token, userID string) (bool, error) {
	lock, err := r.Inspect(ctx, seatID)
	if err != nil {
		return false, err
	}
	if lock == nil {
		return false, nil
	}
	if lock.Token != token || lock.UserID != userID {
		return false, nil
	}
	return lock.ExpiresAt.After(time.Now().UTC()), nil
}

// Release removes the lock for a seat.  When expectedToken is non-empty
// the delete happens only if the stored token matches (compare-and-delete);
// otherwise the delete is unconditional.  It reports whether a key was
// actually removed; deleting an already-expired lock is a no-op.
func (r *SeatLockRepo) Release(ctx context.Context, seatID uint64, expectedToken string) (bool, error) {
	n, err := releaseScript.Run(ctx, r.rdb, []string{lockKey(seatID)}, expectedToken).Int64()
	if err != nil {
		return false, fmt.Errorf("lock store: release: %w", err)
	}
	return n > 0, nil
}

// BulkExists checks lock existence for many seats in a single pipelined
// round trip.  The result is a point-in-time snapshot: a lock may appear
// or vanish immediately afterwards, which is why listing is only
// eventually consistent with reserve.
func (r *SeatLockRepo) BulkExists(ctx context.Context, seatIDs []uint64) (map[uint64]bool, error) {
	result := make(map[uint64]bool, len(seatIDs))
	if len(seatIDs) == 0 {
		return result, nil
	}
	cmds := make([]*redis.IntCmd, len(seatIDs))
	pipe := r.rdb.Pipeline()
	for i, id := range seatIDs {
		cmds[i] = pipe.Exists(ctx, lockKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("lock store: bulk exists: %w", err)
	}
	for i, id := range seatIDs {
		result[id] = cmds[i].Val() > 0
	}
	return result, nil
}
