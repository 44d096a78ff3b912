/*
Package idempotency implements a persistent (key, operation) -> outcome
map mediating safe replay of every mutation, keyed on (key, operation)
with a recorded target object id and response kind.
*/
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/warp/paymentflow/domain"
)

// Registry is the persistence contract idempotent replay needs. Record
// must be called in the same transaction as the mutation's write so
// commit atomicity gives "exactly-once side effect" semantics.
type Registry interface {
	// Lookup returns the previously recorded outcome for (key, operation),
	// or ok=false if no such attempt has been recorded.
	Lookup(ctx context.Context, key string, op domain.Operation) (rec domain.IdempotencyRecord, ok bool, err error)

	// Record persists the outcome of (key, operation) within the caller's
	// transaction. It must be called after the audit log write so the two
	// are committed together.
	Record(ctx context.Context, rec domain.IdempotencyRecord) error
}

// HashPayload produces a stable fingerprint of a mutation's input so a
// replay with an identical key but a different payload can be detected
// and rejected as a conflict.
func HashPayload(payload any) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", domain.Wrap(err, domain.KindInternal, "failed to hash idempotency payload")
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// CheckReplay is the storage-independent decision logic: given the
// previously recorded hash (if any) and the current payload's hash,
// decide whether this is a fresh attempt, an exact replay, or a
// conflicting reuse of the same key.
type ReplayDecision int

const (
	ReplayFresh ReplayDecision = iota
	ReplayIdentical
	ReplayConflict
)

func CheckReplay(existing domain.IdempotencyRecord, found bool, currentPayloadHash string) ReplayDecision {
	if !found {
		return ReplayFresh
	}
	if existing.PayloadHash == currentPayloadHash {
		return ReplayIdentical
	}
	return ReplayConflict
}
