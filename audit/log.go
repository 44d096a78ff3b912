/*
Package audit implements an append-only event log. The Log interface
deliberately has no Update or Delete method: the interface shape itself
enforces append-only semantics.
*/
package audit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/warp/paymentflow/domain"
)

// Log is the persistence contract the audit trail needs. Append must be
// called within the same transaction as the mutation it records, before
// the idempotency registry write.
type Log interface {
	Append(ctx context.Context, entry domain.AuditLogEntry) error
	Query(ctx context.Context, filter Filter) ([]domain.AuditLogEntry, error)
}

// Filter selects audit entries by (entity_kind, entity_id, actor_id, from,
// to) with paging. Cursor is an opaque keyset cursor over (occurred_at,
// id).
type Filter struct {
	EntityKind *domain.EntityKind
	EntityID   *domain.ID
	ActorID    *domain.UserID
	From       *time.Time
	To         *time.Time
	Limit      int
	Cursor     string
}

// NewEntry builds a new entry with previous/new state JSON-marshaled. It
// is a convenience for workflow call sites, not part of the storage
// contract.
func NewEntry(eventType domain.AuditEventType, actor *domain.UserID, kind domain.EntityKind, entityID domain.ID, previous, next any) (domain.AuditLogEntry, error) {
	entry := domain.AuditLogEntry{
		ID:         domain.NewID(),
		EventType:  eventType,
		ActorID:    actor,
		EntityKind: kind,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
	if previous != nil {
		b, err := json.Marshal(previous)
		if err != nil {
			return entry, domain.Wrap(err, domain.KindInternal, "failed to marshal audit previous state")
		}
		entry.PreviousState = b
	}
	if next != nil {
		b, err := json.Marshal(next)
		if err != nil {
			return entry, domain.Wrap(err, domain.KindInternal, "failed to marshal audit new state")
		}
		entry.NewState = b
	}
	return entry, nil
}

// EncodeCursor packs a keyset pagination position into an opaque string.
// Callers page through Query results by passing a prior page's last entry
// back in as Filter.Cursor.
func EncodeCursor(occurredAt time.Time, id domain.ID) string {
	raw := fmt.Sprintf("%d:%s", occurredAt.UnixNano(), id.String())
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor reverses EncodeCursor.
func DecodeCursor(cursor string) (time.Time, domain.ID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, domain.ID{}, err
	}
	var nanos int64
	var idStr string
	if _, err := fmt.Sscanf(string(raw), "%d:%s", &nanos, &idStr); err != nil {
		return time.Time{}, domain.ID{}, err
	}
	id, err := domain.ParseID(idStr)
	if err != nil {
		return time.Time{}, domain.ID{}, err
	}
	return time.Unix(0, nanos).UTC(), id, nil
}
