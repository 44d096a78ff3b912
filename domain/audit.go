package domain

import "time"

// AuditLogEntry is one append-only record of a state-changing mutation.
// The store must reject any attempt to update or delete a row in this
// table.
type AuditLogEntry struct {
	ID            ID
	EventType     AuditEventType
	ActorID       *UserID // nil for system-initiated events (e.g. SOA_GENERATED)
	EntityKind    EntityKind
	EntityID      ID
	PreviousState []byte // JSON, nil for create events
	NewState      []byte // JSON
	OccurredAt    time.Time
}
