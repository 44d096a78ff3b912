package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/warp/paymentflow/domain"
	"github.com/warp/paymentflow/audit"
)

// AuditStore adapts a locked transaction to audit.Log. It has no Update
// or Delete method — by construction, not merely by convention — mirroring
// the interface shape audit.Log itself enforces.
type AuditStore struct {
	Tx Tx
}

func (s AuditStore) Append(ctx context.Context, entry domain.AuditLogEntry) error {
	_, err := s.Tx.Exec(ctx, `
		INSERT INTO audit_log (id, event_type, actor_id, entity_kind, entity_id, previous_state, new_state, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.EventType, entry.ActorID, entry.EntityKind, entry.EntityID, entry.PreviousState, entry.NewState, entry.OccurredAt)
	return err
}

func (s AuditStore) Query(ctx context.Context, filter audit.Filter) ([]domain.AuditLogEntry, error) {
	var clauses []string
	var args []any
	n := 0
	arg := func(v any) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}

	if filter.EntityKind != nil {
		clauses = append(clauses, "entity_kind = "+arg(*filter.EntityKind))
	}
	if filter.EntityID != nil {
		clauses = append(clauses, "entity_id = "+arg(*filter.EntityID))
	}
	if filter.ActorID != nil {
		clauses = append(clauses, "actor_id = "+arg(*filter.ActorID))
	}
	if filter.From != nil {
		clauses = append(clauses, "occurred_at >= "+arg(*filter.From))
	}
	if filter.To != nil {
		clauses = append(clauses, "occurred_at <= "+arg(*filter.To))
	}
	if filter.Cursor != "" {
		occurredAt, id, err := audit.DecodeCursor(filter.Cursor)
		if err != nil {
			return nil, domain.Wrap(err, domain.KindValidation, "invalid audit cursor")
		}
		clauses = append(clauses, fmt.Sprintf("(occurred_at, id) < (%s, %s)", arg(occurredAt), arg(id)))
	}

	query := "SELECT id, event_type, actor_id, entity_kind, entity_id, previous_state, new_state, occurred_at FROM audit_log"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY occurred_at DESC, id DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT " + arg(limit)

	rows, err := s.Tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditLogEntry
	for rows.Next() {
		var e domain.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.EventType, &e.ActorID, &e.EntityKind, &e.EntityID, &e.PreviousState, &e.NewState, &e.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
