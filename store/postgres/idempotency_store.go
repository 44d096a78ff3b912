package postgres

import (
	"context"

	"github.com/warp/paymentflow/domain"
)

// IdempotencyStore adapts a locked transaction to idempotency.Registry.
type IdempotencyStore struct {
	Tx Tx
}

func (s IdempotencyStore) Lookup(ctx context.Context, key string, op domain.Operation) (domain.IdempotencyRecord, bool, error) {
	row := s.Tx.QueryRow(ctx, `
		SELECT key, operation, target_id, response_kind, payload_hash, created_at
		FROM idempotency_records WHERE key = $1 AND operation = $2
	`, key, op)
	var rec domain.IdempotencyRecord
	err := row.Scan(&rec.Key, &rec.Operation, &rec.TargetID, &rec.ResponseKind, &rec.PayloadHash, &rec.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.IdempotencyRecord{}, false, nil
		}
		return domain.IdempotencyRecord{}, false, err
	}
	return rec, true, nil
}

func (s IdempotencyStore) Record(ctx context.Context, rec domain.IdempotencyRecord) error {
	_, err := s.Tx.Exec(ctx, `
		INSERT INTO idempotency_records (key, operation, target_id, response_kind, payload_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.Key, rec.Operation, rec.TargetID, rec.ResponseKind, rec.PayloadHash, rec.CreatedAt)
	return err
}
