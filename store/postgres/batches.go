package postgres

import (
	"context"
	"time"

	"github.com/warp/paymentflow/domain"
)

// InsertBatch inserts a new PaymentBatch row.
func InsertBatch(ctx context.Context, tx Tx, b domain.PaymentBatch) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO payment_batches (id, title, status, created_at, created_by, submitted_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, b.ID, b.Title, b.Status, b.CreatedAt, b.CreatedBy, b.SubmittedAt, b.CompletedAt)
	return err
}

// GetBatchForUpdate reads a batch row and locks it for the duration of
// the caller's transaction, the same row-lock-then-mutate discipline the
// workflow service uses for every status transition.
func GetBatchForUpdate(ctx context.Context, tx Tx, id domain.BatchID) (domain.PaymentBatch, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, title, status, created_at, created_by, submitted_at, completed_at
		FROM payment_batches WHERE id = $1 FOR UPDATE
	`, id)
	return scanBatch(row)
}

// GetBatch reads a batch row without locking, for read-only queries.
func GetBatch(ctx context.Context, tx Tx, id domain.BatchID) (domain.PaymentBatch, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, title, status, created_at, created_by, submitted_at, completed_at
		FROM payment_batches WHERE id = $1
	`, id)
	return scanBatch(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (domain.PaymentBatch, bool, error) {
	var b domain.PaymentBatch
	err := row.Scan(&b.ID, &b.Title, &b.Status, &b.CreatedAt, &b.CreatedBy, &b.SubmittedAt, &b.CompletedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.PaymentBatch{}, false, nil
		}
		return domain.PaymentBatch{}, false, err
	}
	return b, true, nil
}

// UpdateBatchStatus writes a new status (and the submitted_at/completed_at
// timestamps that accompany it) for a batch already locked by the caller.
// PaymentBatch carries no version column — its transitions are protected
// by the row lock acquired in GetBatchForUpdate, not by versiongate.
func UpdateBatchStatus(ctx context.Context, tx Tx, id domain.BatchID, status domain.BatchStatus, submittedAt, completedAt *time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE payment_batches SET status = $1, submitted_at = $2, completed_at = $3 WHERE id = $4
	`, status, submittedAt, completedAt, id)
	return err
}
