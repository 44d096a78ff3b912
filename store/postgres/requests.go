package postgres

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/paymentflow/domain"
	"github.com/warp/paymentflow/versiongate"
)

// InsertRequest inserts a new PaymentRequest row at version 1.
func InsertRequest(ctx context.Context, tx Tx, r domain.PaymentRequest) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO payment_requests (
			id, batch_id, status, currency, created_at, updated_at, created_by, updated_by, version,
			amount, beneficiary_name, beneficiary_account, purpose,
			entity_type, vendor_id, subcontractor_id, site_id,
			base_amount, extra_amount, extra_reason, total_amount,
			entity_display_name, site_code_snapshot
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, $20, $21,
			$22, $23
		)
	`,
		r.ID, r.BatchID, r.Status, r.Currency, r.CreatedAt, r.UpdatedAt, r.CreatedBy, r.UpdatedBy, r.Version,
		r.Amount, r.BeneficiaryName, r.BeneficiaryAccount, r.Purpose,
		r.EntityType, r.VendorID, r.SubcontractorID, r.SiteID,
		r.BaseAmount, r.ExtraAmount, r.ExtraReason, r.TotalAmount,
		r.EntityDisplayName, r.SiteCodeSnapshot,
	)
	return err
}

// GetRequestForUpdate reads a request row and locks it for the duration
// of the caller's transaction.
func GetRequestForUpdate(ctx context.Context, tx Tx, id domain.RequestID) (domain.PaymentRequest, bool, error) {
	row := tx.QueryRow(ctx, requestSelectColumns+` FROM payment_requests WHERE id = $1 FOR UPDATE`, id)
	return scanRequest(row)
}

// GetRequest reads a request row without locking.
func GetRequest(ctx context.Context, tx Tx, id domain.RequestID) (domain.PaymentRequest, bool, error) {
	row := tx.QueryRow(ctx, requestSelectColumns+` FROM payment_requests WHERE id = $1`, id)
	return scanRequest(row)
}

// ListRequestsByBatchForUpdate locks and returns every request in a batch,
// ordered by id so concurrent batch-wide operations acquire row locks in a
// consistent order and cannot deadlock against each other.
func ListRequestsByBatchForUpdate(ctx context.Context, tx Tx, batchID domain.BatchID) ([]domain.PaymentRequest, error) {
	rows, err := tx.Query(ctx, requestSelectColumns+` FROM payment_requests WHERE batch_id = $1 ORDER BY id FOR UPDATE`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PaymentRequest
	for rows.Next() {
		r, _, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const requestSelectColumns = `
	SELECT id, batch_id, status, currency, created_at, updated_at, created_by, updated_by, version,
	       amount, beneficiary_name, beneficiary_account, purpose,
	       entity_type, vendor_id, subcontractor_id, site_id,
	       base_amount, extra_amount, extra_reason, total_amount,
	       entity_display_name, site_code_snapshot`

func scanRequest(row rowScanner) (domain.PaymentRequest, bool, error) {
	var r domain.PaymentRequest
	var amount, baseAmount, extraAmount, totalAmount *decimal.Decimal
	err := row.Scan(
		&r.ID, &r.BatchID, &r.Status, &r.Currency, &r.CreatedAt, &r.UpdatedAt, &r.CreatedBy, &r.UpdatedBy, &r.Version,
		&amount, &r.BeneficiaryName, &r.BeneficiaryAccount, &r.Purpose,
		&r.EntityType, &r.VendorID, &r.SubcontractorID, &r.SiteID,
		&baseAmount, &extraAmount, &r.ExtraReason, &totalAmount,
		&r.EntityDisplayName, &r.SiteCodeSnapshot,
	)
	if err != nil {
		if isNoRows(err) {
			return domain.PaymentRequest{}, false, nil
		}
		return domain.PaymentRequest{}, false, err
	}
	r.Amount = amount
	r.BaseAmount = baseAmount
	r.ExtraAmount = extraAmount
	r.TotalAmount = totalAmount
	return r, true, nil
}

// UpdateRequestFieldsIfVersion applies an editable-field update through
// the version gate, returning rows affected (0 means a concurrent writer
// already advanced the version).
func UpdateRequestFieldsIfVersion(ctx context.Context, tx Tx, r domain.PaymentRequest, expectedVersion int64) (int64, error) {
	const setClause = `
		updated_at = $1, updated_by = $2,
		amount = $3, beneficiary_name = $4, beneficiary_account = $5, purpose = $6,
		entity_type = $7, vendor_id = $8, subcontractor_id = $9, site_id = $10,
		base_amount = $11, extra_amount = $12, extra_reason = $13, total_amount = $14,
		entity_display_name = $15, site_code_snapshot = $16`
	setArgs := []any{
		r.UpdatedAt, r.UpdatedBy,
		r.Amount, r.BeneficiaryName, r.BeneficiaryAccount, r.Purpose,
		r.EntityType, r.VendorID, r.SubcontractorID, r.SiteID,
		r.BaseAmount, r.ExtraAmount, r.ExtraReason, r.TotalAmount,
		r.EntityDisplayName, r.SiteCodeSnapshot,
	}
	return versiongate.UpdateIfVersion(ctx, tx, "payment_requests", setClause, setArgs, domain.ID(r.ID), expectedVersion)
}

// UpdateRequestStatusIfVersion transitions a request's status through the
// version gate.
func UpdateRequestStatusIfVersion(ctx context.Context, tx Tx, id domain.RequestID, status domain.RequestStatus, updatedBy domain.UserID, expectedVersion int64) (int64, error) {
	const setClause = `status = $1, updated_at = $2, updated_by = $3`
	setArgs := []any{status, nowUTC(), updatedBy}
	return versiongate.UpdateIfVersion(ctx, tx, "payment_requests", setClause, setArgs, domain.ID(id), expectedVersion)
}
