package postgres

import (
	"context"

	"github.com/warp/paymentflow/domain"
)

// InsertApproval records an ApprovalRecord. The table's UNIQUE(request_id)
// constraint makes a second approval/rejection on the same request a hard
// database error, backstopping the state machine's own terminal-state
// check.
func InsertApproval(ctx context.Context, tx Tx, a domain.ApprovalRecord) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO approval_records (id, request_id, approver_id, decision, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.RequestID, a.ApproverID, a.Decision, a.Comment, a.CreatedAt)
	return err
}

// GetApproval reads an approval by its own id.
func GetApproval(ctx context.Context, tx Tx, id domain.ApprovalID) (domain.ApprovalRecord, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, request_id, approver_id, decision, comment, created_at
		FROM approval_records WHERE id = $1
	`, id)
	var a domain.ApprovalRecord
	err := row.Scan(&a.ID, &a.RequestID, &a.ApproverID, &a.Decision, &a.Comment, &a.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.ApprovalRecord{}, false, nil
		}
		return domain.ApprovalRecord{}, false, err
	}
	return a, true, nil
}

// GetApprovalByRequest reads the (at most one) approval for a request.
func GetApprovalByRequest(ctx context.Context, tx Tx, requestID domain.RequestID) (domain.ApprovalRecord, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, request_id, approver_id, decision, comment, created_at
		FROM approval_records WHERE request_id = $1
	`, requestID)
	var a domain.ApprovalRecord
	err := row.Scan(&a.ID, &a.RequestID, &a.ApproverID, &a.Decision, &a.Comment, &a.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.ApprovalRecord{}, false, nil
		}
		return domain.ApprovalRecord{}, false, err
	}
	return a, true, nil
}
