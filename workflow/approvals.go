package workflow

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/warp/paymentflow/authz"
	"github.com/warp/paymentflow/domain"
	"github.com/warp/paymentflow/statemachine"
	"github.com/warp/paymentflow/store/postgres"
	"github.com/warp/paymentflow/versiongate"
)

// Approve records an APPROVED decision on a PENDING_APPROVAL request and
// advances it to APPROVED.
func (s *Service) Approve(ctx context.Context, principal domain.Principal, idempotencyKey string, requestID domain.RequestID, comment *string) (domain.ApprovalRecord, *domain.AppError) {
	return s.decide(ctx, principal, idempotencyKey, domain.OpApprovePaymentRequest, requestID, domain.DecisionApproved, domain.RequestApproved, domain.EventApprovalRecorded, comment)
}

// Reject records a REJECTED decision on a PENDING_APPROVAL request and
// moves it to the terminal REJECTED status.
func (s *Service) Reject(ctx context.Context, principal domain.Principal, idempotencyKey string, requestID domain.RequestID, comment *string) (domain.ApprovalRecord, *domain.AppError) {
	return s.decide(ctx, principal, idempotencyKey, domain.OpRejectPaymentRequest, requestID, domain.DecisionRejected, domain.RequestRejected, domain.EventApprovalRecorded, comment)
}

func (s *Service) decide(ctx context.Context, principal domain.Principal, idempotencyKey string, op domain.Operation, requestID domain.RequestID, decision domain.ApprovalDecision, nextStatus domain.RequestStatus, eventType domain.AuditEventType, comment *string) (domain.ApprovalRecord, *domain.AppError) {
	if err := authz.Authorize(principal, authz.CapApprovalQueue, nil); err != nil {
		return domain.ApprovalRecord{}, err
	}

	type payload struct {
		RequestID string
		Decision  domain.ApprovalDecision
		Comment   *string
	}

	var created domain.ApprovalRecord
	targetID, err := s.runIdempotent(ctx, pgx.RepeatableRead, idempotencyKey, op, payload{requestID.String(), decision, comment},
		func(ctx context.Context, tx postgres.Tx) (idempotencyOutcome, *domain.AppError) {
			req, found, dbErr := postgres.GetRequestForUpdate(ctx, tx, requestID)
			if dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to read request")
			}
			if !found {
				return idempotencyOutcome{}, domain.New(domain.KindNotFound, "request not found")
			}
			if verr := statemachine.ValidateRequestTransition(req.Status, nextStatus); verr != nil {
				return idempotencyOutcome{targetID: domain.ID(req.ID)}, verr
			}

			approval := domain.ApprovalRecord{
				ID:         domain.NewApprovalID(),
				RequestID:  requestID,
				ApproverID: principal.UserID,
				Decision:   decision,
				Comment:    comment,
				CreatedAt:  nowUTC(),
			}
			if _, spErr := tx.Exec(ctx, "SAVEPOINT insert_approval"); spErr != nil {
				return idempotencyOutcome{}, domain.Wrap(spErr, domain.KindInternal, "failed to insert approval record")
			}
			if dbErr := postgres.InsertApproval(ctx, tx, approval); dbErr != nil {
				if postgres.IsUniqueViolation(dbErr) {
					// The failed insert aborts the transaction; rolling back to
					// the savepoint makes the existing record readable again.
					if _, rbErr := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT insert_approval"); rbErr != nil {
						return idempotencyOutcome{}, domain.Wrap(rbErr, domain.KindInternal, "failed to reload approval after concurrent insert")
					}
					existing, found, gErr := postgres.GetApprovalByRequest(ctx, tx, requestID)
					if gErr != nil {
						return idempotencyOutcome{}, domain.Wrap(gErr, domain.KindInternal, "failed to reload approval after concurrent insert")
					}
					if !found {
						return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to insert approval record")
					}
					return idempotencyOutcome{targetID: domain.ID(existing.ID)}, nil
				}
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to insert approval record")
			}

			rows, dbErr := postgres.UpdateRequestStatusIfVersion(ctx, tx, requestID, nextStatus, principal.UserID, req.Version)
			if dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to update request status")
			}
			if verr := versiongate.RaiseIfNoRows(rows); verr != nil {
				return idempotencyOutcome{targetID: domain.ID(approval.ID)}, verr
			}
			if aerr := s.appendAudit(ctx, tx, eventType, &principal.UserID, domain.EntityKindApproval, domain.ID(approval.ID), nil, approval); aerr != nil {
				return idempotencyOutcome{}, aerr
			}

			created = approval
			return idempotencyOutcome{targetID: domain.ID(approval.ID)}, nil
		})
	if err != nil {
		return domain.ApprovalRecord{}, err
	}
	if created.ID.IsZero() && !targetID.IsZero() {
		var reloaded domain.ApprovalRecord
		txErr := s.store.WithTx(ctx, pgx.ReadCommitted, func(ctx context.Context, tx postgres.Tx) error {
			a, found, dbErr := postgres.GetApproval(ctx, tx, domain.ApprovalID(targetID))
			if dbErr != nil {
				return domain.Wrap(dbErr, domain.KindInternal, "failed to reload approval")
			}
			if !found {
				return domain.New(domain.KindNotFound, "approval not found")
			}
			reloaded = a
			return nil
		})
		if txErr != nil {
			return domain.ApprovalRecord{}, toAppError(txErr)
		}
		return reloaded, nil
	}
	return created, nil
}
