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

// CreateBatch creates a new DRAFT PaymentBatch owned by the principal.
func (s *Service) CreateBatch(ctx context.Context, principal domain.Principal, idempotencyKey, title string) (domain.PaymentBatch, *domain.AppError) {
	if err := authz.Authorize(principal, authz.CapCreateBatch, nil); err != nil {
		return domain.PaymentBatch{}, err
	}

	type payload struct {
		Title string
	}

	var created domain.PaymentBatch
	targetID, err := s.runIdempotent(ctx, pgx.ReadCommitted, idempotencyKey, domain.OpCreateBatch, payload{Title: title},
		func(ctx context.Context, tx postgres.Tx) (idempotencyOutcome, *domain.AppError) {
			batch := domain.PaymentBatch{
				ID:        domain.NewBatchID(),
				Title:     title,
				Status:    domain.BatchDraft,
				CreatedAt: nowUTC(),
				CreatedBy: principal.UserID,
			}
			if verr := batch.Validate(); verr != nil {
				return idempotencyOutcome{kind: verr.Kind}, verr
			}
			if err := postgres.InsertBatch(ctx, tx, batch); err != nil {
				return idempotencyOutcome{}, domain.Wrap(err, domain.KindInternal, "failed to insert batch")
			}
			if aerr := s.appendAudit(ctx, tx, domain.EventBatchCreated, &principal.UserID, domain.EntityKindBatch, domain.ID(batch.ID), nil, batch); aerr != nil {
				return idempotencyOutcome{}, aerr
			}
			created = batch
			return idempotencyOutcome{targetID: domain.ID(batch.ID)}, nil
		})
	if err != nil {
		return domain.PaymentBatch{}, err
	}
	if created.ID.IsZero() {
		// Replay: reload by target id.
		return s.GetBatch(ctx, principal, domain.BatchID(targetID))
	}
	return created, nil
}

// GetBatch reads a batch, enforcing read access.
func (s *Service) GetBatch(ctx context.Context, principal domain.Principal, id domain.BatchID) (domain.PaymentBatch, *domain.AppError) {
	if err := authz.Authorize(principal, authz.CapReadAny, nil); err != nil {
		return domain.PaymentBatch{}, err
	}
	var batch domain.PaymentBatch
	txErr := s.store.WithTx(ctx, pgx.ReadCommitted, func(ctx context.Context, tx postgres.Tx) error {
		b, found, err := postgres.GetBatch(ctx, tx, id)
		if err != nil {
			return domain.Wrap(err, domain.KindInternal, "failed to read batch")
		}
		if !found {
			return domain.New(domain.KindNotFound, "batch not found")
		}
		batch = b
		return nil
	})
	if txErr != nil {
		return domain.PaymentBatch{}, toAppError(txErr)
	}
	return batch, nil
}

// SubmitBatch transitions a DRAFT batch to SUBMITTED and then PROCESSING,
// and every DRAFT request it contains to SUBMITTED and then
// PENDING_APPROVAL. An empty
// batch cannot be submitted. Requests are locked in a fixed order (by id,
// ascending) so two concurrent batch-wide operations never deadlock
// against each other waiting on the opposite row order.
func (s *Service) SubmitBatch(ctx context.Context, principal domain.Principal, idempotencyKey string, batchID domain.BatchID) (domain.PaymentBatch, *domain.AppError) {
	type payload struct {
		BatchID string
	}

	var result domain.PaymentBatch
	targetID, err := s.runIdempotent(ctx, pgx.RepeatableRead, idempotencyKey, domain.OpSubmitBatch, payload{BatchID: batchID.String()},
		func(ctx context.Context, tx postgres.Tx) (idempotencyOutcome, *domain.AppError) {
			batch, found, dbErr := postgres.GetBatchForUpdate(ctx, tx, batchID)
			if dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to read batch")
			}
			if !found {
				return idempotencyOutcome{}, domain.New(domain.KindNotFound, "batch not found")
			}
			owner := batch.CreatedBy
			if aerr := authz.Authorize(principal, authz.CapMutateBatchOwned, &owner); aerr != nil {
				return idempotencyOutcome{targetID: domain.ID(batch.ID)}, aerr
			}
			if verr := statemachine.ValidateBatchTransition(batch.Status, domain.BatchSubmitted); verr != nil {
				return idempotencyOutcome{targetID: domain.ID(batch.ID)}, verr
			}

			requests, dbErr := postgres.ListRequestsByBatchForUpdate(ctx, tx, batchID)
			if dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to list requests")
			}
			if len(requests) == 0 {
				return idempotencyOutcome{targetID: domain.ID(batch.ID)}, domain.New(domain.KindValidation, "cannot submit an empty batch")
			}

			for _, r := range requests {
				if r.Status != domain.RequestDraft {
					return idempotencyOutcome{targetID: domain.ID(batch.ID)}, domain.Newf(domain.KindInvalidState, "request %s is not in DRAFT status", r.ID)
				}
			}

			for _, r := range requests {
				if verr := statemachine.ValidateRequestTransition(r.Status, domain.RequestSubmitted); verr != nil {
					return idempotencyOutcome{}, verr
				}
				rows, dbErr := postgres.UpdateRequestStatusIfVersion(ctx, tx, r.ID, domain.RequestSubmitted, principal.UserID, r.Version)
				if dbErr != nil {
					return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to submit request")
				}
				if verr := versiongate.RaiseIfNoRows(rows); verr != nil {
					return idempotencyOutcome{}, verr
				}
				if aerr := s.appendAudit(ctx, tx, domain.EventRequestSubmitted, &principal.UserID, domain.EntityKindRequest, domain.ID(r.ID), r.Status, domain.RequestSubmitted); aerr != nil {
					return idempotencyOutcome{}, aerr
				}
				// Immediately advance to PENDING_APPROVAL: submission and
				// entry into the approval queue are the same user action.
				if verr := statemachine.ValidateRequestTransition(domain.RequestSubmitted, domain.RequestPendingApproval); verr != nil {
					return idempotencyOutcome{}, verr
				}
				rows, dbErr = postgres.UpdateRequestStatusIfVersion(ctx, tx, r.ID, domain.RequestPendingApproval, principal.UserID, r.Version+1)
				if dbErr != nil {
					return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to move request to pending approval")
				}
				if verr := versiongate.RaiseIfNoRows(rows); verr != nil {
					return idempotencyOutcome{}, verr
				}
			}

			// The batch passes through SUBMITTED straight into PROCESSING.
			if verr := statemachine.ValidateBatchTransition(domain.BatchSubmitted, domain.BatchProcessing); verr != nil {
				return idempotencyOutcome{}, verr
			}
			now := nowUTC()
			if dbErr := postgres.UpdateBatchStatus(ctx, tx, batchID, domain.BatchProcessing, &now, nil); dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to submit batch")
			}
			if aerr := s.appendAudit(ctx, tx, domain.EventBatchSubmitted, &principal.UserID, domain.EntityKindBatch, domain.ID(batch.ID), batch.Status, domain.BatchProcessing); aerr != nil {
				return idempotencyOutcome{}, aerr
			}

			batch.Status = domain.BatchProcessing
			batch.SubmittedAt = &now
			result = batch
			return idempotencyOutcome{targetID: domain.ID(batch.ID)}, nil
		})
	if err != nil {
		return domain.PaymentBatch{}, err
	}
	if result.ID.IsZero() {
		return s.GetBatch(ctx, principal, domain.BatchID(targetID))
	}
	return result, nil
}

// CancelBatch transitions a DRAFT batch directly to CANCELLED.
func (s *Service) CancelBatch(ctx context.Context, principal domain.Principal, idempotencyKey string, batchID domain.BatchID) (domain.PaymentBatch, *domain.AppError) {
	type payload struct {
		BatchID string
	}

	var result domain.PaymentBatch
	targetID, err := s.runIdempotent(ctx, pgx.ReadCommitted, idempotencyKey, domain.OpCancelBatch, payload{BatchID: batchID.String()},
		func(ctx context.Context, tx postgres.Tx) (idempotencyOutcome, *domain.AppError) {
			batch, found, dbErr := postgres.GetBatchForUpdate(ctx, tx, batchID)
			if dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to read batch")
			}
			if !found {
				return idempotencyOutcome{}, domain.New(domain.KindNotFound, "batch not found")
			}
			owner := batch.CreatedBy
			if aerr := authz.Authorize(principal, authz.CapMutateBatchOwned, &owner); aerr != nil {
				return idempotencyOutcome{targetID: domain.ID(batch.ID)}, aerr
			}
			if verr := statemachine.ValidateBatchTransition(batch.Status, domain.BatchCancelled); verr != nil {
				return idempotencyOutcome{targetID: domain.ID(batch.ID)}, verr
			}

			now := nowUTC()
			if dbErr := postgres.UpdateBatchStatus(ctx, tx, batchID, domain.BatchCancelled, &now, &now); dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to cancel batch")
			}
			if aerr := s.appendAudit(ctx, tx, domain.EventBatchCancelled, &principal.UserID, domain.EntityKindBatch, domain.ID(batch.ID), batch.Status, domain.BatchCancelled); aerr != nil {
				return idempotencyOutcome{}, aerr
			}

			batch.Status = domain.BatchCancelled
			batch.SubmittedAt = &now
			batch.CompletedAt = &now
			result = batch
			return idempotencyOutcome{targetID: domain.ID(batch.ID)}, nil
		})
	if err != nil {
		return domain.PaymentBatch{}, err
	}
	if result.ID.IsZero() {
		return s.GetBatch(ctx, principal, domain.BatchID(targetID))
	}
	return result, nil
}

func toAppError(err error) *domain.AppError {
	if ae, ok := err.(*domain.AppError); ok {
		return ae
	}
	return domain.Wrap(err, domain.KindInternal, "operation failed")
}
