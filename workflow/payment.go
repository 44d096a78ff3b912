package workflow

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/warp/paymentflow/authz"
	"github.com/warp/paymentflow/domain"
	"github.com/warp/paymentflow/soa"
	"github.com/warp/paymentflow/statemachine"
	"github.com/warp/paymentflow/store/postgres"
	"github.com/warp/paymentflow/versiongate"
)

// MarkPaid transitions an APPROVED request to the terminal PAID status.
// Once that transaction has committed, a second transaction checks the
// batch: if every request in it is terminal, the batch is advanced to
// COMPLETED and a GENERATED SOA version is produced for every request in
// it. A replayed call returns the request without repeating the check.
func (s *Service) MarkPaid(ctx context.Context, principal domain.Principal, idempotencyKey string, requestID domain.RequestID) (domain.PaymentRequest, *domain.AppError) {
	if err := authz.Authorize(principal, authz.CapMarkPaid, nil); err != nil {
		return domain.PaymentRequest{}, err
	}

	type payload struct {
		RequestID string
	}

	var result domain.PaymentRequest
	targetID, err := s.runIdempotent(ctx, pgx.RepeatableRead, idempotencyKey, domain.OpMarkPaymentPaid, payload{requestID.String()},
		func(ctx context.Context, tx postgres.Tx) (idempotencyOutcome, *domain.AppError) {
			req, found, dbErr := postgres.GetRequestForUpdate(ctx, tx, requestID)
			if dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to read request")
			}
			if !found {
				return idempotencyOutcome{}, domain.New(domain.KindNotFound, "request not found")
			}
			if verr := statemachine.ValidateRequestTransition(req.Status, domain.RequestPaid); verr != nil {
				return idempotencyOutcome{targetID: domain.ID(req.ID)}, verr
			}

			rows, dbErr := postgres.UpdateRequestStatusIfVersion(ctx, tx, requestID, domain.RequestPaid, principal.UserID, req.Version)
			if dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to mark request paid")
			}
			if verr := versiongate.RaiseIfNoRows(rows); verr != nil {
				return idempotencyOutcome{targetID: domain.ID(req.ID)}, verr
			}
			req.Status = domain.RequestPaid
			if aerr := s.appendAudit(ctx, tx, domain.EventRequestPaid, &principal.UserID, domain.EntityKindRequest, domain.ID(req.ID), nil, req); aerr != nil {
				return idempotencyOutcome{}, aerr
			}

			result = req
			return idempotencyOutcome{targetID: domain.ID(req.ID)}, nil
		})
	if err != nil {
		return domain.PaymentRequest{}, err
	}
	if result.ID.IsZero() {
		return s.getRequestInternal(ctx, principal, domain.RequestID(targetID))
	}
	txErr := s.store.WithTx(ctx, pgx.ReadCommitted, func(ctx context.Context, tx postgres.Tx) error {
		if cerr := s.maybeCompleteBatch(ctx, tx, principal, result.BatchID); cerr != nil {
			return cerr
		}
		return nil
	})
	if txErr != nil {
		return domain.PaymentRequest{}, toAppError(txErr)
	}
	return result, nil
}

// maybeCompleteBatch locks the batch and then every request in it (in
// ascending id order) and, if all requests are in a terminal status,
// advances the batch to COMPLETED and generates a GENERATED SOA version
// for each request.
func (s *Service) maybeCompleteBatch(ctx context.Context, tx postgres.Tx, principal domain.Principal, batchID domain.BatchID) *domain.AppError {
	batch, found, dbErr := postgres.GetBatchForUpdate(ctx, tx, batchID)
	if dbErr != nil {
		return domain.Wrap(dbErr, domain.KindInternal, "failed to read batch")
	}
	if !found || batch.IsTerminal() {
		return nil
	}

	requests, dbErr := postgres.ListRequestsByBatchForUpdate(ctx, tx, batchID)
	if dbErr != nil {
		return domain.Wrap(dbErr, domain.KindInternal, "failed to list requests")
	}
	for _, r := range requests {
		if !statemachine.IsRequestTerminal(r.Status) {
			return nil
		}
	}

	if verr := statemachine.ValidateBatchTransition(batch.Status, domain.BatchCompleted); verr != nil {
		return verr
	}
	now := nowUTC()
	if dbErr := postgres.UpdateBatchStatus(ctx, tx, batchID, domain.BatchCompleted, batch.SubmittedAt, &now); dbErr != nil {
		return domain.Wrap(dbErr, domain.KindInternal, "failed to complete batch")
	}
	if aerr := s.appendAudit(ctx, tx, domain.EventBatchCompleted, &principal.UserID, domain.EntityKindBatch, domain.ID(batch.ID), batch.Status, domain.BatchCompleted); aerr != nil {
		return aerr
	}

	for _, r := range requests {
		store := postgres.SOAStore{Tx: tx}
		documentRef := fmt.Sprintf("generated/%s/statement-of-account.pdf", r.ID.String())
		version, created, serr := soa.GenerateForBatch(ctx, store, r.ID, documentRef, principal.UserID)
		if serr != nil {
			if ae, ok := serr.(*domain.AppError); ok {
				return ae
			}
			return domain.Wrap(serr, domain.KindInternal, "failed to generate statement of account")
		}
		if created {
			if aerr := s.appendAudit(ctx, tx, domain.EventSOAGenerated, nil, domain.EntityKindSOAVersion, domain.ID(version.ID), nil, version); aerr != nil {
				return aerr
			}
		}
	}
	return nil
}

// UploadSOA attaches a new, user-uploaded statement-of-account version to
// a request. The request must be DRAFT; once it is submitted, its
// statement-of-account history is closed to uploads and only grows via
// generation at batch completion.
func (s *Service) UploadSOA(ctx context.Context, principal domain.Principal, idempotencyKey string, requestID domain.RequestID, documentRef string) (domain.SOAVersion, *domain.AppError) {
	type payload struct {
		RequestID   string
		DocumentRef string
	}

	var created domain.SOAVersion
	targetID, err := s.runIdempotent(ctx, pgx.ReadCommitted, idempotencyKey, domain.OpUploadSOA, payload{requestID.String(), documentRef},
		func(ctx context.Context, tx postgres.Tx) (idempotencyOutcome, *domain.AppError) {
			req, found, dbErr := postgres.GetRequestForUpdate(ctx, tx, requestID)
			if dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to read request")
			}
			if !found {
				return idempotencyOutcome{}, domain.New(domain.KindNotFound, "request not found")
			}
			batch, found, dbErr := postgres.GetBatch(ctx, tx, req.BatchID)
			if dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to read owning batch")
			}
			if !found {
				return idempotencyOutcome{}, domain.New(domain.KindNotFound, "owning batch not found")
			}
			owner := batch.CreatedBy
			if aerr := authz.Authorize(principal, authz.CapUploadSOA, &owner); aerr != nil {
				return idempotencyOutcome{}, aerr
			}
			if req.Status != domain.RequestDraft {
				return idempotencyOutcome{}, domain.New(domain.KindInvalidState, "SOA can only be uploaded while the request is DRAFT")
			}

			store := postgres.SOAStore{Tx: tx}
			version, serr := soa.Upload(ctx, store, requestID, documentRef, principal.UserID)
			if serr != nil {
				if ae, ok := serr.(*domain.AppError); ok {
					return idempotencyOutcome{}, ae
				}
				return idempotencyOutcome{}, domain.Wrap(serr, domain.KindInternal, "failed to upload statement of account")
			}
			if aerr := s.appendAudit(ctx, tx, domain.EventSOAUploaded, &principal.UserID, domain.EntityKindSOAVersion, domain.ID(version.ID), nil, version); aerr != nil {
				return idempotencyOutcome{}, aerr
			}

			created = version
			return idempotencyOutcome{targetID: domain.ID(version.ID)}, nil
		})
	if err != nil {
		return domain.SOAVersion{}, err
	}
	if created.ID.IsZero() {
		created.ID = domain.SOAVersionID(targetID)
	}
	return created, nil
}
