package workflow

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/paymentflow/authz"
	"github.com/warp/paymentflow/domain"
	"github.com/warp/paymentflow/ledger"
	"github.com/warp/paymentflow/store/postgres"
	"github.com/warp/paymentflow/versiongate"
)

// NewRequestInput is what a caller supplies to create a PaymentRequest;
// CreatedAt/UpdatedAt/Version/Status/snapshot fields are always computed
// by the service, never accepted from the caller.
type NewRequestInput struct {
	Currency           string
	Amount             *decimal.Decimal
	BeneficiaryName    *string
	BeneficiaryAccount *string
	Purpose            *string
	EntityType         *domain.EntityType
	VendorID           *domain.VendorID
	SubcontractorID    *domain.SubcontractorID
	SiteID             *domain.SiteID
	BaseAmount         *decimal.Decimal
	ExtraAmount        *decimal.Decimal
	ExtraReason        *string
}

// AddRequestToBatch creates a PaymentRequest inside a DRAFT batch owned by
// the principal. Ledger-driven inputs are validated and snapshotted
// against the reference-data collaborator before the row is written.
func (s *Service) AddRequestToBatch(ctx context.Context, principal domain.Principal, idempotencyKey string, batchID domain.BatchID, in NewRequestInput) (domain.PaymentRequest, *domain.AppError) {
	var created domain.PaymentRequest
	targetID, err := s.runIdempotent(ctx, pgx.ReadCommitted, idempotencyKey, domain.OpCreatePaymentRequest, in,
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
				return idempotencyOutcome{}, aerr
			}
			if batch.Status != domain.BatchDraft {
				return idempotencyOutcome{}, domain.New(domain.KindInvalidState, "requests can only be added to a DRAFT batch")
			}

			req := domain.PaymentRequest{
				ID:                 domain.NewRequestID(),
				BatchID:            batchID,
				Status:             domain.RequestDraft,
				Currency:           in.Currency,
				CreatedAt:          nowUTC(),
				UpdatedAt:          nowUTC(),
				CreatedBy:          principal.UserID,
				UpdatedBy:          principal.UserID,
				Version:            1,
				Amount:             in.Amount,
				BeneficiaryName:    in.BeneficiaryName,
				BeneficiaryAccount: in.BeneficiaryAccount,
				Purpose:            in.Purpose,
				EntityType:         in.EntityType,
				VendorID:           in.VendorID,
				SubcontractorID:    in.SubcontractorID,
				SiteID:             in.SiteID,
				BaseAmount:         in.BaseAmount,
				ExtraAmount:        in.ExtraAmount,
				ExtraReason:        in.ExtraReason,
			}

			if req.IsLedgerShape() {
				req.ComputeTotal()
				displayName, rerr := ledger.ResolveEntity(ctx, s.ledger, *req.EntityType, req.VendorID, req.SubcontractorID)
				if rerr != nil {
					return idempotencyOutcome{}, rerr
				}
				siteCode, rerr := ledger.ResolveSite(ctx, s.ledger, *req.SiteID)
				if rerr != nil {
					return idempotencyOutcome{}, rerr
				}
				req.EntityDisplayName = &displayName
				req.SiteCodeSnapshot = &siteCode
			}

			if verr := req.ValidateShape(); verr != nil {
				return idempotencyOutcome{}, verr
			}

			if dbErr := postgres.InsertRequest(ctx, tx, req); dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to insert request")
			}
			if aerr := s.appendAudit(ctx, tx, domain.EventRequestCreated, &principal.UserID, domain.EntityKindRequest, domain.ID(req.ID), nil, req); aerr != nil {
				return idempotencyOutcome{}, aerr
			}

			created = req
			return idempotencyOutcome{targetID: domain.ID(req.ID)}, nil
		})
	if err != nil {
		return domain.PaymentRequest{}, err
	}
	if created.ID.IsZero() {
		return s.getRequestInternal(ctx, principal, domain.RequestID(targetID))
	}
	return created, nil
}

// UpdateRequest edits an existing DRAFT request's fields, guarded by the
// version gate so a concurrent edit or submission is rejected rather than
// silently overwritten.
func (s *Service) UpdateRequest(ctx context.Context, principal domain.Principal, idempotencyKey string, requestID domain.RequestID, in NewRequestInput, expectedVersion int64) (domain.PaymentRequest, *domain.AppError) {
	var updated domain.PaymentRequest
	targetID, err := s.runIdempotent(ctx, pgx.ReadCommitted, idempotencyKey, domain.OpUpdatePaymentRequest, struct {
		RequestID string
		Input     NewRequestInput
		Version   int64
	}{requestID.String(), in, expectedVersion},
		func(ctx context.Context, tx postgres.Tx) (idempotencyOutcome, *domain.AppError) {
			existing, found, dbErr := postgres.GetRequestForUpdate(ctx, tx, requestID)
			if dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to read request")
			}
			if !found {
				return idempotencyOutcome{}, domain.New(domain.KindNotFound, "request not found")
			}
			batch, found, dbErr := postgres.GetBatch(ctx, tx, existing.BatchID)
			if dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to read owning batch")
			}
			if !found {
				return idempotencyOutcome{}, domain.New(domain.KindNotFound, "owning batch not found")
			}
			owner := batch.CreatedBy
			if aerr := authz.Authorize(principal, authz.CapMutateBatchOwned, &owner); aerr != nil {
				return idempotencyOutcome{targetID: domain.ID(existing.ID)}, aerr
			}
			if existing.Status != domain.RequestDraft {
				return idempotencyOutcome{targetID: domain.ID(existing.ID)}, domain.New(domain.KindInvalidState, "only a DRAFT request can be edited")
			}

			before := existing
			existing.Currency = in.Currency
			existing.Amount = in.Amount
			existing.BeneficiaryName = in.BeneficiaryName
			existing.BeneficiaryAccount = in.BeneficiaryAccount
			existing.Purpose = in.Purpose
			existing.EntityType = in.EntityType
			existing.VendorID = in.VendorID
			existing.SubcontractorID = in.SubcontractorID
			existing.SiteID = in.SiteID
			existing.BaseAmount = in.BaseAmount
			existing.ExtraAmount = in.ExtraAmount
			existing.ExtraReason = in.ExtraReason
			existing.UpdatedAt = nowUTC()
			existing.UpdatedBy = principal.UserID

			if existing.IsLedgerShape() {
				existing.ComputeTotal()
				displayName, rerr := ledger.ResolveEntity(ctx, s.ledger, *existing.EntityType, existing.VendorID, existing.SubcontractorID)
				if rerr != nil {
					return idempotencyOutcome{targetID: domain.ID(existing.ID)}, rerr
				}
				siteCode, rerr := ledger.ResolveSite(ctx, s.ledger, *existing.SiteID)
				if rerr != nil {
					return idempotencyOutcome{targetID: domain.ID(existing.ID)}, rerr
				}
				existing.EntityDisplayName = &displayName
				existing.SiteCodeSnapshot = &siteCode
			} else {
				existing.EntityDisplayName = nil
				existing.SiteCodeSnapshot = nil
			}

			if verr := existing.ValidateShape(); verr != nil {
				return idempotencyOutcome{targetID: domain.ID(existing.ID)}, verr
			}

			rows, dbErr := postgres.UpdateRequestFieldsIfVersion(ctx, tx, existing, expectedVersion)
			if dbErr != nil {
				return idempotencyOutcome{}, domain.Wrap(dbErr, domain.KindInternal, "failed to update request")
			}
			if verr := versiongate.RaiseIfNoRows(rows); verr != nil {
				return idempotencyOutcome{targetID: domain.ID(existing.ID)}, verr
			}
			if aerr := s.appendAudit(ctx, tx, domain.EventRequestUpdated, &principal.UserID, domain.EntityKindRequest, domain.ID(existing.ID), before, existing); aerr != nil {
				return idempotencyOutcome{}, aerr
			}

			updated = existing
			return idempotencyOutcome{targetID: domain.ID(existing.ID)}, nil
		})
	if err != nil {
		return domain.PaymentRequest{}, err
	}
	if updated.ID.IsZero() {
		return s.getRequestInternal(ctx, principal, domain.RequestID(targetID))
	}
	return updated, nil
}

func (s *Service) getRequestInternal(ctx context.Context, principal domain.Principal, id domain.RequestID) (domain.PaymentRequest, *domain.AppError) {
	if err := authz.Authorize(principal, authz.CapReadAny, nil); err != nil {
		return domain.PaymentRequest{}, err
	}
	var req domain.PaymentRequest
	txErr := s.store.WithTx(ctx, pgx.ReadCommitted, func(ctx context.Context, tx postgres.Tx) error {
		r, found, err := postgres.GetRequest(ctx, tx, id)
		if err != nil {
			return domain.Wrap(err, domain.KindInternal, "failed to read request")
		}
		if !found {
			return domain.New(domain.KindNotFound, "request not found")
		}
		req = r
		return nil
	})
	if txErr != nil {
		return domain.PaymentRequest{}, toAppError(txErr)
	}
	return req, nil
}

