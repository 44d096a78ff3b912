/*
Package workflow orchestrates the payment lifecycle by composing
authorization, idempotency, the state machine, the version gate, and the
audit log around a PostgreSQL transaction per operation: one service
struct per bounded set of collaborators, one method per lifecycle
operation, every storage access made inside a WithTx call.
*/
package workflow

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/warp/paymentflow/audit"
	"github.com/warp/paymentflow/domain"
	"github.com/warp/paymentflow/idempotency"
	"github.com/warp/paymentflow/ledger"
	"github.com/warp/paymentflow/store/postgres"
)

// Service is the payment workflow orchestrator. Every mutating method
// makes its writes in one database transaction (via store.WithTx)
// spanning idempotency replay detection, row locking, the ownership check,
// state validation, the write, the version gate, and the audit log
// append. Role checks that need no stored row run before that
// transaction. A replayed call reads its result back in a separate
// transaction, and MarkPaid checks for batch completion in a second one.
type Service struct {
	store   *postgres.Store
	ledger  ledger.Collaborator
	logger  *zap.Logger
	metrics *Metrics
}

func NewService(store *postgres.Store, ledgerCollaborator ledger.Collaborator, logger *zap.Logger, metrics *Metrics) *Service {
	return &Service{store: store, ledger: ledgerCollaborator, logger: logger, metrics: metrics}
}

func asAppErrorKind(err error) (domain.ErrorKind, bool) {
	return domain.AsKind(err)
}

// idempotencyOutcome is what a transactional operation reports back to
// runIdempotent once its side effects have happened, so the record can be
// written in the same transaction right after the audit append.
type idempotencyOutcome struct {
	targetID domain.ID
	kind     domain.ErrorKind // "" on success
}

// runIdempotent is the shared skeleton every mutating operation uses: look
// up (key, op) under the transaction, short-circuit on an exact replay,
// reject a conflicting reuse of the key, otherwise run body and record the
// outcome before committing.
func (s *Service) runIdempotent(
	ctx context.Context,
	isoLevel pgx.TxIsoLevel,
	key string,
	op domain.Operation,
	payload any,
	body func(ctx context.Context, tx postgres.Tx) (idempotencyOutcome, *domain.AppError),
) (domain.ID, *domain.AppError) {
	payloadHash, hashErr := idempotency.HashPayload(payload)
	if hashErr != nil {
		return domain.ID{}, domain.Wrap(hashErr, domain.KindInternal, "failed to hash operation payload")
	}

	var resultID domain.ID
	var resultErr *domain.AppError

	txErr := s.store.WithTx(ctx, isoLevel, func(ctx context.Context, tx postgres.Tx) error {
		registry := postgres.IdempotencyStore{Tx: tx}
		existing, found, err := registry.Lookup(ctx, key, op)
		if err != nil {
			return err
		}
		switch idempotency.CheckReplay(existing, found, payloadHash) {
		case idempotency.ReplayIdentical:
			resultID = existing.TargetID
			if existing.ResponseKind != "" {
				resultErr = domain.New(existing.ResponseKind, "replay of a previously failed operation")
			}
			return nil
		case idempotency.ReplayConflict:
			resultErr = domain.New(domain.KindConflict, "idempotency key reused with a different payload")
			return nil
		}

		outcome, appErr := body(ctx, tx)
		if appErr != nil {
			resultErr = appErr
			rec := domain.IdempotencyRecord{
				Key: key, Operation: op, TargetID: outcome.targetID,
				ResponseKind: appErr.Kind, PayloadHash: payloadHash, CreatedAt: nowUTC(),
			}
			return registry.Record(ctx, rec)
		}

		resultID = outcome.targetID
		rec := domain.IdempotencyRecord{
			Key: key, Operation: op, TargetID: outcome.targetID,
			ResponseKind: "", PayloadHash: payloadHash, CreatedAt: nowUTC(),
		}
		return registry.Record(ctx, rec)
	})

	if txErr != nil {
		appErr, ok := txErr.(*domain.AppError)
		if !ok {
			appErr = domain.Wrap(txErr, domain.KindInternal, "transaction failed")
		}
		s.metrics.observe(string(op), appErr)
		return domain.ID{}, appErr
	}

	if resultErr != nil {
		s.metrics.observe(string(op), resultErr)
		return resultID, resultErr
	}
	s.metrics.observe(string(op), nil)
	return resultID, nil
}

func (s *Service) appendAudit(ctx context.Context, tx postgres.Tx, eventType domain.AuditEventType, actor *domain.UserID, kind domain.EntityKind, entityID domain.ID, previous, next any) *domain.AppError {
	entry, err := audit.NewEntry(eventType, actor, kind, entityID, previous, next)
	if err != nil {
		if ae, ok := err.(*domain.AppError); ok {
			return ae
		}
		return domain.Wrap(err, domain.KindInternal, "failed to build audit entry")
	}
	store := postgres.AuditStore{Tx: tx}
	if err := store.Append(ctx, entry); err != nil {
		return domain.Wrap(err, domain.KindInternal, "failed to append audit entry")
	}
	return nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
