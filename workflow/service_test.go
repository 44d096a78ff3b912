package workflow_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/paymentflow/domain"
	"github.com/warp/paymentflow/ledger/memory"
	"github.com/warp/paymentflow/store/postgres"
	"github.com/warp/paymentflow/workflow"
)

// These tests exercise the full Service against a real PostgreSQL
// database and are skipped unless PAYMENTFLOW_TEST_DSN names one to
// connect to, the same way the rest of the corpus gates tests that need a
// live external dependency.
func newTestService(t *testing.T) (*workflow.Service, *postgres.Store, domain.Principal, domain.Principal) {
	t.Helper()
	dsn := os.Getenv("PAYMENTFLOW_TEST_DSN")
	if dsn == "" {
		t.Skip("PAYMENTFLOW_TEST_DSN not set, skipping database-backed workflow tests")
	}

	store, err := postgres.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	metrics := workflow.NewMetrics(prometheus.NewRegistry())
	svc := workflow.NewService(store, memory.New(), zap.NewNop(), metrics)

	creator := createTestUser(t, store, domain.RoleCreator)
	approver := createTestUser(t, store, domain.RoleApprover)
	return svc, store, creator, approver
}

func createTestUser(t *testing.T, store *postgres.Store, role domain.Role) domain.Principal {
	t.Helper()
	u := domain.User{
		ID:           domain.NewUserID(),
		Username:     "user-" + uuid.NewString(),
		DisplayName:  string(role) + " tester",
		Role:         role,
		PasswordHash: "not-a-real-hash",
		CreatedAt:    time.Now().UTC(),
	}
	err := store.WithTx(context.Background(), pgx.ReadCommitted, func(ctx context.Context, tx postgres.Tx) error {
		return postgres.InsertUser(ctx, tx, u)
	})
	require.NoError(t, err)
	return domain.Principal{UserID: u.ID, Role: u.Role}
}

func idemKey() string {
	return uuid.NewString()
}

func legacyInput(amount string) workflow.NewRequestInput {
	a := decimal.RequireFromString(amount)
	name := "Acme Supplies"
	account := "IBAN123456789"
	purpose := "Invoice #1"
	return workflow.NewRequestInput{
		Currency:           "USD",
		Amount:             &a,
		BeneficiaryName:    &name,
		BeneficiaryAccount: &account,
		Purpose:            &purpose,
	}
}

func TestCreateBatchAndAddRequest_HappyPath(t *testing.T) {
	svc, _, creator, _ := newTestService(t)
	ctx := context.Background()

	batch, err := svc.CreateBatch(ctx, creator, idemKey(), "August payables")
	require.Nil(t, err)
	assert.Equal(t, domain.BatchDraft, batch.Status)

	req, err := svc.AddRequestToBatch(ctx, creator, idemKey(), batch.ID, legacyInput("100.00"))
	require.Nil(t, err)
	assert.Equal(t, domain.RequestDraft, req.Status)
	assert.Equal(t, batch.ID, req.BatchID)
}

func TestCreateBatch_IdempotentReplayReturnsSameBatch(t *testing.T) {
	svc, _, creator, _ := newTestService(t)
	ctx := context.Background()
	key := idemKey()

	first, err := svc.CreateBatch(ctx, creator, key, "Replay batch")
	require.Nil(t, err)

	second, err := svc.CreateBatch(ctx, creator, key, "Replay batch")
	require.Nil(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreateBatch_IdempotencyKeyReusedWithDifferentPayloadConflicts(t *testing.T) {
	svc, _, creator, _ := newTestService(t)
	ctx := context.Background()
	key := idemKey()

	_, err := svc.CreateBatch(ctx, creator, key, "First title")
	require.Nil(t, err)

	_, err = svc.CreateBatch(ctx, creator, key, "Different title")
	require.NotNil(t, err)
	assert.Equal(t, domain.KindConflict, err.Kind)
}

func TestSubmitBatch_EmptyBatchRejected(t *testing.T) {
	svc, _, creator, _ := newTestService(t)
	ctx := context.Background()

	batch, err := svc.CreateBatch(ctx, creator, idemKey(), "Empty batch")
	require.Nil(t, err)

	_, err = svc.SubmitBatch(ctx, creator, idemKey(), batch.ID)
	require.NotNil(t, err)
	assert.Equal(t, domain.KindValidation, err.Kind)
}

func TestUpdateRequest_RejectedAfterSubmission(t *testing.T) {
	svc, _, creator, _ := newTestService(t)
	ctx := context.Background()

	batch, err := svc.CreateBatch(ctx, creator, idemKey(), "Edit after submit")
	require.Nil(t, err)
	req, err := svc.AddRequestToBatch(ctx, creator, idemKey(), batch.ID, legacyInput("50.00"))
	require.Nil(t, err)

	_, err = svc.SubmitBatch(ctx, creator, idemKey(), batch.ID)
	require.Nil(t, err)

	_, err = svc.UpdateRequest(ctx, creator, idemKey(), req.ID, legacyInput("75.00"), req.Version)
	require.NotNil(t, err)
	assert.Equal(t, domain.KindInvalidState, err.Kind)
}

func TestCancelBatch_RaceOnlyOneWinnerTransitions(t *testing.T) {
	svc, _, creator, _ := newTestService(t)
	ctx := context.Background()

	batch, err := svc.CreateBatch(ctx, creator, idemKey(), "Cancel race")
	require.Nil(t, err)

	// Every goroutine uses a distinct idempotency key, so row locking
	// (not idempotency replay) is what has to serialize this race: the
	// first to acquire the batch's row lock wins the DRAFT -> CANCELLED
	// transition, and everyone else observes the now-terminal CANCELLED
	// status and is rejected.
	var wg sync.WaitGroup
	results := make([]*domain.AppError, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, aerr := svc.CancelBatch(ctx, creator, idemKey(), batch.ID)
			results[i] = aerr
		}(i)
	}
	wg.Wait()

	successes, rejections := 0, 0
	for _, aerr := range results {
		switch {
		case aerr == nil:
			successes++
		case aerr.Kind == domain.KindInvalidState:
			rejections++
		default:
			t.Fatalf("unexpected error kind: %v", aerr)
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent cancel should win the transition")
	assert.Equal(t, 3, rejections)

	final, err := svc.GetBatch(ctx, creator, batch.ID)
	require.Nil(t, err)
	assert.Equal(t, domain.BatchCancelled, final.Status)
}

func TestApprove_ConcurrentApprovalsOnlyOneWins(t *testing.T) {
	svc, _, creator, approver := newTestService(t)
	ctx := context.Background()

	batch, err := svc.CreateBatch(ctx, creator, idemKey(), "Concurrent approval")
	require.Nil(t, err)
	req, err := svc.AddRequestToBatch(ctx, creator, idemKey(), batch.ID, legacyInput("200.00"))
	require.Nil(t, err)
	_, err = svc.SubmitBatch(ctx, creator, idemKey(), batch.ID)
	require.Nil(t, err)

	var wg sync.WaitGroup
	errs := make([]*domain.AppError, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, aerr := svc.Approve(ctx, approver, idemKey(), req.ID, nil)
			errs[i] = aerr
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, aerr := range errs {
		switch {
		case aerr == nil:
			successes++
		case aerr.Kind == domain.KindInvalidState:
			conflicts++
		default:
			t.Fatalf("unexpected error kind: %v", aerr)
		}
	}
	assert.Equal(t, 1, successes, "exactly one of the concurrent approvals should win the transition")
	assert.Equal(t, 4, conflicts)

	final, err := svc.GetBatch(ctx, creator, batch.ID)
	require.Nil(t, err)
	assert.Equal(t, domain.BatchProcessing, final.Status)
}

func TestMarkPaid_CompletesBatchAndGeneratesSOA(t *testing.T) {
	svc, store, creator, approver := newTestService(t)
	ctx := context.Background()

	batch, err := svc.CreateBatch(ctx, creator, idemKey(), "Single-request batch")
	require.Nil(t, err)
	req, err := svc.AddRequestToBatch(ctx, creator, idemKey(), batch.ID, legacyInput("300.00"))
	require.Nil(t, err)
	_, err = svc.SubmitBatch(ctx, creator, idemKey(), batch.ID)
	require.Nil(t, err)
	_, err = svc.Approve(ctx, approver, idemKey(), req.ID, nil)
	require.Nil(t, err)

	paid, err := svc.MarkPaid(ctx, approver, idemKey(), req.ID)
	require.Nil(t, err)
	assert.Equal(t, domain.RequestPaid, paid.Status)

	final, err := svc.GetBatch(ctx, creator, batch.ID)
	require.Nil(t, err)
	assert.Equal(t, domain.BatchCompleted, final.Status)
	assert.NotNil(t, final.CompletedAt)

	var versions []domain.SOAVersion
	txErr := store.WithTx(ctx, pgx.ReadCommitted, func(ctx context.Context, tx postgres.Tx) error {
		v, listErr := postgres.ListVersions(ctx, tx, req.ID)
		versions = v
		return listErr
	})
	require.NoError(t, txErr)
	require.Len(t, versions, 1)
	assert.Equal(t, domain.SOAGenerated, versions[0].Source)
}

func TestUploadSOA_AccumulatesVersionsAcrossLifecycle(t *testing.T) {
	svc, _, creator, _ := newTestService(t)
	ctx := context.Background()

	batch, err := svc.CreateBatch(ctx, creator, idemKey(), "Upload SOA batch")
	require.Nil(t, err)
	req, err := svc.AddRequestToBatch(ctx, creator, idemKey(), batch.ID, legacyInput("40.00"))
	require.Nil(t, err)

	first, err := svc.UploadSOA(ctx, creator, idemKey(), req.ID, fmt.Sprintf("uploads/%s/v1.pdf", req.ID))
	require.Nil(t, err)
	assert.Equal(t, 1, first.VersionNumber)
	assert.Equal(t, domain.SOAUpload, first.Source)

	second, err := svc.UploadSOA(ctx, creator, idemKey(), req.ID, fmt.Sprintf("uploads/%s/v2.pdf", req.ID))
	require.Nil(t, err)
	assert.Equal(t, 2, second.VersionNumber)
}

func TestAddRequestToBatch_ForbiddenForNonOwner(t *testing.T) {
	svc, store, creator, _ := newTestService(t)
	ctx := context.Background()
	other := createTestUser(t, store, domain.RoleCreator)

	batch, err := svc.CreateBatch(ctx, creator, idemKey(), "Owned by creator")
	require.Nil(t, err)

	_, err = svc.AddRequestToBatch(ctx, other, idemKey(), batch.ID, legacyInput("10.00"))
	require.NotNil(t, err)
	assert.Equal(t, domain.KindForbidden, err.Kind)
}
