package versiongate

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/paymentflow/domain"
)

// fakeExecer records the query and args it was called with and returns an
// empty command tag (zero rows affected), standing in for a pgx.Tx without
// requiring a live Postgres connection in unit tests.
type fakeExecer struct {
	wantQuery     string
	rowsAffected  int64
	capturedQuery string
	capturedArgs  []any
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.capturedQuery = sql
	f.capturedArgs = args
	return pgconn.NewCommandTag(""), nil
}

// pgconn.CommandTag.RowsAffected parses its text form, so countingExecer
// returns an "UPDATE 0" tag for a zero count and an "UPDATE 1" tag for any
// other count.
type countingExecer struct {
	rows int64
}

func (c *countingExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(commandTagFor(c.rows)), nil
}

func commandTagFor(rows int64) string {
	if rows == 0 {
		return "UPDATE 0"
	}
	return "UPDATE 1"
}

func TestUpdateIfVersion_BuildsExpectedQuery(t *testing.T) {
	ex := &fakeExecer{}
	id := domain.NewID()
	_, err := UpdateIfVersion(context.Background(), ex, "payment_requests", "status = $1, updated_by = $2", []any{"APPROVED", "u1"}, id, 3)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE payment_requests SET status = $1, updated_by = $2, version = version + 1 WHERE id = $3 AND version = $4", ex.capturedQuery)
	assert.Equal(t, []any{"APPROVED", "u1", id, int64(3)}, ex.capturedArgs)
}

func TestUpdateIfVersion_RowsAffected(t *testing.T) {
	ok := &countingExecer{rows: 1}
	n, err := UpdateIfVersion(context.Background(), ok, "payment_requests", "status = $1", []any{"APPROVED"}, domain.NewID(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Nil(t, RaiseIfNoRows(n))

	lost := &countingExecer{rows: 0}
	n, err = UpdateIfVersion(context.Background(), lost, "payment_requests", "status = $1", []any{"APPROVED"}, domain.NewID(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	appErr := RaiseIfNoRows(n)
	require.NotNil(t, appErr)
	assert.Equal(t, domain.KindInvalidState, appErr.Kind)
}
