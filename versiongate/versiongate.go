/*
Package versiongate implements the conditional-update primitive that
gives every status or field write on a PaymentRequest atomic optimistic
concurrency: `UPDATE ... SET ..., version = version + 1 WHERE id = $id
AND version = $expected`.
*/
package versiongate

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/warp/paymentflow/domain"
)

// Execer is satisfied by pgx.Tx and pgxpool.Pool; it is the minimal
// surface the version gate needs.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// UpdateIfVersion executes
//
//	UPDATE <table> SET <setClause>, version = version + 1
//	WHERE id = $<n+1> AND version = $<n+2>
//
// where setClause's placeholders ($1..$n) are bound to setArgs, in order.
// It returns the number of rows affected by the update: 1 on success, 0 if
// the row's version no longer matched (a concurrent writer got there
// first). Callers must raise InvalidState("concurrent modification") when
// rows affected is 0.
func UpdateIfVersion(ctx context.Context, ex Execer, table, setClause string, setArgs []any, id domain.ID, expectedVersion int64) (int64, error) {
	n := len(setArgs)
	query := fmt.Sprintf(
		"UPDATE %s SET %s, version = version + 1 WHERE id = $%d AND version = $%d",
		table, setClause, n+1, n+2,
	)
	args := make([]any, 0, n+2)
	args = append(args, setArgs...)
	args = append(args, id, expectedVersion)

	tag, err := ex.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RaiseIfNoRows turns a zero-rows-affected outcome into an InvalidState
// error; it is a no-op for any nonzero count.
func RaiseIfNoRows(rowsAffected int64) *domain.AppError {
	if rowsAffected == 0 {
		return domain.New(domain.KindInvalidState, "concurrent modification")
	}
	return nil
}
