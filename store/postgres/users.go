package postgres

import (
	"context"

	"github.com/warp/paymentflow/domain"
)

// InsertUser creates a new internal identity. SanitizeRequestedRole must
// be applied by the caller before this is reached — this store performs
// no role policing of its own.
func InsertUser(ctx context.Context, tx Tx, u domain.User) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO users (id, username, display_name, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Username, u.DisplayName, u.Role, u.PasswordHash, u.CreatedAt)
	return err
}

func GetUserByUsername(ctx context.Context, tx Tx, username string) (domain.User, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, username, display_name, role, password_hash, created_at FROM users WHERE username = $1
	`, username)
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return u, true, nil
}

func GetUser(ctx context.Context, tx Tx, id domain.UserID) (domain.User, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, username, display_name, role, password_hash, created_at FROM users WHERE id = $1
	`, id)
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return u, true, nil
}
