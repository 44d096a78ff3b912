package domain

import "time"

// User is a stable internal identity. Non-ADMIN users are created only by
// an ADMIN through the workflow service; the first ADMIN is created by a
// privileged out-of-band bootstrap channel outside the normal user-creation
// path.
type User struct {
	ID           UserID
	Username     string
	DisplayName  string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}
