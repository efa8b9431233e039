package entity

import "time"

// User is an account that can author articles and post comments.
// PasswordHash holds a bcrypt hash and is never rendered.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsStaff      bool
	CreatedAt    time.Time
}
