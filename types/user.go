package types

import (
	"crypto/md5"
	"fmt"
	"strings"
	"time"
)

// User represents a registered account.
// The first account ever created (ID 1) administers the blog.
type User struct {
	// ID is the unique identifier of the user. IDs are assigned by the
	// database sequence, so the first registered account gets ID 1.
	ID int `json:"id" db:"id"`

	// Email is the unique address the user logs in with.
	Email string `json:"email" db:"email"`

	// Name is the user's display name.
	Name string `json:"name" db:"name"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in rendered pages or API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AvatarURL returns the gravatar URL for the user's email address.
func (u User) AvatarURL(size int) string {
	if size <= 0 {
		size = 100
	}
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(u.Email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=retro&r=g", sum, size)
}
