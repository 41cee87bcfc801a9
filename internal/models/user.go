package models

import (
	"strings"

	"github.com/mmynk/splitledger/internal/ledgererr"
)

// User is someone who can belong to groups.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// CreatedAt is the Unix timestamp when the user was created.
	CreatedAt int64
}

// Validate trims the name and checks that it is not empty.
func (u *User) Validate() error {
	u.Name = strings.TrimSpace(u.Name)
	if u.Name == "" {
		return ledgererr.Validation(ledgererr.EmptyName, "name", "name must not be empty")
	}
	return nil
}
