package models

import (
	"slices"
	"strings"

	"github.com/mmynk/splitledger/internal/ledgererr"
)

// Group is a set of members sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Title is the display name of the group (e.g., "Flatmates").
	Title string

	// Members holds the member user IDs in join order.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	return slices.Contains(g.Members, userID)
}

// Validate trims the title and checks that it is not empty.
func (g *Group) Validate() error {
	g.Title = strings.TrimSpace(g.Title)
	if g.Title == "" {
		return ledgererr.Validation(ledgererr.EmptyTitle, "title", "title must not be empty")
	}
	return nil
}
