package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents a row in the users table. The invite code lives directly
// on the user record: a user belongs to at most one team at a time, and
// switching teams is adopting a different code.
type User struct {
	ID           uuid.UUID
	Name         string
	InviteCode   *string // nil until profile setup is complete
	IsSuperuser  bool
	ApiKeyPrefix string
	ApiKeyHash   string
	CreatedAt    time.Time
	RevokedAt    *time.Time
}

// Identity is stored in the request context after authentication.
type Identity struct {
	UserID      uuid.UUID
	UserName    string
	InviteCode  *string // nil when profile setup is incomplete
	IsSuperuser bool
}

// Team returns the identity's invite code, or "" and false when the user has
// not completed profile setup. Callers must treat team-scoped operations as
// unavailable in that case (reads serve defaults, writes are refused), never
// fail outright.
func (i *Identity) Team() (string, bool) {
	if i == nil || i.InviteCode == nil || *i.InviteCode == "" {
		return "", false
	}
	return *i.InviteCode, true
}
