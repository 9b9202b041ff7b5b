// Package message implements the team message board: short notes shared by
// the members of a team, keyed by invite code like the weekly menu. The
// board only ever shows the newest few messages.
package message

import (
	"time"

	"github.com/google/uuid"
)

// RecentLimit caps the board view to the newest messages.
const RecentLimit = 5

// Message is one entry on a team's message board.
type Message struct {
	ID         uuid.UUID
	InviteCode string
	AuthorID   uuid.UUID
	AuthorName string
	Body       string
	CreatedAt  time.Time
}
