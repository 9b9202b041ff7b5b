package menu

import (
	"context"
	"errors"
	"time"
)

// ErrVersionConflict is returned when a save's expected version no longer
// matches the stored document: another member committed in between. The
// caller re-loads and re-merges.
var ErrVersionConflict = errors.New("weekly menu version conflict")

// Document is a weekly menu together with its optimistic version stamp.
// Version 0 means the document has never been persisted.
type Document struct {
	InviteCode string
	Menu       WeeklyMenu
	Version    int64
	UpdatedAt  time.Time
}

// Store persists one weekly menu document per invite code.
//
// Load distinguishes "document doesn't exist yet" (the 7-day default with
// version 0) from "could not reach the store" (a wrapped error the caller
// surfaces for retry).
type Store interface {
	Load(ctx context.Context, inviteCode string) (*Document, error)
	Save(ctx context.Context, inviteCode string, m WeeklyMenu, expectedVersion int64) (*Document, error)
	UpdateSlot(ctx context.Context, inviteCode string, day int, meal Meal, recipeIDs []string) (*Document, error)
}
