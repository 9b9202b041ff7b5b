package message

import "context"

// Repository defines persistence operations for board messages.
type Repository interface {
	Create(ctx context.Context, msg *Message) error
	ListRecent(ctx context.Context, inviteCode string, limit int) ([]Message, error)
}
