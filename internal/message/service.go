package message

import (
	"context"
	"log/slog"
)

// Publisher receives the refreshed board view after every post for fan-out
// to subscribed team members.
type Publisher interface {
	PublishMessages(inviteCode string, msgs []Message)
}

// Service composes the message repository with the live sync publisher so a
// post by any member refreshes every subscriber's board.
type Service struct {
	repo Repository
	pub  Publisher
}

// NewService creates a message Service.
func NewService(repo Repository, pub Publisher) *Service {
	return &Service{repo: repo, pub: pub}
}

// Recent returns the team's newest board messages, most recent first.
func (s *Service) Recent(ctx context.Context, inviteCode string) ([]Message, error) {
	return s.repo.ListRecent(ctx, inviteCode, RecentLimit)
}

// Post persists a message and notifies subscribers with the refreshed view.
func (s *Service) Post(ctx context.Context, msg *Message) error {
	if err := s.repo.Create(ctx, msg); err != nil {
		return err
	}

	recent, err := s.repo.ListRecent(ctx, msg.InviteCode, RecentLimit)
	if err != nil {
		// The post itself committed; subscribers catch up on their next load.
		slog.Warn("failed to refresh board after post", "error", err, "inviteCode", msg.InviteCode)
		return nil
	}
	s.pub.PublishMessages(msg.InviteCode, recent)
	return nil
}
