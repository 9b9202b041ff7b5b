package message_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinnerd/dinnerd/internal/message"
)

// --- Mock Message Repository ---

type mockMessageRepo struct {
	createFn     func(ctx context.Context, msg *message.Message) error
	listRecentFn func(ctx context.Context, inviteCode string, limit int) ([]message.Message, error)
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *message.Message) error {
	if m.createFn != nil {
		return m.createFn(ctx, msg)
	}
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now().UTC()
	return nil
}

func (m *mockMessageRepo) ListRecent(ctx context.Context, inviteCode string, limit int) ([]message.Message, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, inviteCode, limit)
	}
	return []message.Message{}, nil
}

// --- Mock Publisher ---

type boardPublish struct {
	inviteCode string
	messages   []message.Message
}

type mockBoardPublisher struct {
	published []boardPublish
}

func (p *mockBoardPublisher) PublishMessages(inviteCode string, msgs []message.Message) {
	p.published = append(p.published, boardPublish{inviteCode: inviteCode, messages: msgs})
}

func TestPost_PublishesRefreshedBoard(t *testing.T) {
	t.Parallel()

	repo := &mockMessageRepo{
		listRecentFn: func(_ context.Context, inviteCode string, limit int) ([]message.Message, error) {
			assert.Equal(t, message.RecentLimit, limit)
			return []message.Message{
				{InviteCode: inviteCode, Body: "soup tonight"},
			}, nil
		},
	}
	pub := &mockBoardPublisher{}
	svc := message.NewService(repo, pub)

	msg := &message.Message{InviteCode: "family-42", AuthorName: "alice", Body: "soup tonight"}
	require.NoError(t, svc.Post(context.Background(), msg))

	assert.NotEqual(t, uuid.Nil, msg.ID)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "family-42", pub.published[0].inviteCode)
	require.Len(t, pub.published[0].messages, 1)
	assert.Equal(t, "soup tonight", pub.published[0].messages[0].Body)
}

func TestPost_NoPublishOnCreateError(t *testing.T) {
	t.Parallel()

	repo := &mockMessageRepo{
		createFn: func(_ context.Context, _ *message.Message) error {
			return errors.New("connection refused")
		},
	}
	pub := &mockBoardPublisher{}
	svc := message.NewService(repo, pub)

	err := svc.Post(context.Background(), &message.Message{InviteCode: "family-42", Body: "hi"})
	require.Error(t, err)
	assert.Empty(t, pub.published)
}

func TestPost_RefreshFailureKeepsThePost(t *testing.T) {
	t.Parallel()

	repo := &mockMessageRepo{
		listRecentFn: func(_ context.Context, _ string, _ int) ([]message.Message, error) {
			return nil, errors.New("connection reset")
		},
	}
	pub := &mockBoardPublisher{}
	svc := message.NewService(repo, pub)

	// The write committed; a failed refresh must not surface as a post error.
	err := svc.Post(context.Background(), &message.Message{InviteCode: "family-42", Body: "hi"})
	require.NoError(t, err)
	assert.Empty(t, pub.published)
}

func TestRecent_PassesThroughToRepository(t *testing.T) {
	t.Parallel()

	want := []message.Message{{Body: "newest"}, {Body: "older"}}
	repo := &mockMessageRepo{
		listRecentFn: func(_ context.Context, inviteCode string, limit int) ([]message.Message, error) {
			assert.Equal(t, "family-42", inviteCode)
			assert.Equal(t, message.RecentLimit, limit)
			return want, nil
		},
	}
	svc := message.NewService(repo, &mockBoardPublisher{})

	got, err := svc.Recent(context.Background(), "family-42")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
