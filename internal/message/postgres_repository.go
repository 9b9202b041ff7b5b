package message

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new board message.
func (r *PostgresRepository) Create(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO messages (invite_code, author_id, author_name, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		msg.InviteCode,
		msg.AuthorID,
		msg.AuthorName,
		msg.Body,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	return nil
}

// ListRecent retrieves a team's newest messages, most recent first.
func (r *PostgresRepository) ListRecent(ctx context.Context, inviteCode string, limit int) ([]Message, error) {
	query := `
		SELECT id, invite_code, author_id, author_name, body, created_at
		FROM messages
		WHERE invite_code = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, inviteCode, limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		err := rows.Scan(
			&msg.ID, &msg.InviteCode, &msg.AuthorID,
			&msg.AuthorName, &msg.Body, &msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}

	if messages == nil {
		messages = []Message{}
	}

	return messages, nil
}
