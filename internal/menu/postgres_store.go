package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInvalidSlot is returned for a day index outside [0,6] or an unknown meal.
var ErrInvalidSlot = errors.New("invalid menu slot")

// PostgresStore implements Store using pgxpool. Each team's menu is a single
// JSONB document guarded by an optimistic version stamp.
type PostgresStore struct {
	pool        *pgxpool.Pool
	slotRetries int
}

// NewStore creates a Store backed by the given connection pool. slotRetries
// bounds how many times UpdateSlot re-attempts after a version conflict.
func NewStore(pool *pgxpool.Pool, slotRetries int) Store {
	if slotRetries < 1 {
		slotRetries = 1
	}
	return &PostgresStore{pool: pool, slotRetries: slotRetries}
}

// Load fetches the team's document. An absent document yields the 7-day
// default with version 0 and is not persisted until first save.
func (s *PostgresStore) Load(ctx context.Context, inviteCode string) (*Document, error) {
	query := `
		SELECT menu, version, updated_at
		FROM weekly_menus
		WHERE invite_code = $1`

	doc := Document{InviteCode: inviteCode}
	var raw []byte
	err := s.pool.QueryRow(ctx, query, inviteCode).Scan(&raw, &doc.Version, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			doc.Menu = Default()
			doc.Version = 0
			return &doc, nil
		}
		return nil, fmt.Errorf("loading weekly menu: %w", err)
	}

	if err := json.Unmarshal(raw, &doc.Menu); err != nil {
		// Stored shape beyond repair; fall back to the default rather than
		// propagate a fatal error, but keep the version so saves still fence.
		slog.Warn("stored weekly menu is malformed; serving default", "inviteCode", inviteCode, "error", err)
		doc.Menu = Default()
	}

	return &doc, nil
}

// Save persists the entire menu, guarded by the expected version. A mismatch
// returns ErrVersionConflict instead of silently overwriting concurrent edits.
func (s *PostgresStore) Save(ctx context.Context, inviteCode string, m WeeklyMenu, expectedVersion int64) (*Document, error) {
	m.Repair()

	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding weekly menu: %w", err)
	}

	doc := Document{InviteCode: inviteCode, Menu: m}

	if expectedVersion == 0 {
		query := `
			INSERT INTO weekly_menus (invite_code, menu, version)
			VALUES ($1, $2, 1)
			ON CONFLICT (invite_code) DO NOTHING
			RETURNING version, updated_at`

		err = s.pool.QueryRow(ctx, query, inviteCode, raw).Scan(&doc.Version, &doc.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Someone else created the document first.
				return nil, ErrVersionConflict
			}
			return nil, fmt.Errorf("inserting weekly menu: %w", err)
		}
		return &doc, nil
	}

	query := `
		UPDATE weekly_menus
		SET menu = $2, version = version + 1, updated_at = NOW()
		WHERE invite_code = $1 AND version = $3
		RETURNING version, updated_at`

	err = s.pool.QueryRow(ctx, query, inviteCode, raw, expectedVersion).Scan(&doc.Version, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVersionConflict
		}
		return nil, fmt.Errorf("updating weekly menu: %w", err)
	}

	return &doc, nil
}

// UpdateSlot replaces one (day, meal) slot via a read-modify-write of the
// whole document, preserving every other slot. Version conflicts are logged
// and retried a bounded number of times.
func (s *PostgresStore) UpdateSlot(ctx context.Context, inviteCode string, day int, meal Meal, recipeIDs []string) (*Document, error) {
	if day < 0 || day >= NumDays || !ValidMeal(meal) {
		return nil, ErrInvalidSlot
	}

	for attempt := 1; ; attempt++ {
		doc, err := s.Load(ctx, inviteCode)
		if err != nil {
			return nil, err
		}

		doc.Menu[day].SetSlot(meal, recipeIDs)

		saved, err := s.Save(ctx, inviteCode, doc.Menu, doc.Version)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, err
		}

		slog.Warn("slot update lost a version race, retrying",
			"inviteCode", inviteCode,
			"day", day,
			"meal", meal,
			"attempt", attempt,
		)
		if attempt >= s.slotRetries {
			return nil, ErrVersionConflict
		}
	}
}
