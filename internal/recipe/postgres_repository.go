package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

// Create inserts a new recipe record.
func (r *PostgresRepository) Create(ctx context.Context, rec *Recipe) error {
	if rec.Ingredients == nil {
		rec.Ingredients = []string{}
	}
	if rec.Categories == nil {
		rec.Categories = []string{}
	}

	query := `
		INSERT INTO recipes (name, description, ingredients, categories, calories)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		rec.Name,
		rec.Description,
		rec.Ingredients,
		rec.Categories,
		rec.Calories,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting recipe: %w", err)
	}

	return nil
}

// GetByID retrieves a single recipe by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	query := `
		SELECT id, name, description, ingredients, categories, calories, created_at, updated_at
		FROM recipes
		WHERE id = $1`

	return r.scanOne(ctx, query, id)
}

// ListAll retrieves every recipe in the catalog ordered by creation time.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]Recipe, error) {
	query := `
		SELECT id, name, description, ingredients, categories, calories, created_at, updated_at
		FROM recipes
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var rec Recipe
		err := rows.Scan(
			&rec.ID, &rec.Name, &rec.Description,
			&rec.Ingredients, &rec.Categories, &rec.Calories,
			&rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning recipe row: %w", err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recipe rows: %w", err)
	}

	if recipes == nil {
		recipes = []Recipe{}
	}

	return recipes, nil
}

// Update modifies the provided fields on a recipe and returns the new row.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Recipe, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	if fields.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *fields.Name)
		argIdx++
	}
	if fields.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *fields.Description)
		argIdx++
	}
	if fields.Ingredients != nil {
		setClauses = append(setClauses, fmt.Sprintf("ingredients = $%d", argIdx))
		args = append(args, *fields.Ingredients)
		argIdx++
	}
	if fields.Categories != nil {
		setClauses = append(setClauses, fmt.Sprintf("categories = $%d", argIdx))
		args = append(args, *fields.Categories)
		argIdx++
	}
	if fields.Calories != nil {
		setClauses = append(setClauses, fmt.Sprintf("calories = $%d", argIdx))
		args = append(args, *fields.Calories)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE recipes
		SET %s
		WHERE id = $%d
		RETURNING id, name, description, ingredients, categories, calories, created_at, updated_at`,
		strings.Join(setClauses, ", "), argIdx)

	return r.scanOne(ctx, query, args...)
}

// Delete removes a recipe. Weekly menus may still reference the id; readers
// treat such references as unknown rather than fail.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM recipes WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting recipe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}

	return nil
}

// scanOne scans a single Recipe row from a query. Returns ErrRecipeNotFound if no rows.
func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*Recipe, error) {
	var rec Recipe
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&rec.ID, &rec.Name, &rec.Description,
		&rec.Ingredients, &rec.Categories, &rec.Calories,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("scanning recipe row: %w", err)
	}
	return &rec, nil
}
