package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/linguacare/admin-api/internal/model"
)

const interpreterColumns = `
	id, first_name, last_name, email, phone, languages,
	latitude, longitude, coverage_miles, active,
	created_at, updated_at, deleted_at
`

func (r *interpreterRepository) Create(ctx context.Context, interpreter *model.Interpreter) error {
	query := `
		INSERT INTO interpreters (
			id, first_name, last_name, email, phone, languages,
			latitude, longitude, coverage_miles, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	interpreter.ID = uuid.New()
	interpreter.CreatedAt = time.Now()
	interpreter.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		interpreter.ID, interpreter.FirstName, interpreter.LastName,
		interpreter.Email, interpreter.Phone, interpreter.Languages,
		interpreter.Latitude, interpreter.Longitude, interpreter.CoverageMiles,
		interpreter.Active, interpreter.CreatedAt, interpreter.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}
	return nil
}

func (r *interpreterRepository) Get(ctx context.Context, id uuid.UUID) (*model.Interpreter, error) {
	query := `
		SELECT ` + interpreterColumns + `
		FROM interpreters
		WHERE id = $1 AND deleted_at IS NULL
	`
	var interpreter model.Interpreter
	if err := r.db.GetContext(ctx, &interpreter, query, id); err != nil {
		return nil, fmt.Errorf("failed to get interpreter: %w", err)
	}
	return &interpreter, nil
}

func (r *interpreterRepository) Update(ctx context.Context, interpreter *model.Interpreter) error {
	query := `
		UPDATE interpreters
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
			languages = $5, latitude = $6, longitude = $7,
			coverage_miles = $8, active = $9, updated_at = $10
		WHERE id = $11 AND deleted_at IS NULL
	`
	interpreter.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		interpreter.FirstName, interpreter.LastName, interpreter.Email,
		interpreter.Phone, interpreter.Languages, interpreter.Latitude,
		interpreter.Longitude, interpreter.CoverageMiles, interpreter.Active,
		interpreter.UpdatedAt, interpreter.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update interpreter: %w", err)
	}
	return checkRowsAffected(result, "interpreter")
}

func (r *interpreterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE interpreters
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete interpreter: %w", err)
	}
	return checkRowsAffected(result, "interpreter")
}

func (r *interpreterRepository) List(ctx context.Context) ([]*model.Interpreter, error) {
	query := `
		SELECT ` + interpreterColumns + `
		FROM interpreters
		WHERE deleted_at IS NULL
		ORDER BY last_name ASC, first_name ASC
	`
	var interpreters []*model.Interpreter
	if err := r.db.SelectContext(ctx, &interpreters, query); err != nil {
		return nil, fmt.Errorf("failed to list interpreters: %w", err)
	}
	return interpreters, nil
}

func (r *interpreterRepository) ListActive(ctx context.Context) ([]*model.Interpreter, error) {
	query := `
		SELECT ` + interpreterColumns + `
		FROM interpreters
		WHERE deleted_at IS NULL AND active = true
		ORDER BY last_name ASC, first_name ASC
	`
	var interpreters []*model.Interpreter
	if err := r.db.SelectContext(ctx, &interpreters, query); err != nil {
		return nil, fmt.Errorf("failed to list active interpreters: %w", err)
	}
	return interpreters, nil
}
