package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/linguacare/admin-api/internal/model"
)

func (r *facilityRepository) Create(ctx context.Context, facility *model.Facility) error {
	query := `
		INSERT INTO facilities (
			id, name, street, city, state, zip_code, phone, email,
			latitude, longitude, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	facility.ID = uuid.New()
	facility.CreatedAt = time.Now()
	facility.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		facility.ID, facility.Name, facility.Street, facility.City,
		facility.State, facility.ZipCode, facility.Phone, facility.Email,
		facility.Latitude, facility.Longitude, facility.Active,
		facility.CreatedAt, facility.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create facility: %w", err)
	}
	return nil
}

func (r *facilityRepository) Get(ctx context.Context, id uuid.UUID) (*model.Facility, error) {
	query := `
		SELECT id, name, street, city, state, zip_code, phone, email,
			   latitude, longitude, active, created_at, updated_at, deleted_at
		FROM facilities
		WHERE id = $1 AND deleted_at IS NULL
	`
	var facility model.Facility
	if err := r.db.GetContext(ctx, &facility, query, id); err != nil {
		return nil, fmt.Errorf("failed to get facility: %w", err)
	}
	return &facility, nil
}

func (r *facilityRepository) Update(ctx context.Context, facility *model.Facility) error {
	query := `
		UPDATE facilities
		SET name = $1, street = $2, city = $3, state = $4, zip_code = $5,
			phone = $6, email = $7, latitude = $8, longitude = $9,
			active = $10, updated_at = $11
		WHERE id = $12 AND deleted_at IS NULL
	`
	facility.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		facility.Name, facility.Street, facility.City, facility.State,
		facility.ZipCode, facility.Phone, facility.Email,
		facility.Latitude, facility.Longitude, facility.Active,
		facility.UpdatedAt, facility.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update facility: %w", err)
	}
	return checkRowsAffected(result, "facility")
}

func (r *facilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE facilities
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete facility: %w", err)
	}
	return checkRowsAffected(result, "facility")
}

func (r *facilityRepository) List(ctx context.Context) ([]*model.Facility, error) {
	query := `
		SELECT id, name, street, city, state, zip_code, phone, email,
			   latitude, longitude, active, created_at, updated_at, deleted_at
		FROM facilities
		WHERE deleted_at IS NULL
		ORDER BY name ASC
	`
	var facilities []*model.Facility
	if err := r.db.SelectContext(ctx, &facilities, query); err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	return facilities, nil
}
