package repository

import (
	"context"
	"database/sql"
	"errors"

	"parkhub/internal/models"
)

// RateRepository handles persistence of the vehicle-type rate table.
type RateRepository struct {
	db *sql.DB
}

// NewRateRepository returns repository.
func NewRateRepository(db *sql.DB) *RateRepository {
	return &RateRepository{db: db}
}

// List returns all rates ordered by id.
func (r *RateRepository) List(ctx context.Context) ([]models.Rate, error) {
	const query = `
		SELECT id, vehicle_type, hourly_rate
		FROM rates
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []models.Rate
	for rows.Next() {
		var rate models.Rate
		if err := rows.Scan(&rate.ID, &rate.VehicleType, &rate.HourlyRate); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rates, nil
}

// GetByID returns one rate by primary key.
func (r *RateRepository) GetByID(ctx context.Context, id int64) (*models.Rate, error) {
	const query = `
		SELECT id, vehicle_type, hourly_rate
		FROM rates
		WHERE id = $1
	`
	var rate models.Rate
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&rate.ID, &rate.VehicleType, &rate.HourlyRate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rate, nil
}

// GetByType returns the rate for a vehicle-type label.
func (r *RateRepository) GetByType(ctx context.Context, vehicleType string) (*models.Rate, error) {
	const query = `
		SELECT id, vehicle_type, hourly_rate
		FROM rates
		WHERE vehicle_type = $1
	`
	var rate models.Rate
	if err := r.db.QueryRowContext(ctx, query, vehicleType).Scan(&rate.ID, &rate.VehicleType, &rate.HourlyRate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rate, nil
}

// Create inserts a new rate and fills in its generated id.
func (r *RateRepository) Create(ctx context.Context, rate *models.Rate) error {
	const query = `
		INSERT INTO rates (vehicle_type, hourly_rate)
		VALUES ($1, $2)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query, rate.VehicleType, rate.HourlyRate).Scan(&rate.ID)
}

// Update rewrites the name and price of an existing rate.
func (r *RateRepository) Update(ctx context.Context, rate *models.Rate) error {
	const query = `
		UPDATE rates
		SET vehicle_type = $2,
		    hourly_rate = $3
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, rate.ID, rate.VehicleType, rate.HourlyRate)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a rate by id.
func (r *RateRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM rates WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
