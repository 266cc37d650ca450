package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"parkhub/internal/models"
)

const sessionColumns = `token, plate, vehicle_type, brand, model, color, entry_time, exit_time, amount_paid`

// SessionRepository handles persistence of the parking session ledger.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository returns repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var s models.Session
	if err := row.Scan(
		&s.Token,
		&s.Plate,
		&s.VehicleType,
		&s.Brand,
		&s.Model,
		&s.Color,
		&s.EntryTime,
		&s.ExitTime,
		&s.AmountPaid,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSessions(rows *sql.Rows) ([]models.Session, error) {
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Create inserts a new open session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	const query = `
		INSERT INTO parking_sessions (token, plate, vehicle_type, brand, model, color, entry_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		session.Token,
		session.Plate,
		session.VehicleType,
		session.Brand,
		session.Model,
		session.Color,
		session.EntryTime,
	)
	return err
}

// GetByToken returns the session for a token, open or closed.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE token = $1
	`
	session, err := scanSession(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return session, nil
}

// GetActiveByPlate returns the open session for a plate.
func (r *SessionRepository) GetActiveByPlate(ctx context.Context, plate string) (*models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE plate = $1 AND exit_time IS NULL
		ORDER BY entry_time DESC
		LIMIT 1
	`
	session, err := scanSession(r.db.QueryRowContext(ctx, query, plate))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return session, nil
}

// ListActive returns all open sessions, newest entry first.
func (r *SessionRepository) ListActive(ctx context.Context) ([]models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE exit_time IS NULL
		ORDER BY entry_time DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// CountActiveByType returns how many open sessions reference a vehicle type.
func (r *SessionRepository) CountActiveByType(ctx context.Context, vehicleType string) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM parking_sessions
		WHERE vehicle_type = $1 AND exit_time IS NULL
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, vehicleType).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateEntryTime rewrites the entry time of an open session. Closed sessions
// are never matched.
func (r *SessionRepository) UpdateEntryTime(ctx context.Context, token string, entryTime time.Time) error {
	const query = `
		UPDATE parking_sessions
		SET entry_time = $2
		WHERE token = $1 AND exit_time IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, token, entryTime)
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

// Close seals an open session with its exit time and frozen amount. The
// exit_time IS NULL guard makes the close atomic and unrepeatable.
func (r *SessionRepository) Close(ctx context.Context, token string, exitTime time.Time, amount float64) error {
	const query = `
		UPDATE parking_sessions
		SET exit_time = $2,
		    amount_paid = $3
		WHERE token = $1 AND exit_time IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, token, exitTime, amount)
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

// ListEnteredOn returns sessions whose entry time falls on the given calendar date.
func (r *SessionRepository) ListEnteredOn(ctx context.Context, day time.Time) ([]models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE entry_time::date = $1::date
		ORDER BY entry_time
	`
	rows, err := r.db.QueryContext(ctx, query, day)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// ListExitedOn returns sessions whose exit time falls on the given calendar date.
func (r *SessionRepository) ListExitedOn(ctx context.Context, day time.Time) ([]models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE exit_time IS NOT NULL AND exit_time::date = $1::date
		ORDER BY exit_time
	`
	rows, err := r.db.QueryContext(ctx, query, day)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}
