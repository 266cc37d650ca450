package service

import (
	"context"
	"time"

	"parkhub/internal/models"
)

// SessionRepository captures the ledger operations the services need.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	GetActiveByPlate(ctx context.Context, plate string) (*models.Session, error)
	ListActive(ctx context.Context) ([]models.Session, error)
	CountActiveByType(ctx context.Context, vehicleType string) (int, error)
	UpdateEntryTime(ctx context.Context, token string, entryTime time.Time) error
	Close(ctx context.Context, token string, exitTime time.Time, amount float64) error
	ListEnteredOn(ctx context.Context, day time.Time) ([]models.Session, error)
	ListExitedOn(ctx context.Context, day time.Time) ([]models.Session, error)
}

// RateRepository captures the rate-table operations the services need.
type RateRepository interface {
	List(ctx context.Context) ([]models.Rate, error)
	GetByID(ctx context.Context, id int64) (*models.Rate, error)
	GetByType(ctx context.Context, vehicleType string) (*models.Rate, error)
	Create(ctx context.Context, rate *models.Rate) error
	Update(ctx context.Context, rate *models.Rate) error
	Delete(ctx context.Context, id int64) error
}

// ArtifactGenerator produces the scannable artifact for a session token.
type ArtifactGenerator interface {
	Generate(token string) (url string, err error)
}
