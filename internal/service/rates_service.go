package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"parkhub/internal/models"
	"parkhub/internal/repository"
)

// RatesService manages the vehicle-type rate table.
type RatesService struct {
	rates    RateRepository
	sessions SessionRepository
	logger   *zap.Logger
}

// NewRatesService builds service.
func NewRatesService(rates RateRepository, sessions SessionRepository, logger *zap.Logger) *RatesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatesService{rates: rates, sessions: sessions, logger: logger}
}

// RateStatus is a rate annotated with its live open-session count.
type RateStatus struct {
	ID             int64   `json:"id"`
	VehicleType    string  `json:"vehicle_type"`
	HourlyRate     float64 `json:"hourly_rate"`
	ActiveSessions int     `json:"active_sessions"`
}

// UpdateRateInput carries the optional rename/reprice fields.
type UpdateRateInput struct {
	VehicleType *string
	HourlyRate  *float64
}

// List returns every rate with a live count of open sessions of its type.
func (s *RatesService) List(ctx context.Context) ([]RateStatus, error) {
	rates, err := s.rates.List(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]RateStatus, 0, len(rates))
	for _, rate := range rates {
		count, err := s.sessions.CountActiveByType(ctx, rate.VehicleType)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, RateStatus{
			ID:             rate.ID,
			VehicleType:    rate.VehicleType,
			HourlyRate:     rate.HourlyRate,
			ActiveSessions: count,
		})
	}
	return statuses, nil
}

// Create registers a new vehicle type. The name must be unique and the rate
// non-negative.
func (s *RatesService) Create(ctx context.Context, vehicleType string, hourlyRate float64) (*models.Rate, error) {
	vehicleType = strings.TrimSpace(vehicleType)
	if vehicleType == "" {
		return nil, validationError("Missing required fields")
	}
	if hourlyRate < 0 {
		return nil, validationError("Hourly rate cannot be negative")
	}

	if _, err := s.rates.GetByType(ctx, vehicleType); err == nil {
		return nil, conflictError("Vehicle type already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	rate := &models.Rate{VehicleType: vehicleType, HourlyRate: hourlyRate}
	if err := s.rates.Create(ctx, rate); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle type created",
		zap.String("vehicle_type", vehicleType),
		zap.Float64("hourly_rate", hourlyRate),
	)
	return rate, nil
}

// Update renames and/or reprices an existing vehicle type. A rename fails
// when the target name already belongs to a different record.
func (s *RatesService) Update(ctx context.Context, id int64, input UpdateRateInput) (*models.Rate, error) {
	rate, err := s.rates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Vehicle type not found")
		}
		return nil, err
	}

	if input.VehicleType != nil {
		newName := strings.TrimSpace(*input.VehicleType)
		if newName != "" && newName != rate.VehicleType {
			if existing, err := s.rates.GetByType(ctx, newName); err == nil && existing.ID != id {
				return nil, conflictError("Vehicle type already exists")
			} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			rate.VehicleType = newName
		}
	}
	if input.HourlyRate != nil {
		if *input.HourlyRate < 0 {
			return nil, validationError("Hourly rate cannot be negative")
		}
		rate.HourlyRate = *input.HourlyRate
	}

	if err := s.rates.Update(ctx, rate); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Vehicle type not found")
		}
		return nil, err
	}
	return rate, nil
}

// Delete removes a vehicle type unless an open session still references it.
// Closed historical sessions never block deletion.
func (s *RatesService) Delete(ctx context.Context, id int64) error {
	rate, err := s.rates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Vehicle type not found")
		}
		return err
	}

	active, err := s.sessions.CountActiveByType(ctx, rate.VehicleType)
	if err != nil {
		return err
	}
	if active > 0 {
		return conflictError("Cannot delete: active sessions exist")
	}

	if err := s.rates.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Vehicle type not found")
		}
		return err
	}

	s.logger.Info("vehicle type deleted", zap.String("vehicle_type", rate.VehicleType))
	return nil
}
