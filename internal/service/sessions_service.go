package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"parkhub/internal/billing"
	"parkhub/internal/models"
	redisstore "parkhub/internal/redis"
	"parkhub/internal/repository"
)

// Accepted layouts for client-supplied entry times. Layouts without a zone
// are interpreted in server local time, matching how entry times are stored.
var entryTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// SessionsService owns the open -> closed lifecycle of parking sessions.
type SessionsService struct {
	sessions    SessionRepository
	rates       RateRepository
	activeStore *redisstore.Store
	artifacts   ArtifactGenerator
	tokenGen    func() string
	now         func() time.Time
	logger      *zap.Logger
}

// NewSessionsService builds the service. tokenGen and now may be nil, in
// which case UUIDv4 tokens and the wall clock are used.
func NewSessionsService(
	sessions SessionRepository,
	rates RateRepository,
	activeStore *redisstore.Store,
	artifacts ArtifactGenerator,
	tokenGen func() string,
	now func() time.Time,
	logger *zap.Logger,
) *SessionsService {
	if tokenGen == nil {
		tokenGen = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionsService{
		sessions:    sessions,
		rates:       rates,
		activeStore: activeStore,
		artifacts:   artifacts,
		tokenGen:    tokenGen,
		now:         now,
		logger:      logger,
	}
}

// OpenSessionInput is the vehicle entry payload.
type OpenSessionInput struct {
	Plate       string
	VehicleType string
	Brand       string
	Model       string
	Color       string
	EntryTime   string
}

// OpenSessionResult is returned on successful entry.
type OpenSessionResult struct {
	Token string `json:"token"`
	QRURL string `json:"qr_url"`
}

// FeePreview quotes the charge for an open session at a given instant.
type FeePreview struct {
	Token         string    `json:"token"`
	Plate         string    `json:"plate"`
	VehicleType   string    `json:"vehicle_type"`
	EntryTime     time.Time `json:"entry_time"`
	DurationHours float64   `json:"duration_hours"`
	Amount        float64   `json:"amount"`
}

// CloseResult reports the frozen charge after exit.
type CloseResult struct {
	AmountPaid float64   `json:"amount_paid"`
	ExitTime   time.Time `json:"exit_time"`
}

// EntryTimeUpdate confirms an entry-time edit.
type EntryTimeUpdate struct {
	Token     string    `json:"token"`
	Plate     string    `json:"plate"`
	EntryTime time.Time `json:"entry_time"`
}

// Open registers a vehicle entry: generates a token, writes the QR artifact
// and inserts the open session. A supplied entry time that does not parse
// falls back to now; one later than now is clamped to now. A plate that
// already has an open session is rejected.
func (s *SessionsService) Open(ctx context.Context, input OpenSessionInput) (*OpenSessionResult, error) {
	plate := strings.TrimSpace(input.Plate)
	vehicleType := strings.TrimSpace(input.VehicleType)
	if plate == "" || vehicleType == "" {
		return nil, validationError("Missing data")
	}

	now := s.now()
	entryTime := now
	if raw := strings.TrimSpace(input.EntryTime); raw != "" {
		if parsed, err := parseEntryTime(raw); err == nil {
			entryTime = parsed
			if entryTime.After(now) {
				entryTime = now
			}
		}
	}

	if _, err := s.sessions.GetActiveByPlate(ctx, plate); err == nil {
		return nil, conflictError("Plate already has an active session")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	token := s.tokenGen()

	var qrURL string
	if s.artifacts != nil {
		url, err := s.artifacts.Generate(token)
		if err != nil {
			return nil, internalError("Failed to generate QR code")
		}
		qrURL = url
	}

	session := newSession(token, plate, vehicleType, input, entryTime)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.cacheActive(ctx, session.Token, session.Plate, session.VehicleType, session.EntryTime)

	s.logger.Info("parking session opened",
		zap.String("token", token),
		zap.String("plate", plate),
		zap.String("vehicle_type", vehicleType),
	)
	return &OpenSessionResult{Token: token, QRURL: qrURL}, nil
}

// VerifyByToken quotes the current fee for an open session.
func (s *SessionsService) VerifyByToken(ctx context.Context, token string) (*FeePreview, error) {
	if s.activeStore != nil {
		cached, err := s.activeStore.Get(ctx, token)
		if err == nil {
			return s.quote(ctx, token, cached.Plate, cached.VehicleType, cached.EntryTime)
		}
		if err != redis.Nil {
			s.logger.Warn("active session cache read failed", zap.Error(err))
		}
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Session not found")
		}
		return nil, err
	}
	if !session.Active() {
		return nil, closedSessionError("Session already closed", session.AmountPaid)
	}
	return s.quote(ctx, session.Token, session.Plate, session.VehicleType, session.EntryTime)
}

// SearchByPlate quotes the current fee for the open session of a plate.
func (s *SessionsService) SearchByPlate(ctx context.Context, plate string) (*FeePreview, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return nil, validationError("Missing plate parameter")
	}

	session, err := s.sessions.GetActiveByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("No active session found for this plate")
		}
		return nil, err
	}
	return s.quote(ctx, session.Token, session.Plate, session.VehicleType, session.EntryTime)
}

// UpdateEntryTime edits the entry time of an open session. The new value
// must parse and must not be in the future.
func (s *SessionsService) UpdateEntryTime(ctx context.Context, token, entryTime string) (*EntryTimeUpdate, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Session not found")
		}
		return nil, err
	}
	if !session.Active() {
		return nil, conflictError("Cannot edit closed session")
	}

	raw := strings.TrimSpace(entryTime)
	if raw == "" {
		return nil, validationError("Missing entry_time")
	}
	parsed, err := parseEntryTime(raw)
	if err != nil {
		return nil, validationError("Invalid date format")
	}
	if parsed.After(s.now()) {
		return nil, validationError("Entry time cannot be in the future")
	}

	if err := s.sessions.UpdateEntryTime(ctx, token, parsed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, conflictError("Cannot edit closed session")
		}
		return nil, err
	}

	s.cacheActive(ctx, session.Token, session.Plate, session.VehicleType, parsed)

	return &EntryTimeUpdate{Token: session.Token, Plate: session.Plate, EntryTime: parsed}, nil
}

// Close seals an open session: computes the fee at now and freezes exit time
// and amount atomically, exactly once.
func (s *SessionsService) Close(ctx context.Context, token string) (*CloseResult, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Session not found")
		}
		return nil, err
	}
	if !session.Active() {
		return nil, closedSessionError("Session already closed", session.AmountPaid)
	}

	rate, err := s.rates.GetByType(ctx, session.VehicleType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, internalError("Rate not found")
		}
		return nil, err
	}

	now := s.now()
	_, amount := billing.Quote(session.EntryTime, rate.HourlyRate, now)

	if err := s.sessions.Close(ctx, token, now, amount); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// lost a close race; the other writer froze the amount
			fresh, freshErr := s.sessions.GetByToken(ctx, token)
			if freshErr == nil {
				return nil, closedSessionError("Session already closed", fresh.AmountPaid)
			}
			return nil, closedSessionError("Session already closed", nil)
		}
		return nil, err
	}

	if s.activeStore != nil {
		if err := s.activeStore.Delete(ctx, token); err != nil && err != redis.Nil {
			s.logger.Warn("failed to delete active session cache", zap.Error(err))
		}
	}

	s.logger.Info("parking session closed",
		zap.String("token", token),
		zap.String("plate", session.Plate),
		zap.Float64("amount_paid", amount),
	)
	return &CloseResult{AmountPaid: amount, ExitTime: now}, nil
}

func (s *SessionsService) quote(ctx context.Context, token, plate, vehicleType string, entryTime time.Time) (*FeePreview, error) {
	rate, err := s.rates.GetByType(ctx, vehicleType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, internalError("Rate not found")
		}
		return nil, err
	}

	duration, amount := billing.Quote(entryTime, rate.HourlyRate, s.now())
	return &FeePreview{
		Token:         token,
		Plate:         plate,
		VehicleType:   vehicleType,
		EntryTime:     entryTime,
		DurationHours: duration,
		Amount:        amount,
	}, nil
}

func (s *SessionsService) cacheActive(ctx context.Context, token, plate, vehicleType string, entryTime time.Time) {
	if s.activeStore == nil {
		return
	}
	err := s.activeStore.Save(ctx, redisstore.ActiveSession{
		Token:       token,
		Plate:       plate,
		VehicleType: vehicleType,
		EntryTime:   entryTime,
	})
	if err != nil && err != redis.Nil {
		s.logger.Warn("failed to cache active session", zap.Error(err))
	}
}

func parseEntryTime(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range entryTimeLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339 {
			t, err = time.Parse(layout, raw)
		} else {
			t, err = time.ParseInLocation(layout, raw, time.Local)
		}
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func newSession(token, plate, vehicleType string, input OpenSessionInput, entryTime time.Time) *models.Session {
	return &models.Session{
		Token:       token,
		Plate:       plate,
		VehicleType: vehicleType,
		Brand:       optional(input.Brand),
		Model:       optional(input.Model),
		Color:       optional(input.Color),
		EntryTime:   entryTime,
	}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
