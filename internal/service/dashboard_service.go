package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"parkhub/internal/billing"
	"parkhub/internal/models"
)

const dateLayout = "2006-01-02"

// DashboardService derives per-day statistics from the session ledger.
type DashboardService struct {
	sessions SessionRepository
	now      func() time.Time
	logger   *zap.Logger
}

// NewDashboardService builds service. now may be nil for the wall clock.
func NewDashboardService(sessions SessionRepository, now func() time.Time, logger *zap.Logger) *DashboardService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{sessions: sessions, now: now, logger: logger}
}

// TypeStats aggregates one vehicle type's activity for a date.
type TypeStats struct {
	VehicleType string  `json:"vehicle_type"`
	Entries     int     `json:"entries"`
	Exits       int     `json:"exits"`
	Revenue     float64 `json:"revenue"`
}

// Report is the dashboard payload for one calendar date.
type Report struct {
	Date           string           `json:"date"`
	EntriesCount   int              `json:"entries_count"`
	ExitsCount     int              `json:"exits_count"`
	TotalRevenue   float64          `json:"total_revenue"`
	ActiveVehicles []models.Session `json:"active_vehicles"`
	StatsByType    []TypeStats      `json:"stats_by_type"`
}

// Report aggregates entries, exits and revenue for the given YYYY-MM-DD date
// (today when empty), plus a live snapshot of open sessions that is not
// date-filtered. Per-type figures sum to the unfiltered totals.
func (s *DashboardService) Report(ctx context.Context, date string) (*Report, error) {
	var day time.Time
	if strings.TrimSpace(date) == "" {
		day = s.now()
	} else {
		parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), time.Local)
		if err != nil {
			return nil, validationError("Invalid date format")
		}
		day = parsed
	}

	entered, err := s.sessions.ListEnteredOn(ctx, day)
	if err != nil {
		return nil, err
	}
	exited, err := s.sessions.ListExitedOn(ctx, day)
	if err != nil {
		return nil, err
	}
	active, err := s.sessions.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if active == nil {
		active = []models.Session{}
	}

	byType := make(map[string]*TypeStats)
	stats := func(vehicleType string) *TypeStats {
		st, ok := byType[vehicleType]
		if !ok {
			st = &TypeStats{VehicleType: vehicleType}
			byType[vehicleType] = st
		}
		return st
	}

	for _, session := range entered {
		stats(session.VehicleType).Entries++
	}

	var totalRevenue float64
	for _, session := range exited {
		st := stats(session.VehicleType)
		st.Exits++
		if session.AmountPaid != nil {
			st.Revenue += *session.AmountPaid
			totalRevenue += *session.AmountPaid
		}
	}

	statsByType := make([]TypeStats, 0, len(byType))
	for _, st := range byType {
		st.Revenue = billing.Round2(st.Revenue)
		statsByType = append(statsByType, *st)
	}
	sort.Slice(statsByType, func(i, j int) bool {
		return statsByType[i].VehicleType < statsByType[j].VehicleType
	})

	return &Report{
		Date:           day.Format(dateLayout),
		EntriesCount:   len(entered),
		ExitsCount:     len(exited),
		TotalRevenue:   billing.Round2(totalRevenue),
		ActiveVehicles: active,
		StatsByType:    statsByType,
	}, nil
}
