package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"parkhub/internal/models"
	"parkhub/internal/repository"
)

// memSessionRepo is an in-memory SessionRepository for tests.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]models.Session)}
}

func (r *memSessionRepo) add(s models.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Token] = s
}

func (r *memSessionRepo) get(token string) (models.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	return s, ok
}

func (r *memSessionRepo) Create(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.Token]; ok {
		return fmt.Errorf("duplicate token %s", session.Token)
	}
	r.sessions[session.Token] = *session
	return nil
}

func (r *memSessionRepo) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := s
	return &copied, nil
}

func (r *memSessionRepo) GetActiveByPlate(ctx context.Context, plate string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *models.Session
	for _, s := range r.sessions {
		if s.Plate != plate || s.ExitTime != nil {
			continue
		}
		if found == nil || s.EntryTime.After(found.EntryTime) {
			copied := s
			found = &copied
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *memSessionRepo) ListActive(ctx context.Context) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []models.Session
	for _, s := range r.sessions {
		if s.ExitTime == nil {
			active = append(active, s)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Token < active[j].Token })
	return active, nil
}

func (r *memSessionRepo) CountActiveByType(ctx context.Context, vehicleType string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, s := range r.sessions {
		if s.VehicleType == vehicleType && s.ExitTime == nil {
			count++
		}
	}
	return count, nil
}

func (r *memSessionRepo) UpdateEntryTime(ctx context.Context, token string, entryTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok || s.ExitTime != nil {
		return repository.ErrNotFound
	}
	s.EntryTime = entryTime
	r.sessions[token] = s
	return nil
}

func (r *memSessionRepo) Close(ctx context.Context, token string, exitTime time.Time, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok || s.ExitTime != nil {
		return repository.ErrNotFound
	}
	exit := exitTime
	paid := amount
	s.ExitTime = &exit
	s.AmountPaid = &paid
	r.sessions[token] = s
	return nil
}

func (r *memSessionRepo) ListEnteredOn(ctx context.Context, day time.Time) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.Session
	for _, s := range r.sessions {
		if sameDay(s.EntryTime, day) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

func (r *memSessionRepo) ListExitedOn(ctx context.Context, day time.Time) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.Session
	for _, s := range r.sessions {
		if s.ExitTime != nil && sameDay(*s.ExitTime, day) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

func sameDay(t, day time.Time) bool {
	y1, m1, d1 := t.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// memRateRepo is an in-memory RateRepository for tests.
type memRateRepo struct {
	mu     sync.Mutex
	nextID int64
	rates  map[int64]models.Rate
}

func newMemRateRepo() *memRateRepo {
	return &memRateRepo{rates: make(map[int64]models.Rate)}
}

func (r *memRateRepo) add(vehicleType string, hourlyRate float64) models.Rate {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rate := models.Rate{ID: r.nextID, VehicleType: vehicleType, HourlyRate: hourlyRate}
	r.rates[rate.ID] = rate
	return rate
}

func (r *memRateRepo) List(ctx context.Context) ([]models.Rate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rates []models.Rate
	for _, rate := range r.rates {
		rates = append(rates, rate)
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].ID < rates[j].ID })
	return rates, nil
}

func (r *memRateRepo) GetByID(ctx context.Context, id int64) (*models.Rate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rate, ok := r.rates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := rate
	return &copied, nil
}

func (r *memRateRepo) GetByType(ctx context.Context, vehicleType string) (*models.Rate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rate := range r.rates {
		if rate.VehicleType == vehicleType {
			copied := rate
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRateRepo) Create(ctx context.Context, rate *models.Rate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rate.ID = r.nextID
	r.rates[rate.ID] = *rate
	return nil
}

func (r *memRateRepo) Update(ctx context.Context, rate *models.Rate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rates[rate.ID]; !ok {
		return repository.ErrNotFound
	}
	r.rates[rate.ID] = *rate
	return nil
}

func (r *memRateRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rates, id)
	return nil
}

// fakeArtifacts records generated tokens.
type fakeArtifacts struct {
	tokens []string
	err    error
}

func (f *fakeArtifacts) Generate(token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.tokens = append(f.tokens, token)
	return "/static/qrs/" + token + ".png", nil
}

// seqTokens yields tok-1, tok-2, ...
func seqTokens() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("tok-%d", n)
	}
}
