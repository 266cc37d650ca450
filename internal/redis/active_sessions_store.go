package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActiveSession stored in redis for quick access on the preview path.
type ActiveSession struct {
	Token       string    `json:"token"`
	Plate       string    `json:"plate"`
	VehicleType string    `json:"vehicle_type"`
	EntryTime   time.Time `json:"entry_time"`
}

// Store manages the active session cache.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns redis-backed store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(token string) string {
	return fmt.Sprintf("parking:active:%s", token)
}

// Save caches an open session. Also used to refresh the entry after an
// entry-time edit.
func (s *Store) Save(ctx context.Context, session ActiveSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(session.Token), data, s.ttl).Err()
}

// Get returns the cached session for a token.
func (s *Store) Get(ctx context.Context, token string) (*ActiveSession, error) {
	result, err := s.client.Get(ctx, s.key(token)).Result()
	if err != nil {
		return nil, err
	}
	var session ActiveSession
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes the cached session once it closes.
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}
