package conversation

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/studiofit/gym-assistant-go/internal/errors"
	"github.com/studiofit/gym-assistant-go/internal/redis"
)

// Entry is one turn of a conversation as persisted in the history list.
type Entry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store keeps per-member conversation history and profile fields in Redis.
// History is a capped list; the oldest entries fall off as new ones are
// appended. Both keys expire after a period of inactivity, refreshed on
// every write.
type Store struct {
	client       *redis.Client
	historyLimit int
	historyTTL   time.Duration
	profileTTL   time.Duration
}

func NewStore(client *redis.Client, historyLimit int, historyTTL, profileTTL time.Duration) *Store {
	return &Store{
		client:       client,
		historyLimit: historyLimit,
		historyTTL:   historyTTL,
		profileTTL:   profileTTL,
	}
}

// History returns the retained entries for the member, oldest first.
// A missing key yields an empty slice.
func (s *Store) History(ctx context.Context, phone string) ([]Entry, error) {
	raw, err := s.client.LRange(ctx, redis.HistoryKey(phone), 0, -1).Result()
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			// Skip entries that no longer decode rather than failing the
			// whole read.
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Append adds one entry to the member's history, trims the list to the
// retention limit, and refreshes the key's TTL, all in one round trip.
func (s *Store) Append(ctx context.Context, phone, role, content string) error {
	payload, err := json.Marshal(Entry{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return apperrors.Internal("failed to encode conversation entry")
	}

	key := redis.HistoryKey(phone)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-s.historyLimit), -1)
	pipe.Expire(ctx, key, s.historyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.StoreUnavailable(err)
	}
	return nil
}

// Profile returns the member's stored profile fields. Missing keys yield
// an empty map.
func (s *Store) Profile(ctx context.Context, phone string) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, redis.ProfileKey(phone)).Result()
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	return fields, nil
}

// SetProfile merges the given fields into the member's profile and
// refreshes the key's TTL.
func (s *Store) SetProfile(ctx context.Context, phone string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}

	key := redis.ProfileKey(phone)
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, args...)
	pipe.Expire(ctx, key, s.profileTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.StoreUnavailable(err)
	}
	return nil
}

// Clear drops the member's history and profile.
func (s *Store) Clear(ctx context.Context, phone string) error {
	if err := s.client.Del(ctx, redis.HistoryKey(phone), redis.ProfileKey(phone)).Err(); err != nil {
		return apperrors.StoreUnavailable(err)
	}
	return nil
}
