package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"consultly/models"

	"github.com/go-redis/redis/v8"
)

// DefaultDraftRetention is how long a saved draft stays resumable.
const DefaultDraftRetention = 24 * time.Hour

// DraftStore owns the single saved-draft slot per client key. A record is
// written only by the exit flow's save-and-exit path, read once when the
// wizard starts, and removed on completion, discard, or found-but-expired at
// read time. No other code path may write it.
type DraftStore interface {
	// Save serializes {draft, step, savedAt: now} into the client's slot.
	// Callers must treat a failure as non-fatal and fall back to discard.
	Save(ctx context.Context, clientKey string, draft models.BookingDraft, step Step) error
	// Load reads the slot. Absent, expired, or corrupt slots all yield
	// (nil, nil); expired and corrupt data is cleared as a side effect and
	// never surfaced.
	Load(ctx context.Context, clientKey string) (*models.PersistedDraftRecord, error)
	// Clear unconditionally removes the slot; idempotent.
	Clear(ctx context.Context, clientKey string) error
	// Exists is a cheap probe used for "resume available" affordances
	// without deserializing the record.
	Exists(ctx context.Context, clientKey string) (bool, error)
}

// RedisDraftStore implements DraftStore on Redis. Retention is enforced twice:
// by the key TTL and by a SavedAt check at read time, so the contract holds
// even if a record outlives its TTL (replication lag, restored dumps).
type RedisDraftStore struct {
	client    *redis.Client
	retention time.Duration
	now       func() time.Time
}

// NewRedisDraftStore creates a draft store with the given retention window.
func NewRedisDraftStore(client *redis.Client, retention time.Duration) *RedisDraftStore {
	if retention <= 0 {
		retention = DefaultDraftRetention
	}
	return &RedisDraftStore{client: client, retention: retention, now: time.Now}
}

const draftKeyPrefix = "wizard:draft:"

func (r *RedisDraftStore) Save(ctx context.Context, clientKey string, draft models.BookingDraft, step Step) error {
	record := models.PersistedDraftRecord{
		Draft:   draft,
		Step:    step.String(),
		SavedAt: r.now(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal draft record: %w", err)
	}
	if err := r.client.Set(ctx, draftKeyPrefix+clientKey, data, r.retention).Err(); err != nil {
		return fmt.Errorf("failed to store draft record: %w", err)
	}
	return nil
}

func (r *RedisDraftStore) Load(ctx context.Context, clientKey string) (*models.PersistedDraftRecord, error) {
	data, err := r.client.Get(ctx, draftKeyPrefix+clientKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read draft record: %w", err)
	}

	record, ok := DecodeDraftRecord([]byte(data), r.now(), r.retention)
	if !ok {
		// Expired or corrupt: clear the slot so the next Load is a no-op.
		r.client.Del(ctx, draftKeyPrefix+clientKey)
		return nil, nil
	}
	return record, nil
}

func (r *RedisDraftStore) Clear(ctx context.Context, clientKey string) error {
	if err := r.client.Del(ctx, draftKeyPrefix+clientKey).Err(); err != nil {
		return fmt.Errorf("failed to clear draft record: %w", err)
	}
	return nil
}

func (r *RedisDraftStore) Exists(ctx context.Context, clientKey string) (bool, error) {
	n, err := r.client.Exists(ctx, draftKeyPrefix+clientKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to probe draft record: %w", err)
	}
	return n > 0, nil
}

// DecodeDraftRecord parses a stored draft record and applies the retention
// policy. It returns false for corrupt data, an unknown step name, or a record
// older than the retention window.
func DecodeDraftRecord(data []byte, now time.Time, retention time.Duration) (*models.PersistedDraftRecord, bool) {
	var record models.PersistedDraftRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false
	}
	if _, err := ParseStep(record.Step); err != nil {
		return nil, false
	}
	if record.SavedAt.IsZero() || now.Sub(record.SavedAt) >= retention {
		return nil, false
	}
	return &record, true
}
