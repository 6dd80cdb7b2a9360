package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"consultly/models"

	"github.com/go-redis/redis/v8"
)

// AvailabilitySnapshot records the slot set most recently fetched for one
// consultant/date pair. Slot selection is validated only against this
// snapshot; it is discarded whenever the consultant or date changes.
type AvailabilitySnapshot struct {
	ConsultantID string    `json:"consultantId"`
	Date         string    `json:"date"`
	Slots        []string  `json:"slots"`
	FetchedAt    time.Time `json:"fetchedAt"`
}

// Session is the server-held state of one wizard instance. It replaces the
// original in-browser singleton with an explicit context object, so any number
// of wizards can run side by side without interfering.
type Session struct {
	SessionID    string                `json:"sessionId"`
	ClientKey    string                `json:"clientKey"`
	Draft        models.BookingDraft   `json:"draft"`
	Step         Step                  `json:"step"`
	Resumed      bool                  `json:"resumed"`
	Availability *AvailabilitySnapshot `json:"availability,omitempty"`
	ExitState    ExitState             `json:"exitState"`
	// BillingSynced marks that the billing update call succeeded for the
	// current BookingID; payment submission is refused before it.
	BillingSynced bool      `json:"billingSynced"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Confirmation builds the terminal-step payload. It is nil until the payment
// call succeeded and the session reached the confirmation step.
func (s *Session) Confirmation() *models.BookingConfirmation {
	if s.Step != StepConfirmation || s.Draft.Payment == nil || s.Draft.Consultant == nil {
		return nil
	}
	return &models.BookingConfirmation{
		BookingID:     s.Draft.BookingID,
		ConsultantID:  s.Draft.Consultant.ID,
		Date:          s.Draft.SelectedDate,
		Slot:          s.Draft.SelectedSlot,
		PaymentMethod: s.Draft.Payment.Method,
		Confirmation:  s.Draft.Payment.Confirmation,
		CreatedAt:     s.UpdatedAt,
	}
}

// SlotsFor returns the snapshot slot set if it belongs to the given
// consultant/date pair.
func (s *Session) SlotsFor(consultantID, date string) ([]string, bool) {
	if s.Availability == nil {
		return nil, false
	}
	if s.Availability.ConsultantID != consultantID || s.Availability.Date != date {
		return nil, false
	}
	return s.Availability.Slots, true
}

// SessionStore persists active wizard sessions between HTTP calls. Get returns
// (nil, nil) when the session is absent or expired; corrupt session data is
// treated the same way and cleared, never surfaced half-parsed.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Put(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, sessionID string) error
	// TryLock acquires the per-session in-flight lock guarding the booking
	// calls; it returns false when another call already holds it.
	TryLock(ctx context.Context, sessionID string) (bool, error)
	Unlock(ctx context.Context, sessionID string) error
}

// RedisSessionStore implements SessionStore on Redis. Sessions carry a sliding
// TTL: every Put refreshes it, so an active wizard never expires mid-flow.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a session store with the given sliding TTL.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

const (
	sessionKeyPrefix = "wizard:session:"
	lockKeyPrefix    = "wizard:inflight:"
	// lockTTL bounds how long a hung booking call keeps the session locked.
	lockTTL = 2 * time.Minute
)

func (r *RedisSessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read wizard session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		// Never surface a half-parsed session.
		r.client.Del(ctx, sessionKeyPrefix+sessionID)
		return nil, nil
	}
	return &sess, nil
}

func (r *RedisSessionStore) Put(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal wizard session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+sess.SessionID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store wizard session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete wizard session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) TryLock(ctx context.Context, sessionID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKeyPrefix+sessionID, "1", lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire session lock: %w", err)
	}
	return ok, nil
}

func (r *RedisSessionStore) Unlock(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, lockKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to release session lock: %w", err)
	}
	return nil
}
