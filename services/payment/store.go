package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"campstay/models"

	"github.com/go-redis/redis/v8"
)

// Attempt is the payment flow of one booking.
type Attempt struct {
	ID             string               `json:"id"`
	BookingID      string               `json:"bookingId"`
	Source         models.BookingSource `json:"source"`
	UserID         string               `json:"userId"`
	Title          string               `json:"title,omitempty"`
	Method         models.PaymentMethod `json:"method"`
	State          State                `json:"state"`
	CheckIn        models.Date          `json:"checkIn"`
	Guests         int                  `json:"guests"`
	UnitPrice      float64              `json:"unitPrice"`
	AdvisoryAmount float64              `json:"advisoryAmount"`
	Amount         float64              `json:"amount,omitempty"`
	Currency       string               `json:"currency,omitempty"`
	OrderID        string               `json:"orderId,omitempty"`
	PaymentID      string               `json:"paymentId,omitempty"`
	Failures       int                  `json:"failures"`
	LastError      string               `json:"lastError,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// Confirmed reports whether the booking counts as confirmed for messaging.
func (a *Attempt) Confirmed() bool { return a.State.Confirmed() }

// PaymentStatus is the payment status implied by the attempt. It reaches
// paid only through Verified, which requires a server verification.
func (a *Attempt) PaymentStatus() models.PaymentStatus {
	switch a.State {
	case StateVerified:
		return models.PaymentPaid
	case StateNotRequired:
		return models.PaymentUnpaid
	}
	return models.PaymentPending
}

// Retryable reports whether the user may restart the flow.
func (a *Attempt) Retryable() bool { return a.State == StateFailed }

func attemptKey(source models.BookingSource, bookingID string) string {
	return "paymentAttempt:" + string(source) + ":" + bookingID
}

// verifyLockTTL outlives any single verify call.
const verifyLockTTL = 2 * time.Minute

func lockKey(source models.BookingSource, bookingID string) string {
	return "paymentVerifyLock:" + string(source) + ":" + bookingID
}

// RedisAttemptStore keeps attempts as JSON with a TTL.
type RedisAttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAttemptStore(client *redis.Client, ttl time.Duration) *RedisAttemptStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisAttemptStore{client: client, ttl: ttl}
}

func (s *RedisAttemptStore) Get(ctx context.Context, source models.BookingSource, bookingID string) (*Attempt, error) {
	data, err := s.client.Get(ctx, attemptKey(source, bookingID)).Result()
	if err == redis.Nil {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load payment attempt: %w", err)
	}
	var a Attempt
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, fmt.Errorf("failed to parse payment attempt: %w", err)
	}
	return &a, nil
}

func (s *RedisAttemptStore) Save(ctx context.Context, a *Attempt) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal payment attempt: %w", err)
	}
	if err := s.client.Set(ctx, attemptKey(a.Source, a.BookingID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store payment attempt: %w", err)
	}
	return nil
}

func (s *RedisAttemptStore) Lock(ctx context.Context, source models.BookingSource, bookingID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, lockKey(source, bookingID), time.Now().Unix(), verifyLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("lock payment attempt: %w", err)
	}
	return ok, nil
}

func (s *RedisAttemptStore) Unlock(ctx context.Context, source models.BookingSource, bookingID string) error {
	return s.client.Del(ctx, lockKey(source, bookingID)).Err()
}

// MemoryAttemptStore keeps attempts in process memory.
type MemoryAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]Attempt
	locks    map[string]struct{}
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{attempts: make(map[string]Attempt), locks: make(map[string]struct{})}
}

func (s *MemoryAttemptStore) Lock(_ context.Context, source models.BookingSource, bookingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := lockKey(source, bookingID)
	if _, held := s.locks[key]; held {
		return false, nil
	}
	s.locks[key] = struct{}{}
	return true, nil
}

func (s *MemoryAttemptStore) Unlock(_ context.Context, source models.BookingSource, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, lockKey(source, bookingID))
	return nil
}

func (s *MemoryAttemptStore) Get(_ context.Context, source models.BookingSource, bookingID string) (*Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[attemptKey(source, bookingID)]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return &a, nil
}

func (s *MemoryAttemptStore) Save(_ context.Context, a *Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attemptKey(a.Source, a.BookingID)] = *a
	return nil
}
