// Package session caches the identity tuple so repeated page entries skip
// the remote identity check. The cache is never authoritative for
// authorization.
package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xucheng2024/clinic-booking/pkg/logging"
)

// DefaultTTL is how long a cached login is trusted without re-validation.
const DefaultTTL = 30 * 24 * time.Hour

// Field names mirror the keys the store holds per session.
const (
	fieldUserID         = "user_id"
	fieldUserRowID      = "user_row_id"
	fieldClinicID       = "clinic_id"
	fieldLoginTimestamp = "login_timestamp"
)

// Record is the cached identity tuple.
type Record struct {
	SubjectID string
	RecordID  string
	ClinicID  string
}

// Cache is the redis-backed session store.
type Cache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
	now    func() time.Time
}

// NewCache creates a session cache.
func NewCache(redisClient *redis.Client, ttl time.Duration, logger *logging.Logger) *Cache {
	if redisClient == nil {
		panic("session: redis client required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Cache{redis: redisClient, ttl: ttl, logger: logger, now: time.Now}
}

// WithClock overrides the cache clock. Tests only.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

func (c *Cache) key(sessionID, field string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, field)
}

// Save writes the identity tuple plus the login timestamp (epoch millis,
// string encoded). No store-side expiration: expiry is enforced lazily by
// IsValid so the clinic id can outlive the login.
func (c *Cache) Save(ctx context.Context, sessionID string, rec Record) error {
	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	err := c.redis.MSet(ctx,
		c.key(sessionID, fieldUserID), rec.SubjectID,
		c.key(sessionID, fieldUserRowID), rec.RecordID,
		c.key(sessionID, fieldClinicID), rec.ClinicID,
		c.key(sessionID, fieldLoginTimestamp), ts,
	).Err()
	if err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// Get returns the cached tuple without validating it.
func (c *Cache) Get(ctx context.Context, sessionID string) (*Record, error) {
	vals, err := c.redis.MGet(ctx,
		c.key(sessionID, fieldUserID),
		c.key(sessionID, fieldUserRowID),
		c.key(sessionID, fieldClinicID),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}
	rec := &Record{}
	if s, ok := vals[0].(string); ok {
		rec.SubjectID = s
	}
	if s, ok := vals[1].(string); ok {
		rec.RecordID = s
	}
	if s, ok := vals[2].(string); ok {
		rec.ClinicID = s
	}
	return rec, nil
}

// IsValid reports whether the session can skip the remote identity check:
// all four fields present and the login younger than the TTL. An expired
// session is purged as a side effect; there is no background sweep.
func (c *Cache) IsValid(ctx context.Context, sessionID string) (bool, error) {
	vals, err := c.redis.MGet(ctx,
		c.key(sessionID, fieldUserID),
		c.key(sessionID, fieldUserRowID),
		c.key(sessionID, fieldClinicID),
		c.key(sessionID, fieldLoginTimestamp),
	).Result()
	if err != nil {
		return false, fmt.Errorf("session: validate: %w", err)
	}

	for _, v := range vals {
		if v == nil {
			return false, nil
		}
	}

	tsStr, _ := vals[3].(string)
	millis, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		// Unreadable timestamp is treated the same as an expired one.
		if clearErr := c.Clear(ctx, sessionID); clearErr != nil {
			return false, clearErr
		}
		return false, nil
	}

	age := c.now().Sub(time.UnixMilli(millis))
	if age >= c.ttl {
		if err := c.Clear(ctx, sessionID); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// Clear removes the subject, record and timestamp but deliberately preserves
// the clinic id: a logged-out user on the same clinic link should not have to
// re-enter the clinic identifier.
func (c *Cache) Clear(ctx context.Context, sessionID string) error {
	err := c.redis.Del(ctx,
		c.key(sessionID, fieldUserID),
		c.key(sessionID, fieldUserRowID),
		c.key(sessionID, fieldLoginTimestamp),
	).Err()
	if err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// ClinicID returns the clinic id surviving a cleared session, if any.
func (c *Cache) ClinicID(ctx context.Context, sessionID string) (string, error) {
	val, err := c.redis.Get(ctx, c.key(sessionID, fieldClinicID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: clinic id: %w", err)
	}
	return val, nil
}
