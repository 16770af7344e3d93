package clinic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xucheng2024/clinic-booking/pkg/logging"
)

// RemoteSource fetches clinic info from the remote visit-records API.
type RemoteSource interface {
	GetClinicInfo(ctx context.Context, clinicID string) (*Info, error)
}

// Store provides redis-cached access to clinic info.
type Store struct {
	redis  *redis.Client
	remote RemoteSource
	ttl    time.Duration
	logger *logging.Logger
}

// NewStore creates a new clinic info store.
func NewStore(redisClient *redis.Client, remote RemoteSource, ttl time.Duration, logger *logging.Logger) *Store {
	if redisClient == nil {
		panic("clinic: redis client required")
	}
	if remote == nil {
		panic("clinic: remote source required")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{redis: redisClient, remote: remote, ttl: ttl, logger: logger}
}

func (s *Store) key(clinicID string) string {
	return fmt.Sprintf("clinic:info:%s", clinicID)
}

// Get retrieves clinic info, preferring the cache and falling back to the
// remote API. A cache write failure is logged, not surfaced.
func (s *Store) Get(ctx context.Context, clinicID string) (*Info, error) {
	data, err := s.redis.Get(ctx, s.key(clinicID)).Bytes()
	if err == nil {
		var info Info
		if err := json.Unmarshal(data, &info); err == nil {
			return &info, nil
		}
		s.logger.Warn("clinic: dropping corrupt cache entry", "clinic_id", clinicID)
		_ = s.redis.Del(ctx, s.key(clinicID)).Err()
	} else if err != redis.Nil {
		s.logger.Warn("clinic: cache read failed", "error", err, "clinic_id", clinicID)
	}

	info, err := s.remote.GetClinicInfo(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("clinic: fetch info: %w", err)
	}

	if data, err := json.Marshal(info); err == nil {
		if err := s.redis.Set(ctx, s.key(clinicID), data, s.ttl).Err(); err != nil {
			s.logger.Warn("clinic: cache write failed", "error", err, "clinic_id", clinicID)
		}
	}

	return info, nil
}

// Invalidate drops the cached entry for a clinic.
func (s *Store) Invalidate(ctx context.Context, clinicID string) error {
	if err := s.redis.Del(ctx, s.key(clinicID)).Err(); err != nil {
		return fmt.Errorf("clinic: invalidate cache: %w", err)
	}
	return nil
}
