package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/barbershop-api/pkg/errors"
)

const defaultCacheTTL = 5 * time.Minute

// CacheRepository is the payload store behind CacheService.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheOptions tunes a CacheService.
type CacheOptions struct {
	// Namespace prefixes every key so several deployments can share one Redis.
	Namespace  string
	DefaultTTL time.Duration
	Enabled    bool
}

// CacheService fronts the candidate slot cache. Store failures degrade to misses: availability is
// recomputed from the schedule instead of failing the request.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	logger  *zap.Logger
	opts    CacheOptions
}

// NewCacheService constructs a cache service. A nil repo disables caching.
func NewCacheService(repo CacheRepository, metrics *MetricsService, logger *zap.Logger, opts CacheOptions) *CacheService {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = defaultCacheTTL
	}
	opts.Namespace = strings.TrimSuffix(opts.Namespace, ":")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, logger: logger, opts: opts}
}

// Enabled reports whether reads and writes reach the store.
func (s *CacheService) Enabled() bool {
	return s != nil && s.opts.Enabled && s.repo != nil
}

// Key returns the stored key for a logical key.
func (s *CacheService) Key(key string) string {
	if s == nil || s.opts.Namespace == "" {
		return key
	}
	return s.opts.Namespace + ":" + key
}

// Get loads key into dest and reports whether it was a hit. Misses and store errors both return false.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, s.Key(key), dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	switch {
	case err == nil:
		return true, nil
	case appErrors.Is(err, appErrors.ErrCacheMiss):
		return false, nil
	default:
		s.logger.Warn("availability cache read failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
}

// Set stores value under key. A non-positive ttl uses the default.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.opts.DefaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, s.Key(key), value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("availability cache write failed", zap.String("key", key), zap.Duration("ttl", ttl), zap.Error(err))
	}
	return err
}

// Invalidate drops every entry matching the glob pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, s.Key(pattern)); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	s.logger.Debug("availability cache invalidated", zap.String("pattern", pattern))
	return nil
}
