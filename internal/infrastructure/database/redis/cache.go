package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/chemsim/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsim/pkg/errors"
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

// ReportCache stores similarity reports keyed by a digest of everything that
// determines their content.
type ReportCache interface {
	Get(ctx context.Context, digest string) (*mtypes.SimilarityReport, error)
	Set(ctx context.Context, digest string, report *mtypes.SimilarityReport) error
	Delete(ctx context.Context, digest string) error

	// GetOrCompute returns the cached report for digest, or runs compute,
	// stores its result and returns it.  Concurrent callers for the same
	// digest share one compute.  hit reports whether the cache answered.
	GetOrCompute(ctx context.Context, digest string,
		compute func(ctx context.Context) (*mtypes.SimilarityReport, error)) (report *mtypes.SimilarityReport, hit bool, err error)
}

type reportCache struct {
	client       *Client
	logger       logging.Logger
	prefix       string
	ttl          time.Duration
	singleflight singleflight.Group
}

type CacheOption func(*reportCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *reportCache) { c.prefix = prefix }
}

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *reportCache) { c.ttl = ttl }
}

func NewReportCache(client *Client, log logging.Logger, opts ...CacheOption) ReportCache {
	c := &reportCache{
		client: client,
		logger: log,
		prefix: "chemsim:",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *reportCache) key(digest string) string {
	return c.prefix + "report:" + digest
}

func (c *reportCache) Get(ctx context.Context, digest string) (*mtypes.SimilarityReport, error) {
	data, err := c.client.Get(ctx, c.key(digest)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	var report mtypes.SimilarityReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, ErrSerializationFailed.WithCause(err)
	}
	return &report, nil
}

func (c *reportCache) Set(ctx context.Context, digest string, report *mtypes.SimilarityReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if err := c.client.Set(ctx, c.key(digest), string(data), c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set cache")
	}
	return nil
}

func (c *reportCache) Delete(ctx context.Context, digest string) error {
	if err := c.client.Del(ctx, c.key(digest)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete from cache")
	}
	return nil
}

func (c *reportCache) GetOrCompute(ctx context.Context, digest string,
	compute func(ctx context.Context) (*mtypes.SimilarityReport, error)) (*mtypes.SimilarityReport, bool, error) {

	report, err := c.Get(ctx, digest)
	if err == nil {
		c.logger.Debug("report cache hit", logging.String("digest", digest))
		return report, true, nil
	}
	if !errors.IsCode(err, errors.ErrCodeNotFound) {
		// An unreachable cache degrades to computing every time.
		c.logger.Warn("report cache read failed", logging.String("digest", digest), logging.Err(err))
	}

	v, err, _ := c.singleflight.Do(digest, func() (interface{}, error) {
		r, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Set(ctx, digest, r); err != nil {
			c.logger.Warn("report cache write failed", logging.String("digest", digest), logging.Err(err))
		}
		return r, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*mtypes.SimilarityReport), false, nil
}

//Personal.AI order the ending
