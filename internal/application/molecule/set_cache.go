package molecule

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domainMol "github.com/turtacn/chemsim/internal/domain/molecule"
	"github.com/turtacn/chemsim/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/chemsim/internal/infrastructure/monitoring/prometheus"
)

// LoadedSet is a set together with the inputs that were rejected while
// building it.
type LoadedSet struct {
	URI      string
	Set      *domainMol.Set
	Failures []domainMol.AddFailure
}

// SetCache loads every source at most once for the lifetime of the cache,
// normally one process run.  Cached sets are shared and must not be
// modified.  Failed loads are not cached.
type SetCache struct {
	loader  Loader
	newSet  func() *domainMol.Set
	metrics *prom.AppMetrics
	logger  logging.Logger

	mu    sync.RWMutex
	sets  map[string]*LoadedSet
	group singleflight.Group
}

// NewSetCache builds a cache whose sets use toolkit.  metrics may be nil.
func NewSetCache(loader Loader, toolkit domainMol.Toolkit, metrics *prom.AppMetrics, logger logging.Logger) *SetCache {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SetCache{
		loader: loader,
		newSet: func() *domainMol.Set {
			return domainMol.NewSet(domainMol.WithToolkit(toolkit), domainMol.WithLogger(logger))
		},
		metrics: metrics,
		logger:  logger,
		sets:    make(map[string]*LoadedSet),
	}
}

// Get returns the set loaded from uri, loading it on first use.
func (c *SetCache) Get(ctx context.Context, uri string) (*LoadedSet, error) {
	c.mu.RLock()
	ls, ok := c.sets[uri]
	c.mu.RUnlock()
	if ok {
		c.logger.Debug("set cache hit", logging.String("uri", uri))
		if c.metrics != nil {
			prom.RecordCacheAccess(c.metrics, "set", true)
		}
		return ls, nil
	}

	v, err, _ := c.group.Do(uri, func() (interface{}, error) {
		c.mu.RLock()
		ls, ok := c.sets[uri]
		c.mu.RUnlock()
		if ok {
			return ls, nil
		}
		if c.metrics != nil {
			prom.RecordCacheAccess(c.metrics, "set", false)
		}

		start := time.Now()
		set := c.newSet()
		failures, err := c.loader.Load(ctx, uri, set)
		if err != nil {
			return nil, err
		}
		ls = &LoadedSet{URI: uri, Set: set, Failures: failures}
		if c.metrics != nil {
			prom.RecordLoad(c.metrics, uri, "set", set.Len(), len(failures), time.Since(start))
		}

		c.mu.Lock()
		c.sets[uri] = ls
		c.mu.Unlock()
		return ls, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*LoadedSet), nil
}

// Empty returns an empty set standing in for uri.  It is not cached.
func (c *SetCache) Empty(uri string) *LoadedSet {
	return &LoadedSet{URI: uri, Set: c.newSet()}
}

// Len is the number of sets held.
func (c *SetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sets)
}

//Personal.AI order the ending
