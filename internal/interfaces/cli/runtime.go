package cli

import (
	"io"
	"sync"

	appMol "github.com/turtacn/chemsim/internal/application/molecule"
	"github.com/turtacn/chemsim/internal/application/reporting"
	"github.com/turtacn/chemsim/internal/config"
	domainMol "github.com/turtacn/chemsim/internal/domain/molecule"
	"github.com/turtacn/chemsim/internal/infrastructure/database/postgres"
	"github.com/turtacn/chemsim/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/chemsim/internal/infrastructure/database/redis"
	"github.com/turtacn/chemsim/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/chemsim/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/chemsim/internal/infrastructure/storage/minio"
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

// Runtime holds the services a command runs against and the resources that
// are released when the command finishes.
type Runtime struct {
	Service   appMol.Service
	Publisher reporting.Publisher // nil when object storage is disabled
	Metrics   *prom.AppMetrics

	collector    prom.MetricsCollector
	textfilePath string
	closers      []func() error
	logger       logging.Logger
	once         sync.Once
}

// RuntimeFactory builds the Runtime for one command invocation.
type RuntimeFactory func(cfg *config.Config, logger logging.Logger, stdin io.Reader) (*Runtime, error)

// NewRuntime wires the similarity service from configuration.  Object
// storage and the ChEMBL mirror are connected only when enabled, and a
// failure to reach either is an error.  An unreachable report cache is
// logged and the run continues uncached.
func NewRuntime(cfg *config.Config, logger logging.Logger, stdin io.Reader) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	toolkit, err := domainMol.NewToolkit(fingerprintOptions(cfg.Fingerprint), mtypes.SimilarityMetric(cfg.Similarity.Metric))
	if err != nil {
		return nil, err
	}

	rt := &Runtime{collector: prom.NewNoopCollector(), logger: logger}
	if cfg.Metrics.Enabled {
		collector, err := prom.NewMetricsCollector(prom.CollectorConfig{Namespace: cfg.Metrics.Namespace}, logger)
		if err != nil {
			return nil, err
		}
		rt.collector = collector
		rt.textfilePath = cfg.Metrics.TextfilePath
	}
	rt.Metrics = prom.NewAppMetrics(rt.collector)

	var loaderOpts []appMol.LoaderOption
	if stdin != nil {
		loaderOpts = append(loaderOpts, appMol.WithStdin(stdin))
	}

	if cfg.Storage.MinIO.Enabled {
		client, err := minio.NewMinIOClient(cfg.Storage.MinIO, logger)
		if err != nil {
			rt.Close()
			return nil, err
		}
		objects := minio.NewMinIORepository(client, logger)
		loaderOpts = append(loaderOpts, appMol.WithObjectStore(objects))
		rt.Publisher = reporting.NewPublisher(objects, client.Bucket(), client.ReportKey(""), rt.Metrics, logger)
	}

	var chembl repositories.StructureRepository
	if cfg.ChEMBL.Enabled {
		conn, err := postgres.NewConnection(cfg.ChEMBL, logger)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, conn.Close)
		chembl = repositories.NewChEMBLRepo(conn, logger)
		loaderOpts = append(loaderOpts, appMol.WithChEMBL(chembl))
	}

	var cache redis.ReportCache
	if cfg.Cache.Redis.Enabled {
		client, err := redis.NewClient(cfg.Cache.Redis, logger)
		if err != nil {
			logger.Warn("report cache unavailable, continuing without it", logging.Err(err))
			prom.RecordError(rt.Metrics, "cache", "connect")
		} else {
			rt.closers = append(rt.closers, client.Close)
			cache = redis.NewReportCache(client, logger,
				redis.WithPrefix(cfg.Cache.Redis.KeyPrefix),
				redis.WithTTL(cfg.Cache.Redis.TTL))
		}
	}

	sets := appMol.NewSetCache(appMol.NewLoader(logger, loaderOpts...), toolkit, rt.Metrics, logger)
	svc, err := appMol.NewService(appMol.Dependencies{
		Toolkit: toolkit,
		Sets:    sets,
		Cache:   cache,
		ChEMBL:  chembl,
		Metrics: rt.Metrics,
		Workers: cfg.Similarity.Workers,
		Logger:  logger,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Service = svc
	return rt, nil
}

func fingerprintOptions(cfg config.FingerprintConfig) domainMol.FingerprintOptions {
	return domainMol.FingerprintOptions{
		Type:        mtypes.FingerprintType(cfg.Type),
		Bits:        cfg.Bits,
		MinPath:     cfg.MinPath,
		MaxPath:     cfg.MaxPath,
		BitsPerHash: cfg.BitsPerHash,
		Radius:      cfg.Radius,
	}
}

// Close flushes metrics to the textfile, if one is configured, and closes
// backend connections in reverse order.  Only the first call has an effect.
func (r *Runtime) Close() error {
	var firstErr error
	r.once.Do(func() {
		if r.textfilePath != "" && r.collector != nil {
			if err := r.collector.WriteToTextfile(r.textfilePath); err != nil {
				firstErr = err
			}
		}
		for i := len(r.closers) - 1; i >= 0; i-- {
			if err := r.closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if firstErr != nil && r.logger != nil {
			r.logger.Warn("runtime shutdown incomplete", logging.Err(firstErr))
		}
	})
	return firstErr
}

//Personal.AI order the ending
