// Package molecule provides the application-level similarity service.  It
// resolves structure sources into sets, runs the domain similarity
// computations, and handles report caching and metrics around them.
package molecule

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	domainMol "github.com/turtacn/chemsim/internal/domain/molecule"
	"github.com/turtacn/chemsim/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/chemsim/internal/infrastructure/database/redis"
	"github.com/turtacn/chemsim/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/chemsim/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/chemsim/pkg/errors"
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

// Service defines the similarity operations offered to the CLI.
type Service interface {
	// IntraReport pairs every molecule of the source with its most similar
	// other molecule.
	IntraReport(ctx context.Context, uri string) (*mtypes.SimilarityReport, error)

	// InterReport pairs every molecule of the query source with its most
	// similar molecule in the reference source.
	InterReport(ctx context.Context, queryURI, referenceURI string) (*mtypes.SimilarityReport, error)

	// IntraMatrix returns the full similarity matrix of one source.
	IntraMatrix(ctx context.Context, uri string) (*domainMol.Matrix, error)

	// Canonicalize writes "<canonical> <name>" lines for every structure of
	// the source that could be parsed.
	Canonicalize(ctx context.Context, uri string, w io.Writer) (*CanonicalizeResult, error)

	// ExportChEMBL writes "<structure> <chembl id>" lines for the given ids.
	ExportChEMBL(ctx context.Context, ids []string, w io.Writer) (*ExportResult, error)
}

// CanonicalizeResult counts the lines written and the structures skipped.
type CanonicalizeResult struct {
	Written  int
	Skipped  int
	Failures []domainMol.AddFailure
}

// ExportResult counts the structures written and lists ids the mirror does
// not know.
type ExportResult struct {
	Written int
	Missing []string
}

// Dependencies wires the service.  Cache, ChEMBL and Metrics are optional.
type Dependencies struct {
	Toolkit *domainMol.ChemToolkit
	Sets    *SetCache
	Cache   redis.ReportCache
	ChEMBL  repositories.StructureRepository
	Metrics *prom.AppMetrics
	Workers int
	Logger  logging.Logger

	// Clock and NewRunID are replaced in tests.
	Clock    func() time.Time
	NewRunID func() string
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	toolkit  *domainMol.ChemToolkit
	sets     *SetCache
	cache    redis.ReportCache
	chembl   repositories.StructureRepository
	metrics  *prom.AppMetrics
	workers  int
	logger   logging.Logger
	clock    func() time.Time
	newRunID func() string
}

// NewService creates a new similarity application service.
func NewService(deps Dependencies) (Service, error) {
	if deps.Toolkit == nil || deps.Sets == nil {
		return nil, errors.InvalidParam("toolkit and set cache are required")
	}
	s := &serviceImpl{
		toolkit:  deps.Toolkit,
		sets:     deps.Sets,
		cache:    deps.Cache,
		chembl:   deps.ChEMBL,
		metrics:  deps.Metrics,
		workers:  deps.Workers,
		logger:   deps.Logger,
		clock:    deps.Clock,
		newRunID: deps.NewRunID,
	}
	if s.workers < 1 {
		s.workers = 1
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	if s.metrics == nil {
		s.metrics = prom.NewAppMetrics(prom.NewNoopCollector())
	}
	if s.clock == nil {
		s.clock = func() time.Time { return time.Now().UTC() }
	}
	if s.newRunID == nil {
		s.newRunID = uuid.NewString
	}
	return s, nil
}

func (s *serviceImpl) IntraReport(ctx context.Context, uri string) (*mtypes.SimilarityReport, error) {
	start := time.Now()
	loaded, err := s.sets.Get(ctx, uri)
	if err != nil {
		return nil, err
	}
	n := loaded.Set.Len()

	report, err := s.cached(ctx, s.digest(mtypes.ModeIntra, loaded),
		func(ctx context.Context) (*mtypes.SimilarityReport, error) {
			matches, err := domainMol.IntraSimilarities(ctx, loaded.Set, domainMol.WithWorkers(s.workers))
			if err != nil {
				return nil, err
			}
			report := s.newReport(mtypes.ModeIntra, matches, loaded)
			report.QueryURI = uri
			return report, nil
		})
	prom.RecordRun(s.metrics, string(mtypes.ModeIntra), n*(n-1), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	logging.LogOperationDuration(s.logger, "intra similarity report", start,
		logging.String("uri", uri), logging.Int("molecules", n))
	return report, nil
}

func (s *serviceImpl) InterReport(ctx context.Context, queryURI, referenceURI string) (*mtypes.SimilarityReport, error) {
	start := time.Now()
	query, err := s.sets.Get(ctx, queryURI)
	if err != nil {
		return nil, err
	}
	reference, err := s.sets.Get(ctx, referenceURI)
	switch {
	case errors.IsNotFound(err):
		// Every query is still reported, paired with nothing.
		s.logger.Warn("reference source not found, matching against an empty set",
			logging.String("reference", referenceURI), logging.Err(err))
		reference = s.sets.Empty(referenceURI)
	case err != nil:
		return nil, err
	}

	report, err := s.cached(ctx, s.digest(mtypes.ModeInter, query, reference),
		func(ctx context.Context) (*mtypes.SimilarityReport, error) {
			matches, err := domainMol.InterSimilarities(ctx, query.Set, reference.Set, domainMol.WithWorkers(s.workers))
			if err != nil {
				return nil, err
			}
			report := s.newReport(mtypes.ModeInter, matches, query, reference)
			report.QueryURI = queryURI
			report.ReferenceURI = referenceURI
			return report, nil
		})
	prom.RecordRun(s.metrics, string(mtypes.ModeInter), query.Set.Len()*reference.Set.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	logging.LogOperationDuration(s.logger, "inter similarity report", start,
		logging.String("query", queryURI),
		logging.String("reference", referenceURI),
		logging.Int("queries", query.Set.Len()),
		logging.Int("references", reference.Set.Len()))
	return report, nil
}

func (s *serviceImpl) IntraMatrix(ctx context.Context, uri string) (*domainMol.Matrix, error) {
	start := time.Now()
	loaded, err := s.sets.Get(ctx, uri)
	if err != nil {
		return nil, err
	}
	m, err := domainMol.IntraSimilarityMatrix(ctx, loaded.Set, domainMol.WithWorkers(s.workers))
	n := loaded.Set.Len()
	prom.RecordRun(s.metrics, "matrix", n*(n-1)/2, time.Since(start), err)
	return m, err
}

func (s *serviceImpl) Canonicalize(ctx context.Context, uri string, w io.Writer) (*CanonicalizeResult, error) {
	loaded, err := s.sets.Get(ctx, uri)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, p := range loaded.Set.AllPairs() {
		sb.WriteString(p.Structure)
		sb.WriteByte(' ')
		sb.WriteString(p.Name)
		sb.WriteByte('\n')
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to write canonical structures")
	}

	return &CanonicalizeResult{
		Written:  loaded.Set.Len(),
		Skipped:  len(loaded.Failures),
		Failures: loaded.Failures,
	}, nil
}

func (s *serviceImpl) ExportChEMBL(ctx context.Context, ids []string, w io.Writer) (*ExportResult, error) {
	if s.chembl == nil {
		return nil, ErrSourceNotConfigured.WithDetail("chembl")
	}
	entries, missing, err := s.chembl.FindStructures(ctx, ids)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.Structure)
		sb.WriteByte(' ')
		sb.WriteString(e.Name)
		sb.WriteByte('\n')
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to write ChEMBL structures")
	}
	if len(missing) > 0 {
		s.logger.Warn("ChEMBL ids not found", logging.Any("ids", missing))
	}
	return &ExportResult{Written: len(entries), Missing: missing}, nil
}

// cached serves the report from the report cache when one is configured.
func (s *serviceImpl) cached(ctx context.Context, digest string,
	compute func(ctx context.Context) (*mtypes.SimilarityReport, error)) (*mtypes.SimilarityReport, error) {

	if s.cache == nil {
		return compute(ctx)
	}
	report, hit, err := s.cache.GetOrCompute(ctx, digest, compute)
	if err != nil {
		return nil, err
	}
	prom.RecordCacheAccess(s.metrics, "report", hit)
	if hit {
		s.logger.Info("report served from cache", logging.String("digest", digest), logging.String("run_id", report.RunID))
	}
	return report, nil
}

func (s *serviceImpl) newReport(mode mtypes.ReportMode, matches []domainMol.BestMatch, sources ...*LoadedSet) *mtypes.SimilarityReport {
	report := &mtypes.SimilarityReport{
		RunID:       s.newRunID(),
		Mode:        mode,
		Fingerprint: s.toolkit.FingerprintOptions().Type,
		Metric:      s.toolkit.Metric(),
		GeneratedAt: s.clock(),
		Rows:        make([]mtypes.SimilarityRow, len(matches)),
	}
	for i, m := range matches {
		report.Rows[i] = m.Row()
	}
	for _, src := range sources {
		for _, f := range src.Failures {
			report.Failures = append(report.Failures, mtypes.FailureDTO{
				Source:    src.URI,
				Structure: f.Structure,
				Name:      f.Name,
				Reason:    f.Err.Error(),
			})
		}
	}
	return report
}

// digest identifies a report by everything its content depends on: the
// mode, the fingerprint and metric settings, and the molecules and rejected
// inputs of each set in order.  Source locations are not part of it.
func (s *serviceImpl) digest(mode mtypes.ReportMode, sets ...*LoadedSet) string {
	h := sha256.New()
	fp := s.toolkit.FingerprintOptions()
	fmt.Fprintf(h, "%s|%s|%d|%d|%d|%d|%d|%s\n",
		mode, fp.Type, fp.Bits, fp.MinPath, fp.MaxPath, fp.BitsPerHash, fp.Radius, s.toolkit.Metric())
	for _, ls := range sets {
		io.WriteString(h, "set\n")
		for _, p := range ls.Set.AllPairs() {
			fmt.Fprintf(h, "%s\t%s\n", p.Structure, p.Name)
		}
		for _, f := range ls.Failures {
			fmt.Fprintf(h, "!%s\t%s\n", f.Structure, f.Name)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

//Personal.AI order the ending
