package molecule

import (
	"context"
	"io"
	"os"
	"strings"

	domainMol "github.com/turtacn/chemsim/internal/domain/molecule"
	"github.com/turtacn/chemsim/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/chemsim/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsim/internal/infrastructure/storage/minio"
	"github.com/turtacn/chemsim/pkg/errors"
)

// Source locations understood by the loader:
//
//	-                     standard input
//	s3://bucket/key       object storage
//	chembl:ID[,ID...]     local ChEMBL mirror
//	anything else         local file path
const (
	StdinSource  = "-"
	ChEMBLPrefix = "chembl:"
)

// ErrSourceNotConfigured is returned for s3:// or chembl: sources when the
// matching backend was not configured.
var ErrSourceNotConfigured = errors.New(errors.ErrCodeConfigInvalid, "source backend is not configured")

// Loader fills a set from a source location.
type Loader interface {
	Load(ctx context.Context, uri string, set *domainMol.Set) ([]domainMol.AddFailure, error)
}

type sourceLoader struct {
	objects minio.ObjectRepository
	chembl  repositories.StructureRepository
	stdin   io.Reader
	logger  logging.Logger
}

// LoaderOption configures optional backends of the loader.
type LoaderOption func(*sourceLoader)

func WithObjectStore(objects minio.ObjectRepository) LoaderOption {
	return func(l *sourceLoader) { l.objects = objects }
}

func WithChEMBL(repo repositories.StructureRepository) LoaderOption {
	return func(l *sourceLoader) { l.chembl = repo }
}

func WithStdin(r io.Reader) LoaderOption {
	return func(l *sourceLoader) { l.stdin = r }
}

func NewLoader(logger logging.Logger, opts ...LoaderOption) Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	l := &sourceLoader{stdin: os.Stdin, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *sourceLoader) Load(ctx context.Context, uri string, set *domainMol.Set) ([]domainMol.AddFailure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case uri == StdinSource:
		return set.AddFromReader(l.stdin)
	case minio.IsObjectURI(uri):
		return l.loadObject(ctx, uri, set)
	case strings.HasPrefix(uri, ChEMBLPrefix):
		return l.loadChEMBL(ctx, uri, set)
	default:
		return set.AddFromFile(uri)
	}
}

func (l *sourceLoader) loadObject(ctx context.Context, uri string, set *domainMol.Set) ([]domainMol.AddFailure, error) {
	if l.objects == nil {
		return nil, ErrSourceNotConfigured.WithDetail("uri=" + uri)
	}
	bucket, key, err := minio.ParseObjectURI(uri)
	if err != nil {
		return nil, err
	}
	rc, err := l.objects.Open(ctx, bucket, key)
	if err != nil {
		l.logger.Error("structure object unavailable", logging.String("uri", uri), logging.Err(err))
		return nil, err
	}
	defer rc.Close()

	failures, err := set.AddFromReader(rc)
	if err != nil {
		return failures, errors.Wrap(err, errors.CodeUnknown, "failed to read structure object").WithDetail("uri=" + uri)
	}
	l.logger.Info("structure object loaded",
		logging.String("uri", uri),
		logging.Int("molecules", set.Len()),
		logging.Int("failures", len(failures)))
	return failures, nil
}

func (l *sourceLoader) loadChEMBL(ctx context.Context, uri string, set *domainMol.Set) ([]domainMol.AddFailure, error) {
	if l.chembl == nil {
		return nil, ErrSourceNotConfigured.WithDetail("uri=" + uri)
	}
	ids := strings.Split(strings.TrimPrefix(uri, ChEMBLPrefix), ",")
	entries, missing, err := l.chembl.FindStructures(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		l.logger.Warn("ChEMBL ids not found", logging.Any("ids", missing))
	}
	return set.Add(entries...), nil
}

//Personal.AI order the ending
