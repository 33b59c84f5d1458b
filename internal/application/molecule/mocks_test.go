package molecule

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainMol "github.com/turtacn/chemsim/internal/domain/molecule"
	"github.com/turtacn/chemsim/internal/infrastructure/storage/minio"
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

type MockObjectRepository struct {
	mock.Mock
}

func (m *MockObjectRepository) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, key)
	if rc, ok := args.Get(0).(io.ReadCloser); ok {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockObjectRepository) Exists(ctx context.Context, bucket, key string) (bool, error) {
	args := m.Called(ctx, bucket, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectRepository) Upload(ctx context.Context, req *minio.UploadRequest) (*minio.UploadResult, error) {
	args := m.Called(ctx, req)
	if res, ok := args.Get(0).(*minio.UploadResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockStructureRepository struct {
	mock.Mock
}

func (m *MockStructureRepository) FindStructures(ctx context.Context, ids []string) ([]domainMol.Entry, []string, error) {
	args := m.Called(ctx, ids)
	var entries []domainMol.Entry
	if e, ok := args.Get(0).([]domainMol.Entry); ok {
		entries = e
	}
	var missing []string
	if ms, ok := args.Get(1).([]string); ok {
		missing = ms
	}
	return entries, missing, args.Error(2)
}

// fakeReportCache is an in-memory ReportCache.
type fakeReportCache struct {
	mu      sync.Mutex
	reports map[string]*mtypes.SimilarityReport
	gets    int
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{reports: make(map[string]*mtypes.SimilarityReport)}
}

func (c *fakeReportCache) Get(_ context.Context, digest string) (*mtypes.SimilarityReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reports[digest], nil
}

func (c *fakeReportCache) Set(_ context.Context, digest string, r *mtypes.SimilarityReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[digest] = r
	return nil
}

func (c *fakeReportCache) Delete(_ context.Context, digest string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.reports, digest)
	return nil
}

func (c *fakeReportCache) GetOrCompute(ctx context.Context, digest string,
	compute func(ctx context.Context) (*mtypes.SimilarityReport, error)) (*mtypes.SimilarityReport, bool, error) {
	c.mu.Lock()
	c.gets++
	r, ok := c.reports[digest]
	c.mu.Unlock()
	if ok {
		return r, true, nil
	}
	r, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(ctx, digest, r)
	return r, false, nil
}

// countingLoader wraps a Loader and counts Load calls.
type countingLoader struct {
	Loader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) Load(ctx context.Context, uri string, set *domainMol.Set) ([]domainMol.AddFailure, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.Loader.Load(ctx, uri, set)
}

func writeSMI(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	writeAt(t, path, content)
	return path
}

func writeAt(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

//Personal.AI order the ending
