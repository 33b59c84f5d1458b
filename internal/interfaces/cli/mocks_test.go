package cli

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	appMol "github.com/turtacn/chemsim/internal/application/molecule"
	"github.com/turtacn/chemsim/internal/application/reporting"
	domainMol "github.com/turtacn/chemsim/internal/domain/molecule"
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) IntraReport(ctx context.Context, uri string) (*mtypes.SimilarityReport, error) {
	args := m.Called(ctx, uri)
	if r, ok := args.Get(0).(*mtypes.SimilarityReport); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) InterReport(ctx context.Context, queryURI, referenceURI string) (*mtypes.SimilarityReport, error) {
	args := m.Called(ctx, queryURI, referenceURI)
	if r, ok := args.Get(0).(*mtypes.SimilarityReport); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) IntraMatrix(ctx context.Context, uri string) (*domainMol.Matrix, error) {
	args := m.Called(ctx, uri)
	if r, ok := args.Get(0).(*domainMol.Matrix); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Canonicalize(ctx context.Context, uri string, w io.Writer) (*appMol.CanonicalizeResult, error) {
	args := m.Called(ctx, uri, w)
	if r, ok := args.Get(0).(*appMol.CanonicalizeResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) ExportChEMBL(ctx context.Context, ids []string, w io.Writer) (*appMol.ExportResult, error) {
	args := m.Called(ctx, ids, w)
	if r, ok := args.Get(0).(*appMol.ExportResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, report *mtypes.SimilarityReport, format reporting.Format) (string, error) {
	args := m.Called(ctx, report, format)
	return args.String(0), args.Error(1)
}

//Personal.AI order the ending
