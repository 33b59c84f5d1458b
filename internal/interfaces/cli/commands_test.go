package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	appMol "github.com/turtacn/chemsim/internal/application/molecule"
	"github.com/turtacn/chemsim/internal/application/reporting"
	"github.com/turtacn/chemsim/internal/config"
	domainMol "github.com/turtacn/chemsim/internal/domain/molecule"
	"github.com/turtacn/chemsim/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/chemsim/internal/infrastructure/monitoring/prometheus"
	pkgerrors "github.com/turtacn/chemsim/pkg/errors"
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

type CommandTestSuite struct {
	suite.Suite
	svc        *MockService
	publisher  reporting.Publisher
	configPath string
	gotConfig  *config.Config
	factoryErr error
}

func (s *CommandTestSuite) SetupTest() {
	s.svc = new(MockService)
	s.publisher = nil
	s.gotConfig = nil
	s.factoryErr = nil
	s.configPath = filepath.Join(s.T().TempDir(), "chemsim.yaml")
	s.Require().NoError(os.WriteFile(s.configPath, []byte("log:\n  level: error\nsimilarity:\n  workers: 3\n"), 0o644))
}

func (s *CommandTestSuite) TearDownTest() {
	s.svc.AssertExpectations(s.T())
}

func (s *CommandTestSuite) factory(cfg *config.Config, _ logging.Logger, _ io.Reader) (*Runtime, error) {
	s.gotConfig = cfg
	if s.factoryErr != nil {
		return nil, s.factoryErr
	}
	return &Runtime{
		Service:   s.svc,
		Publisher: s.publisher,
		Metrics:   prom.NewAppMetrics(prom.NewNoopCollector()),
	}, nil
}

func (s *CommandTestSuite) run(args ...string) (string, string, error) {
	root := NewRootCommand(s.factory)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(NormalizeLegacyArgs(args), "--config", s.configPath))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func sampleReport() *mtypes.SimilarityReport {
	match, score := "benzene", 0.5
	return &mtypes.SimilarityReport{
		RunID:       "run-1",
		Mode:        mtypes.ModeIntra,
		Fingerprint: mtypes.FPTopological,
		Metric:      mtypes.MetricTanimoto,
		QueryURI:    "a.smi",
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Rows: []mtypes.SimilarityRow{
			{Query: "phenol", Match: &match, Score: &score},
			{Query: "water"},
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// similarities
// ─────────────────────────────────────────────────────────────────────────────

func (s *CommandTestSuite) TestSimilarities_Intra() {
	s.svc.On("IntraReport", mock.Anything, "a.smi").Return(sampleReport(), nil)

	out, _, err := s.run("similarities", "-f1", "a.smi")
	s.Require().NoError(err)
	s.Equal("mol1 mol2 similarity\nphenol benzene 0.5\nwater None None\n", out)
	s.Equal(3, s.gotConfig.Similarity.Workers)
}

func (s *CommandTestSuite) TestSimilarities_InterToFile() {
	s.svc.On("InterReport", mock.Anything, "a.smi", "b.smi").Return(sampleReport(), nil)
	outPath := filepath.Join(s.T().TempDir(), "report.txt")

	out, _, err := s.run("similarities", "-f1=a.smi", "--file2", "b.smi", "-o", outPath)
	s.Require().NoError(err)
	s.Empty(out)

	data, err := os.ReadFile(outPath)
	s.Require().NoError(err)
	s.Equal("mol1 mol2 similarity\nphenol benzene 0.5\nwater None None\n", string(data))
}

func (s *CommandTestSuite) TestSimilarities_JSON() {
	s.svc.On("IntraReport", mock.Anything, "a.smi").Return(sampleReport(), nil)

	out, _, err := s.run("similarities", "--file1", "a.smi", "--format", "json")
	s.Require().NoError(err)
	s.Contains(out, `"query": "phenol"`)
	s.Contains(out, `"match": null`)
}

func (s *CommandTestSuite) TestSimilarities_ReportsRejectedStructures() {
	report := sampleReport()
	report.Failures = []mtypes.FailureDTO{
		{Source: "a.smi", Structure: "n1cccc1", Name: "bad", Reason: "can't kekulize aromatic system"},
	}
	s.svc.On("IntraReport", mock.Anything, "a.smi").Return(report, nil)

	out, errOut, err := s.run("similarities", "-f1", "a.smi")
	s.Require().NoError(err)
	s.NotContains(out, "n1cccc1")
	s.Equal("skipped n1cccc1 bad in a.smi: can't kekulize aromatic system\n", errOut)
}

func (s *CommandTestSuite) TestSimilarities_UnknownFormat() {
	_, _, err := s.run("similarities", "-f1", "a.smi", "--format", "xml")
	s.True(pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))
}

func (s *CommandTestSuite) TestSimilarities_RequiresFile1() {
	_, _, err := s.run("similarities")
	s.Require().Error(err)
	s.Contains(err.Error(), "file1")
}

func (s *CommandTestSuite) TestSimilarities_ServiceError() {
	s.svc.On("IntraReport", mock.Anything, "missing.smi").
		Return(nil, pkgerrors.NotFound("structure file not found").WithDetail("missing.smi"))

	_, _, err := s.run("similarities", "-f1", "missing.smi")
	s.True(pkgerrors.IsNotFound(err))
}

func (s *CommandTestSuite) TestSimilarities_PublishNotConfigured() {
	_, _, err := s.run("similarities", "-f1", "a.smi", "--publish")
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeConfigInvalid))
}

func (s *CommandTestSuite) TestSimilarities_Publish() {
	report := sampleReport()
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, report, reporting.FormatText).Return("s3://chemsim/reports/run-1.txt", nil)
	s.publisher = pub
	s.svc.On("IntraReport", mock.Anything, "a.smi").Return(report, nil)

	out, errOut, err := s.run("similarities", "-f1", "a.smi", "--publish")
	s.Require().NoError(err)
	s.Contains(out, "phenol benzene 0.5")
	s.Contains(errOut, "published s3://chemsim/reports/run-1.txt")
	pub.AssertExpectations(s.T())
}

func (s *CommandTestSuite) TestFactoryError() {
	s.factoryErr = pkgerrors.New(pkgerrors.ErrCodeDatabaseError, "database connection failed")

	_, _, err := s.run("similarities", "-f1", "a.smi")
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeDatabaseError))
}

// ─────────────────────────────────────────────────────────────────────────────
// matrix / canonicalize / chembl
// ─────────────────────────────────────────────────────────────────────────────

func (s *CommandTestSuite) TestMatrix() {
	m := &domainMol.Matrix{
		RowNames: []string{"a", "b"},
		ColNames: []string{"a", "b"},
		Values:   [][]float64{{1, 0.25}, {0.25, 1}},
	}
	s.svc.On("IntraMatrix", mock.Anything, "set.smi").Return(m, nil)

	out, _, err := s.run("matrix", "-f", "set.smi")
	s.Require().NoError(err)
	s.Equal("a b\na 1.0 0.25\nb 0.25 1.0\n", out)
}

func (s *CommandTestSuite) TestCanonicalize() {
	s.svc.On("Canonicalize", mock.Anything, "set.smi", mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(2).(io.Writer), "CCO ethanol\n")
		}).
		Return(&appMol.CanonicalizeResult{
			Written: 1,
			Skipped: 1,
			Failures: []domainMol.AddFailure{
				{Structure: "C1CC", Name: "broken", Err: errors.New("unclosed ring")},
			},
		}, nil)

	out, errOut, err := s.run("canonicalize", "-f", "set.smi")
	s.Require().NoError(err)
	s.Equal("CCO ethanol\n", out)
	s.Contains(errOut, "skipped C1CC broken in set.smi: unclosed ring\n")
	s.Contains(errOut, "1 written, 1 skipped")
}

func (s *CommandTestSuite) TestChEMBL_IDsAndFile() {
	idsFile := filepath.Join(s.T().TempDir(), "ids.txt")
	s.Require().NoError(os.WriteFile(idsFile, []byte("CHEMBL3\nCHEMBL4, CHEMBL5\n"), 0o644))

	want := []string{"CHEMBL25", "chembl2", "CHEMBL3", "CHEMBL4", "CHEMBL5"}
	s.svc.On("ExportChEMBL", mock.Anything, want, mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(2).(io.Writer), "CC(=O)Oc1ccccc1C(=O)O CHEMBL25\n")
		}).
		Return(&appMol.ExportResult{Written: 1, Missing: []string{"CHEMBL5"}}, nil)

	out, errOut, err := s.run("chembl", "--ids", "CHEMBL25,chembl2", "--ids-file", idsFile)
	s.Require().NoError(err)
	s.Equal("CC(=O)Oc1ccccc1C(=O)O CHEMBL25\n", out)
	s.Contains(errOut, "not found: CHEMBL5")
}

func (s *CommandTestSuite) TestChEMBL_NoIDs() {
	_, _, err := s.run("chembl")
	s.True(pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))
}

func (s *CommandTestSuite) TestChEMBL_MissingIDsFile() {
	_, _, err := s.run("chembl", "--ids-file", filepath.Join(s.T().TempDir(), "nope.txt"))
	s.True(pkgerrors.IsNotFound(err))
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandTestSuite))
}

//Personal.AI order the ending
