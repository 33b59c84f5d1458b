package reporting

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemsim/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsim/internal/infrastructure/storage/minio"
	pkgerrors "github.com/turtacn/chemsim/pkg/errors"
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

// mockObjects only implements Upload; the embedded interface is nil.
type mockObjects struct {
	mock.Mock
	minio.ObjectRepository
}

func (m *mockObjects) Upload(ctx context.Context, req *minio.UploadRequest) (*minio.UploadResult, error) {
	args := m.Called(ctx, req)
	if res, ok := args.Get(0).(*minio.UploadResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func newReport() *mtypes.SimilarityReport {
	match, score := "benzene", 0.5
	return &mtypes.SimilarityReport{
		RunID:       "0b7e",
		Mode:        mtypes.ModeInter,
		Fingerprint: mtypes.FPTopological,
		Metric:      mtypes.MetricTanimoto,
		GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Rows: []mtypes.SimilarityRow{
			{Query: "phenol", Match: &match, Score: &score},
			{Query: "water"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatText, "text": FormatText, "TXT": FormatText, " json ": FormatJSON}
	for in, want := range cases {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("csv")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, newReport(), FormatText))
	assert.Equal(t, "mol1 mol2 similarity\nphenol benzene 0.5\nwater None None\n", buf.String())
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, newReport(), FormatJSON))
	assert.Contains(t, buf.String(), `"query": "water",`)
	assert.Contains(t, buf.String(), `"match": null,`)
	assert.Contains(t, buf.String(), `"score": 0.5`)
}

func TestRender_Invalid(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, nil, FormatText))
	assert.Error(t, Render(&buf, newReport(), Format("xml")))
}

func TestPublish(t *testing.T) {
	objects := new(mockObjects)
	objects.On("Upload", mock.Anything, mock.MatchedBy(func(req *minio.UploadRequest) bool {
		return req.Bucket == "chemsim" &&
			req.ObjectKey == "reports/0b7e.json" &&
			req.ContentType == "application/json" &&
			req.Metadata["mode"] == "inter" &&
			bytes.Contains(req.Data, []byte(`"run_id": "0b7e"`))
	})).Return(&minio.UploadResult{Bucket: "chemsim", ObjectKey: "reports/0b7e.json"}, nil)

	p := NewPublisher(objects, "chemsim", "reports/", nil, logging.NewNopLogger())
	uri, err := p.Publish(context.Background(), newReport(), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "s3://chemsim/reports/0b7e.json", uri)
	objects.AssertExpectations(t)
}

func TestPublish_RequiresRunID(t *testing.T) {
	p := NewPublisher(new(mockObjects), "chemsim", "reports/", nil, nil)
	r := newReport()
	r.RunID = ""
	_, err := p.Publish(context.Background(), r, FormatText)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))
}

func TestPublish_UploadError(t *testing.T) {
	objects := new(mockObjects)
	objects.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("denied"))

	p := NewPublisher(objects, "chemsim", "reports/", nil, nil)
	_, err := p.Publish(context.Background(), newReport(), FormatText)
	assert.Error(t, err)
}

//Personal.AI order the ending
