package reporting

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/turtacn/chemsim/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/chemsim/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/chemsim/internal/infrastructure/storage/minio"
	"github.com/turtacn/chemsim/pkg/errors"
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

// ============================================================================
// Formats
// ============================================================================

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts "text" (also "txt") and "json", case-insensitively.
// The empty string selects text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", errors.InvalidParam("unsupported report format").WithDetail("format=" + s)
	}
}

// Extension is the object-key suffix for the format.
func (f Format) Extension() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".txt"
}

// ContentType is the MIME type a published report is stored with.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// Render writes report to w in the given format.
func Render(w io.Writer, report *mtypes.SimilarityReport, format Format) error {
	if report == nil {
		return errors.InvalidParam("report is nil")
	}
	var err error
	switch format {
	case FormatJSON:
		err = report.WriteJSON(w)
	case FormatText, "":
		err = report.WriteText(w)
	default:
		return errors.InvalidParam("unsupported report format").WithDetail("format=" + string(format))
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to render report")
	}
	return nil
}

// ============================================================================
// Publisher
// ============================================================================

// Publisher uploads rendered reports to object storage.
type Publisher interface {
	// Publish stores the report under <prefix><run id><ext> and returns its
	// s3:// location.
	Publish(ctx context.Context, report *mtypes.SimilarityReport, format Format) (string, error)
}

type objectPublisher struct {
	objects minio.ObjectRepository
	bucket  string
	prefix  string
	metrics *prom.AppMetrics
	logger  logging.Logger
}

// NewPublisher builds a Publisher writing into bucket under prefix.  metrics
// may be nil.
func NewPublisher(objects minio.ObjectRepository, bucket, prefix string, metrics *prom.AppMetrics, logger logging.Logger) Publisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &objectPublisher{
		objects: objects,
		bucket:  bucket,
		prefix:  prefix,
		metrics: metrics,
		logger:  logger,
	}
}

func (p *objectPublisher) Publish(ctx context.Context, report *mtypes.SimilarityReport, format Format) (string, error) {
	if report == nil || report.RunID == "" {
		return "", errors.InvalidParam("report must carry a run id to be published")
	}

	var buf bytes.Buffer
	if err := Render(&buf, report, format); err != nil {
		return "", err
	}

	res, err := p.objects.Upload(ctx, &minio.UploadRequest{
		Bucket:      p.bucket,
		ObjectKey:   p.prefix + report.RunID + format.Extension(),
		Data:        buf.Bytes(),
		ContentType: format.ContentType(),
		Metadata: map[string]string{
			"run-id": report.RunID,
			"mode":   string(report.Mode),
		},
	})
	if err != nil {
		if p.metrics != nil {
			prom.RecordError(p.metrics, "publisher", "upload")
		}
		return "", err
	}
	if p.metrics != nil {
		prom.RecordPublish(p.metrics, string(format))
	}

	p.logger.Info("report published", logging.String("run_id", report.RunID), logging.String("uri", res.URI()))
	return res.URI(), nil
}

//Personal.AI order the ending
