package minio

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/chemsim/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsim/pkg/errors"
)

// URIScheme prefixes object storage locations given on the command line.
const URIScheme = "s3://"

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrUploadFailed   = errors.New(errors.ErrCodeStorageError, "upload failed")
	ErrDownloadFailed = errors.New(errors.ErrCodeStorageError, "download failed")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "invalid request")
)

// ObjectRepository reads structure files from and writes reports to object
// storage.
type ObjectRepository interface {
	// Open returns a reader over the object.  The caller closes it.
	Open(ctx context.Context, bucket, objectKey string) (io.ReadCloser, error)
	Exists(ctx context.Context, bucket, objectKey string) (bool, error)
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)
}

type UploadRequest struct {
	Bucket      string
	ObjectKey   string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type UploadResult struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	UploadedAt time.Time
}

// URI renders the result location in s3:// form.
func (r *UploadResult) URI() string {
	return URIScheme + r.Bucket + "/" + r.ObjectKey
}

// IsObjectURI reports whether s names an object rather than a local path.
func IsObjectURI(s string) bool {
	return strings.HasPrefix(s, URIScheme)
}

// ParseObjectURI splits "s3://bucket/key" into its bucket and key.
func ParseObjectURI(uri string) (bucket, key string, err error) {
	if !IsObjectURI(uri) {
		return "", "", ErrInvalidRequest.WithDetail("uri must start with " + URIScheme + ": " + uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, URIScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidRequest.WithDetail("uri must be in format 's3://bucket/key': " + uri)
	}
	return parts[0], parts[1], nil
}

type minioRepository struct {
	client *MinIOClient
	logger logging.Logger
}

func NewMinIORepository(client *MinIOClient, log logging.Logger) ObjectRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &minioRepository{client: client, logger: log}
}

func (r *minioRepository) Open(ctx context.Context, bucket, objectKey string) (io.ReadCloser, error) {
	if bucket == "" || objectKey == "" {
		return nil, ErrInvalidRequest
	}
	// GetObject is lazy and only fails on first read, so stat first to
	// report a missing key up front.
	if _, err := r.client.GetClient().StatObject(ctx, bucket, objectKey, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil, ErrObjectNotFound.WithDetail(bucket + "/" + objectKey)
		}
		return nil, ErrDownloadFailed.WithCause(err).WithDetail(bucket + "/" + objectKey)
	}
	obj, err := r.client.GetClient().GetObject(ctx, bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, ErrDownloadFailed.WithCause(err).WithDetail(bucket + "/" + objectKey)
	}
	r.logger.Debug("object opened", logging.String("bucket", bucket), logging.String("key", objectKey))
	return obj, nil
}

func (r *minioRepository) Exists(ctx context.Context, bucket, objectKey string) (bool, error) {
	_, err := r.client.GetClient().StatObject(ctx, bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeStorageError, "stat failed")
	}
	return true, nil
}

func (r *minioRepository) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if req == nil || req.ObjectKey == "" {
		return nil, ErrInvalidRequest
	}
	bucket := req.Bucket
	if bucket == "" {
		bucket = r.client.Bucket()
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: req.Metadata,
	}
	info, err := r.client.GetClient().PutObject(ctx, bucket, req.ObjectKey, bytes.NewReader(req.Data), int64(len(req.Data)), opts)
	if err != nil {
		return nil, ErrUploadFailed.WithCause(err).WithDetail(bucket + "/" + req.ObjectKey)
	}

	r.logger.Info("object uploaded",
		logging.String("bucket", bucket),
		logging.String("key", req.ObjectKey),
		logging.Int64("size", info.Size))

	return &UploadResult{
		Bucket:     bucket,
		ObjectKey:  req.ObjectKey,
		ETag:       info.ETag,
		Size:       info.Size,
		UploadedAt: time.Now().UTC(),
	}, nil
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket"
}

//Personal.AI order the ending
