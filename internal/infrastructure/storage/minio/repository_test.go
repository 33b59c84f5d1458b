package minio

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/chemsim/internal/config"
	"github.com/turtacn/chemsim/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/chemsim/pkg/errors"
)

type RepositoryTestSuite struct {
	suite.Suite
	mockAPI *MockMinIOAPI
	repo    ObjectRepository
}

func (s *RepositoryTestSuite) SetupTest() {
	s.mockAPI = new(MockMinIOAPI)
	log := logging.NewNopLogger()
	client := NewMinIOClientWithAPI(s.mockAPI, config.MinIOConfig{Bucket: "default"}, log)
	s.repo = NewMinIORepository(client, log)
}

func (s *RepositoryTestSuite) TestOpen_Success() {
	s.mockAPI.On("StatObject", mock.Anything, "data", "sets/a.smi", mock.Anything).
		Return(minio.ObjectInfo{Key: "sets/a.smi"}, nil)
	s.mockAPI.On("GetObject", mock.Anything, "data", "sets/a.smi", mock.Anything).
		Return(io.NopCloser(strings.NewReader("CCO ethanol\n")), nil)

	rc, err := s.repo.Open(context.Background(), "data", "sets/a.smi")
	s.Require().NoError(err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	s.Require().NoError(err)
	s.Equal("CCO ethanol\n", string(body))
}

func (s *RepositoryTestSuite) TestOpen_NotFound() {
	s.mockAPI.On("StatObject", mock.Anything, "data", "missing.smi", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	_, err := s.repo.Open(context.Background(), "data", "missing.smi")
	s.True(pkgerrors.IsNotFound(err))
	s.mockAPI.AssertNotCalled(s.T(), "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *RepositoryTestSuite) TestOpen_StorageError() {
	s.mockAPI.On("StatObject", mock.Anything, "data", "a.smi", mock.Anything).
		Return(minio.ObjectInfo{}, errors.New("connection refused"))

	_, err := s.repo.Open(context.Background(), "data", "a.smi")
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeStorageError))
}

func (s *RepositoryTestSuite) TestOpen_InvalidRequest() {
	_, err := s.repo.Open(context.Background(), "", "a.smi")
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeValidation))
}

func (s *RepositoryTestSuite) TestUpload_DefaultBucket() {
	s.mockAPI.On("PutObject", mock.Anything, "default", "reports/r.json", mock.Anything, int64(2),
		minio.PutObjectOptions{ContentType: "application/json"}).
		Return(minio.UploadInfo{Bucket: "default", Key: "reports/r.json", ETag: "etag", Size: 2}, nil)

	res, err := s.repo.Upload(context.Background(), &UploadRequest{
		ObjectKey:   "reports/r.json",
		Data:        []byte("{}"),
		ContentType: "application/json",
	})
	s.Require().NoError(err)
	s.Equal("default", res.Bucket)
	s.Equal("etag", res.ETag)
	s.Equal("s3://default/reports/r.json", res.URI())
}

func (s *RepositoryTestSuite) TestUpload_Failure() {
	s.mockAPI.On("PutObject", mock.Anything, "b", "k", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("quota exceeded"))

	_, err := s.repo.Upload(context.Background(), &UploadRequest{Bucket: "b", ObjectKey: "k", Data: []byte("x")})
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeStorageError))
}

func (s *RepositoryTestSuite) TestExists() {
	s.mockAPI.On("StatObject", mock.Anything, "b", "yes", mock.Anything).Return(minio.ObjectInfo{Key: "yes"}, nil)
	s.mockAPI.On("StatObject", mock.Anything, "b", "no", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	ok, err := s.repo.Exists(context.Background(), "b", "yes")
	s.NoError(err)
	s.True(ok)

	ok, err = s.repo.Exists(context.Background(), "b", "no")
	s.NoError(err)
	s.False(ok)
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func TestParseObjectURI(t *testing.T) {
	bucket, key, err := ParseObjectURI("s3://data/sets/a.smi")
	require.NoError(t, err)
	assert.Equal(t, "data", bucket)
	assert.Equal(t, "sets/a.smi", key)

	for _, bad := range []string{"data/a.smi", "s3://", "s3://data", "s3://data/", "s3:///a.smi"} {
		_, _, err := ParseObjectURI(bad)
		assert.Error(t, err, bad)
	}

	assert.True(t, IsObjectURI("s3://x/y"))
	assert.False(t, IsObjectURI("/tmp/x.smi"))
}

//Personal.AI order the ending
