package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mintforge/revealer/src/utils/config"
	"github.com/mintforge/revealer/src/utils/errs"
	"github.com/mintforge/revealer/src/utils/model"
	monitor_pipeline "github.com/mintforge/revealer/src/utils/monitoring/pipeline"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeUploaderStore struct {
	uploaded map[int64][2]string
	failed   map[int64]string
	attempts map[int64]int
}

func newFakeUploaderStore() *fakeUploaderStore {
	return &fakeUploaderStore{
		uploaded: make(map[int64][2]string),
		failed:   make(map[int64]string),
		attempts: make(map[int64]int),
	}
}

func (self *fakeUploaderStore) ClaimUploading(ctx context.Context, limit int) ([]model.Token, error) {
	return nil, nil
}

func (self *fakeUploaderStore) FailExhaustedUploads(ctx context.Context) (int64, error) {
	return 0, nil
}

func (self *fakeUploaderStore) BumpUploadAttempts(ctx context.Context, tokenId int64) error {
	self.attempts[tokenId]++
	return nil
}

func (self *fakeUploaderStore) TokenUploaded(ctx context.Context, tokenId int64, imageCid, metadataCid string) error {
	self.uploaded[tokenId] = [2]string{imageCid, metadataCid}
	return nil
}

func (self *fakeUploaderStore) TokenFailed(ctx context.Context, tokenId int64, message string) error {
	self.failed[tokenId] = message
	return nil
}

type fakeStorage struct {
	imageData []byte
	jsonDocs  map[string]interface{}
	bytesErr  error
	jsonErr   error
}

func (self *fakeStorage) UploadBytes(ctx context.Context, name string, data []byte) (string, error) {
	if self.bytesErr != nil {
		return "", self.bytesErr
	}
	self.imageData = data
	return "QmImage", nil
}

func (self *fakeStorage) UploadJSON(ctx context.Context, name string, content interface{}) (string, error) {
	if self.jsonErr != nil {
		return "", self.jsonErr
	}
	if self.jsonDocs == nil {
		self.jsonDocs = make(map[string]interface{})
	}
	self.jsonDocs[name] = content
	return "QmMeta", nil
}

func TestUploaderTestSuite(t *testing.T) {
	suite.Run(t, new(UploaderTestSuite))
}

type UploaderTestSuite struct {
	suite.Suite
	ctx    context.Context
	config *config.Config

	store   *fakeUploaderStore
	storage *fakeStorage
	monitor *monitor_pipeline.Monitor
}

func (s *UploaderTestSuite) SetupSuite() {
	s.ctx = context.Background()
}

func (s *UploaderTestSuite) SetupTest() {
	s.config = config.Default()
	s.store = newFakeUploaderStore()
	s.storage = &fakeStorage{}
	s.monitor = monitor_pipeline.NewMonitor(s.config).WithMaxHistorySize(1)
}

func (s *UploaderTestSuite) uploader() *Uploader {
	return NewUploader(s.config).
		WithStore(s.store).
		WithStorage(s.storage).
		WithMonitor(s.monitor)
}

func uploadingToken(imageUrl string, attempts int) *model.Token {
	return &model.Token{
		TokenId:        7,
		Status:         model.TokenStatusUploading,
		ImageUrl:       sql.NullString{String: imageUrl, Valid: imageUrl != ""},
		UploadAttempts: attempts,
	}
}

func (s *UploaderTestSuite) TestUploadedTokenAdvances() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image bytes"))
	}))
	defer server.Close()

	s.uploader().upload(s.ctx, uploadingToken(server.URL+"/7.png", 0))

	require.Equal(s.T(), []byte("image bytes"), s.storage.imageData)
	require.Equal(s.T(), [2]string{"QmImage", "QmMeta"}, s.store.uploaded[7])
	require.Empty(s.T(), s.store.failed)
	require.Equal(s.T(), 1, s.store.attempts[7])

	metadata, ok := s.storage.jsonDocs["token-7.json"].(TokenMetadata)
	require.True(s.T(), ok)
	require.Equal(s.T(), "Token #7", metadata.Name)
	require.Equal(s.T(), "ipfs://QmImage", metadata.Image)
}

func (s *UploaderTestSuite) TestExpiredImageUrlIsPermanent() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s.uploader().upload(s.ctx, uploadingToken(server.URL+"/7.png", 0))

	require.Empty(s.T(), s.store.uploaded)
	require.Contains(s.T(), s.store.failed, int64(7))
	require.Equal(s.T(), 1, s.store.attempts[7])
}

func (s *UploaderTestSuite) TestTransientStorageFailureOnlyBumpsAttempts() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image bytes"))
	}))
	defer server.Close()

	s.storage.bytesErr = errs.Transient(errors.New("pinning overloaded"))

	s.uploader().upload(s.ctx, uploadingToken(server.URL+"/7.png", 0))

	require.Empty(s.T(), s.store.uploaded)
	require.Empty(s.T(), s.store.failed)
	require.Equal(s.T(), 1, s.store.attempts[7])
}

func (s *UploaderTestSuite) TestTransientFailureExhaustsAttempts() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image bytes"))
	}))
	defer server.Close()

	s.storage.jsonErr = errs.Transient(errors.New("pinning overloaded"))

	s.uploader().upload(s.ctx, uploadingToken(server.URL+"/7.png", 2))

	require.Equal(s.T(), 1, s.store.attempts[7])
	require.Contains(s.T(), s.store.failed, int64(7))
}

func (s *UploaderTestSuite) TestMissingImageUrlIsPermanent() {
	s.uploader().upload(s.ctx, uploadingToken("", 0))

	require.Empty(s.T(), s.store.uploaded)
	require.Contains(s.T(), s.store.failed, int64(7))
}
