package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mintforge/revealer/src/utils/config"
	"github.com/mintforge/revealer/src/utils/errs"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

type ClientTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *ClientTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
}

func (s *ClientTestSuite) TearDownSuite() {
	s.cancel()
}

func (s *ClientTestSuite) client(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	conf := config.Default().Ai
	conf.Url = server.URL
	return NewClient(&conf), server
}

func (s *ClientTestSuite) TestGenerate() {
	client, server := s.client(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(s.T(), "/v1/images/generations", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"url":"https://images.example.com/1.png"}]}`))
	})
	defer server.Close()

	imageUrl, err := client.Generate(s.ctx, "a red fox")
	require.Nil(s.T(), err)
	require.Equal(s.T(), "https://images.example.com/1.png", imageUrl)
}

func (s *ClientTestSuite) TestEmptyResponseIsPermanent() {
	client, server := s.client(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	})
	defer server.Close()

	_, err := client.Generate(s.ctx, "a red fox")
	require.NotNil(s.T(), err)
	require.Equal(s.T(), errs.KindPermanent, errs.KindOf(err))
}

func (s *ClientTestSuite) TestRateLimitIsTransient() {
	client, server := s.client(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := client.Generate(s.ctx, "a red fox")
	require.True(s.T(), errs.IsTransient(err))
}

func (s *ClientTestSuite) TestServerErrorIsTransient() {
	client, server := s.client(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	_, err := client.Generate(s.ctx, "a red fox")
	require.True(s.T(), errs.IsTransient(err))
}

func (s *ClientTestSuite) TestContentPolicyRejection() {
	client, server := s.client(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"content_policy_violation","message":"rejected"}}`))
	})
	defer server.Close()

	_, err := client.Generate(s.ctx, "something forbidden")
	require.True(s.T(), errs.IsContentPolicy(err))
}

func (s *ClientTestSuite) TestBadRequestIsPermanent() {
	client, server := s.client(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"invalid_request","message":"bad size"}}`))
	})
	defer server.Close()

	_, err := client.Generate(s.ctx, "a red fox")
	require.Equal(s.T(), errs.KindPermanent, errs.KindOf(err))
}

func (s *ClientTestSuite) TestUnreachableServiceIsTransient() {
	conf := config.Default().Ai
	conf.Url = "http://127.0.0.1:1"
	client := NewClient(&conf)

	_, err := client.Generate(s.ctx, "a red fox")
	require.True(s.T(), errs.IsTransient(err))
}
