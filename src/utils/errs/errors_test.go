package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestErrorsTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

type ErrorsTestSuite struct {
	suite.Suite
}

func (s *ErrorsTestSuite) TestKinds() {
	require.Equal(s.T(), KindTransient, KindOf(Transient(errors.New("timeout"))))
	require.Equal(s.T(), KindContentPolicy, KindOf(ContentPolicy(errors.New("rejected"))))
	require.Equal(s.T(), KindPermanent, KindOf(Permanent(errors.New("bad request"))))
	require.Equal(s.T(), KindChainConnection, KindOf(ChainConnection(errors.New("rpc down"))))
}

func (s *ErrorsTestSuite) TestUnclassifiedIsPermanent() {
	require.Equal(s.T(), KindPermanent, KindOf(errors.New("anything")))
	require.False(s.T(), IsTransient(errors.New("anything")))
}

func (s *ErrorsTestSuite) TestClassificationSurvivesWrapping() {
	err := fmt.Errorf("calling service: %w", Transient(errors.New("timeout")))
	require.True(s.T(), IsTransient(err))
	require.False(s.T(), IsContentPolicy(err))
}

func (s *ErrorsTestSuite) TestUnwrap() {
	cause := errors.New("timeout")
	require.ErrorIs(s.T(), Transient(cause), cause)
}
