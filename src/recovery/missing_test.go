package recovery

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestMissingTestSuite(t *testing.T) {
	suite.Run(t, new(MissingTestSuite))
}

type MissingTestSuite struct {
	suite.Suite
}

func (s *MissingTestSuite) TestGapsAndTail() {
	missing := missingTokenIds([]int64{0, 1, 2, 5, 6, 7}, 11)
	require.Equal(s.T(), []int64{3, 4, 8, 9, 10}, missing)
}

func (s *MissingTestSuite) TestNothingMissing() {
	require.Empty(s.T(), missingTokenIds([]int64{0, 1, 2}, 3))
}

func (s *MissingTestSuite) TestEmptyDb() {
	require.Equal(s.T(), []int64{0, 1, 2}, missingTokenIds(nil, 3))
}

func (s *MissingTestSuite) TestNothingMinted() {
	require.Empty(s.T(), missingTokenIds(nil, 0))
}

func (s *MissingTestSuite) TestSingleGap() {
	require.Equal(s.T(), []int64{1}, missingTokenIds([]int64{0, 2}, 3))
}
