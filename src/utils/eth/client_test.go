package eth

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

type ClientTestSuite struct {
	suite.Suite
}

func (s *ClientTestSuite) TestGasStrategies() {
	require.Equal(s.T(), int64(150), gasPricePercent("fast"))
	require.Equal(s.T(), int64(120), gasPricePercent("medium"))
	require.Equal(s.T(), int64(100), gasPricePercent("slow"))

	// Unknown strategies fall back to medium
	require.Equal(s.T(), int64(120), gasPricePercent("ludicrous"))
}

func (s *ClientTestSuite) TestApplyPercent() {
	require.Equal(s.T(), int64(150), applyPercent(big.NewInt(100), 150).Int64())
	require.Equal(s.T(), int64(100), applyPercent(big.NewInt(100), 100).Int64())
	require.Equal(s.T(), int64(110), applyPercent(big.NewInt(100), 110).Int64())

	// No precision lost on big values
	price, ok := new(big.Int).SetString("123456789123456789", 10)
	require.True(s.T(), ok)
	expected, ok := new(big.Int).SetString("148148146948148146", 10)
	require.True(s.T(), ok)
	require.Equal(s.T(), 0, applyPercent(price, 120).Cmp(expected))
}

func (s *ClientTestSuite) TestConfirmationStatusString() {
	require.Equal(s.T(), "confirmed", ConfirmationConfirmed.String())
	require.Equal(s.T(), "reverted", ConfirmationReverted.String())
	require.Equal(s.T(), "timed_out", ConfirmationTimedOut.String())
}
