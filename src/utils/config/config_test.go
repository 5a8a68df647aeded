package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

type ConfigTestSuite struct {
	suite.Suite
	config *Config
}

func (s *ConfigTestSuite) SetupSuite() {
	s.config = Default()
}

func (s *ConfigTestSuite) TestDatabaseDefaults() {
	require.Equal(s.T(), uint16(5432), s.config.Database.Port)
	require.Equal(s.T(), "revealer", s.config.Database.Name)
}

func (s *ConfigTestSuite) TestGeneratorDefaults() {
	require.Equal(s.T(), time.Second, s.config.Generator.PollInterval)
	require.Equal(s.T(), 10, s.config.Generator.BatchSize)
	require.Equal(s.T(), 5, s.config.Generator.NumWorkers)
	require.Equal(s.T(), 3, s.config.Generator.MaxAttempts)
	require.Equal(s.T(), 30*time.Second, s.config.Generator.RetryAfter)
	require.NotEmpty(s.T(), s.config.Generator.FallbackPrompt)
}

func (s *ConfigTestSuite) TestRevealerDefaults() {
	require.Equal(s.T(), 50, s.config.Revealer.MaxBatchTokens)
	require.Equal(s.T(), 5*time.Second, s.config.Revealer.BatchWait)
	require.Equal(s.T(), 500*time.Millisecond, s.config.Revealer.FillInterval)
	require.Equal(s.T(), 2*time.Minute, s.config.Revealer.TransactionTimeout)
}

func (s *ConfigTestSuite) TestContractDefaults() {
	require.Equal(s.T(), "medium", s.config.Contract.GasStrategy)
	require.Equal(s.T(), int64(10), s.config.Contract.GasBufferPercent)
	require.Equal(s.T(), 3, s.config.Contract.RetryMaxAttempts)
}

func (s *ConfigTestSuite) TestLoadWithoutFile() {
	config, err := Load("")
	require.Nil(s.T(), err)
	require.NotNil(s.T(), config)
	require.Equal(s.T(), s.config.Generator.BatchSize, config.Generator.BatchSize)
}
