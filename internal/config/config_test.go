package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EQUISCAN_DATA_DIR", t.TempDir())
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.15, cfg.TargetReturn)
	assert.Equal(t, 30, cfg.HorizonDays)
	assert.Equal(t, 50000.0, cfg.MaxInvestmentAmount)
	assert.Equal(t, 0.15, cfg.RiskThreshold)
	assert.Equal(t, 10, cfg.ScreeningIterations)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_PercentConversion(t *testing.T) {
	t.Setenv("EQUISCAN_DATA_DIR", t.TempDir())
	t.Setenv("DEV_MODE", "true")
	t.Setenv("MIN_EXPECTED_RETURN", "20")
	t.Setenv("RISK_THRESHOLD", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.20, cfg.TargetReturn, 1e-9)
	assert.InDelta(t, 0.10, cfg.RiskThreshold, 1e-9)
}

func TestValidate_MissingCredentials(t *testing.T) {
	cfg := &Config{
		TargetReturn:        0.15,
		HorizonDays:         30,
		MaxInvestmentAmount: 50000,
		RiskThreshold:       0.15,
		ScreeningIterations: 10,
		DevMode:             false,
	}

	err := cfg.Validate()
	assert.Error(t, err, "missing credentials outside dev mode must fail fast")
}

func TestValidate_ZeroTargetReturn(t *testing.T) {
	cfg := &Config{
		GrowwAPIKey:         "key",
		GrowwAPISecret:      "secret",
		TargetReturn:        0,
		HorizonDays:         30,
		MaxInvestmentAmount: 50000,
		ScreeningIterations: 10,
	}

	err := cfg.Validate()
	assert.Error(t, err, "undefined target return is unsafe and must abort")
}
