package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("INTAKE_TEST_INT", "42")
	t.Setenv("INTAKE_TEST_BAD_INT", "forty")
	t.Setenv("INTAKE_TEST_BOOL", "true")
	t.Setenv("INTAKE_TEST_DUR", "3s")
	t.Setenv("INTAKE_TEST_FLOAT", "312.5")

	assert.Equal(t, 42, getEnvAsInt("INTAKE_TEST_INT", 1))
	assert.Equal(t, 1, getEnvAsInt("INTAKE_TEST_BAD_INT", 1))
	assert.True(t, getEnvAsBool("INTAKE_TEST_BOOL", false))
	assert.Equal(t, 3*time.Second, getEnvAsDuration("INTAKE_TEST_DUR", time.Second))
	assert.Equal(t, 312.5, getEnvAsFloat("INTAKE_TEST_FLOAT", 0))
	assert.Equal(t, "fallback", getEnv("INTAKE_TEST_MISSING", "fallback"))
}

func TestLoadConfig_WorkflowFlags(t *testing.T) {
	t.Setenv("SHIPMENT_STRICT_TRANSITIONS", "true")
	t.Setenv("SHIPMENT_DELAY_RESUMABLE", "false")
	t.Setenv("STOCK_TAKE_HISTORY_LIMIT", "5")

	LoadConfig()

	assert.True(t, StrictTransitions)
	assert.False(t, DelayResumable)
	assert.Equal(t, 5, StockTakeHistoryLimit)
	assert.True(t, QCDedupeByPallet)
}

func TestParseGradingConfig(t *testing.T) {
	cfg, err := ParseGradingConfig([]byte("unit_weights:\n  4kg: 4\n  6kg: 6\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"4kg": 4, "6kg": 6}, cfg.UnitWeights)
	assert.Equal(t, []int{1, 2}, cfg.Classes)
	assert.Len(t, cfg.SizeCodes, 11)

	_, err = ParseGradingConfig([]byte("unit_weights:\n  4kg: 0\n"))
	assert.Error(t, err)
}

func TestLoadGradingConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadGradingConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultGradingConfig(), cfg)
}

func TestLoadGradingConfig_RepoFile(t *testing.T) {
	cfg, err := LoadGradingConfig("grading.yaml")
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.UnitWeights["10kg"])
	assert.Contains(t, cfg.Varieties, "Hass")
}
