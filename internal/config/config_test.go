package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"figstats/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FIGSTATS_PORT", "9090")
	t.Setenv("FIGSTATS_LAMBDA_MIN", "-1")
	t.Setenv("FIGSTATS_LAMBDA_MAX", "3")
	t.Setenv("FIGSTATS_COMBINE", "fisher")
	t.Setenv("FIGSTATS_FAMILY", "yeojohnson")
	t.Setenv("FIGSTATS_QQ_LINE", "robust")
	t.Setenv("FIGSTATS_WORKERS", "4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, -1.0, cfg.LambdaMin)
	assert.Equal(t, 3.0, cfg.LambdaMax)
	assert.Equal(t, "fisher", cfg.Combine)
	assert.Equal(t, "yeojohnson", cfg.Family)
	assert.Equal(t, "robust", cfg.QQLine)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"FIGSTATS_COMBINE":       "median",
		"FIGSTATS_BOXCOX_START":  "0",
		"FIGSTATS_QQ_CONFIDENCE": "1",
		"FIGSTATS_LAMBDA_MIN":    "5",
		"FIGSTATS_LOG_FORMAT":    "xml",
		"FIGSTATS_WORKERS":       "many",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.LogFormat = "console"
	cfg.LogLevel = "debug"
	logger, err = cfg.NewLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	cfg.LogLevel = "loud"
	_, err = cfg.NewLogger()
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}
