package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjl0830/gait-aware/internal/gait"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	assert.Equal(t, gait.FillAllNaNZero, cfg.GetFillPolicy())
	assert.Equal(t, gait.NormalizePerSequence, cfg.GetNormalizeStrategy())
	assert.Nil(t, cfg.GetGlobalStats())
	assert.Equal(t, gait.DefaultThresholds(), cfg.GetThresholds())
	assert.Equal(t, 224, cfg.GetSEISize())
	assert.Equal(t, 0.1, cfg.GetGaussianSigma())
	assert.Equal(t, 3.0, cfg.GetLineThickness())
	assert.Equal(t, DefaultLabels, cfg.GetLabels())
	assert.Empty(t, cfg.GetInferenceURL())
}

func TestLoadTuningConfigPartialFile(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{
		"fill_policy": "propagate",
		"joint_thresholds": {"LEFT_KNEE": 0.5},
		"gaussian_sigma": 0.25
	}`)

	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)

	assert.Equal(t, gait.FillAllNaNPropagate, cfg.GetFillPolicy())
	assert.Equal(t, 0.25, cfg.GetGaussianSigma())

	// Overrides merge onto defaults, not replace them.
	thresholds := cfg.GetThresholds()
	assert.Equal(t, 0.5, thresholds[gait.JointLeftKnee])
	assert.Equal(t, gait.DefaultThresholds()[gait.JointRightAnkle], thresholds[gait.JointRightAnkle])

	// Untouched sections keep their defaults.
	assert.Equal(t, 224, cfg.GetSEISize())
}

func TestLoadTuningConfigRejectsBadFiles(t *testing.T) {
	t.Run("wrong extension", func(t *testing.T) {
		path := writeConfig(t, "tuning.yaml", `{}`)
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTuningConfig(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
	t.Run("malformed json", func(t *testing.T) {
		path := writeConfig(t, "tuning.json", `{"fill_policy": `)
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})
}

func TestValidateCrossFieldRules(t *testing.T) {
	strPtr := func(s string) *string { return &s }
	intPtr := func(n int) *int { return &n }
	floatPtr := func(f float64) *float64 { return &f }

	cases := []struct {
		name string
		cfg  TuningConfig
	}{
		{"unknown fill policy", TuningConfig{FillPolicy: strPtr("median")}},
		{"unknown normalize strategy", TuningConfig{NormalizeStrategy: strPtr("minmax")}},
		{"global strategy without stats", TuningConfig{NormalizeStrategy: strPtr("global")}},
		{"global stats wrong length", TuningConfig{
			NormalizeStrategy: strPtr("global"),
			GlobalMean:        make([]float64, 3),
			GlobalStd:         make([]float64, 3),
		}},
		{"unknown joint name", TuningConfig{JointThresholds: map[string]float64{"LEFT_ELBOW": 0.5}}},
		{"non-positive sei size", TuningConfig{SEISize: intPtr(0)}},
		{"negative sigma", TuningConfig{GaussianSigma: floatPtr(-0.1)}},
		{"zero sigma", TuningConfig{GaussianSigma: floatPtr(0)}},
		{"non-positive thickness", TuningConfig{LineThickness: floatPtr(0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.cfg.Validate())
		})
	}
}

func TestGlobalStatsWiring(t *testing.T) {
	mean := make([]float64, gait.NumFeatures)
	std := make([]float64, gait.NumFeatures)
	for i := range mean {
		mean[i] = float64(i)
		std[i] = 2.0
	}
	strategy := string(gait.NormalizeGlobal)
	cfg := TuningConfig{NormalizeStrategy: &strategy, GlobalMean: mean, GlobalStd: std}
	require.NoError(t, cfg.Validate())

	stats := cfg.GetGlobalStats()
	require.NotNil(t, stats)
	assert.Equal(t, 5.0, stats.Mean[5])
	assert.Equal(t, 2.0, stats.Std[15])

	pc := cfg.PipelineConfig()
	assert.Equal(t, gait.NormalizeGlobal, pc.Normalize)
	assert.NotNil(t, pc.GlobalStats)
}

func TestShippedDefaultsFileParses(t *testing.T) {
	cfg, err := LoadTuningConfig(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)

	// The shipped file spells out the built-in defaults explicitly.
	assert.Equal(t, gait.DefaultThresholds(), cfg.GetThresholds())
	assert.Equal(t, DefaultLabels, cfg.GetLabels())
	assert.Equal(t, 224, cfg.GetSEISize())
}
