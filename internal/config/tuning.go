// Package config loads the pipeline tuning file. The schema matches the
// /api/params endpoint so the same JSON serves startup configuration and
// runtime inspection; fields omitted from the file keep their defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tjl0830/gait-aware/internal/gait"
)

// DefaultConfigPath is the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// DefaultLabels is the classifier's ordered label list. The order is the
// model's output order and must not be rearranged.
var DefaultLabels = []string{"normal", "antalgic", "lurching", "steppage", "trendelenburg"}

// TuningConfig is the root pipeline configuration. All fields are
// optional pointers so partial files are safe; the Get* methods supply
// fallback defaults.
type TuningConfig struct {
	// Anomaly chain params
	FillPolicy        *string            `json:"fill_policy,omitempty"`        // "zero" or "propagate"
	NormalizeStrategy *string            `json:"normalize_strategy,omitempty"` // "per_sequence" or "global"
	GlobalMean        []float64          `json:"global_mean,omitempty"`        // 16 values, global strategy only
	GlobalStd         []float64          `json:"global_std,omitempty"`         // 16 values, global strategy only
	JointThresholds   map[string]float64 `json:"joint_thresholds,omitempty"`   // keyed by canonical joint name

	// Energy image params
	SEISize       *int     `json:"sei_size,omitempty"`
	GaussianSigma *float64 `json:"gaussian_sigma,omitempty"`
	LineThickness *float64 `json:"line_thickness,omitempty"`

	// Classifier params
	Labels []string `json:"labels,omitempty"`

	// Inference backend params
	InferenceURL *string `json:"inference_url,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with every field unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The path must
// have a .json extension and the file must be under 1MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (c *TuningConfig) Validate() error {
	if c.FillPolicy != nil {
		switch gait.FillPolicy(*c.FillPolicy) {
		case gait.FillAllNaNZero, gait.FillAllNaNPropagate:
		default:
			return fmt.Errorf("unknown fill_policy %q", *c.FillPolicy)
		}
	}
	if c.NormalizeStrategy != nil {
		switch gait.NormalizeStrategy(*c.NormalizeStrategy) {
		case gait.NormalizePerSequence, gait.NormalizeGlobal:
		default:
			return fmt.Errorf("unknown normalize_strategy %q", *c.NormalizeStrategy)
		}
	}
	if c.GetNormalizeStrategy() == gait.NormalizeGlobal {
		if len(c.GlobalMean) != gait.NumFeatures || len(c.GlobalStd) != gait.NumFeatures {
			return fmt.Errorf("global normalization needs %d mean and std values, got %d/%d",
				gait.NumFeatures, len(c.GlobalMean), len(c.GlobalStd))
		}
	}
	for name := range c.JointThresholds {
		if _, ok := gait.JointFromName(name); !ok {
			return fmt.Errorf("unknown joint %q in joint_thresholds", name)
		}
	}
	if c.SEISize != nil && *c.SEISize <= 0 {
		return fmt.Errorf("sei_size must be positive, got %d", *c.SEISize)
	}
	// Zero is rejected rather than meaning "no smoothing": the generator
	// treats a zero sigma as unset and would fall back to the default.
	if c.GaussianSigma != nil && *c.GaussianSigma <= 0 {
		return fmt.Errorf("gaussian_sigma must be positive, got %g", *c.GaussianSigma)
	}
	if c.LineThickness != nil && *c.LineThickness <= 0 {
		return fmt.Errorf("line_thickness must be positive, got %g", *c.LineThickness)
	}
	return nil
}

// GetFillPolicy returns the all-NaN channel fill policy.
func (c *TuningConfig) GetFillPolicy() gait.FillPolicy {
	if c.FillPolicy != nil {
		return gait.FillPolicy(*c.FillPolicy)
	}
	return gait.FillAllNaNZero
}

// GetNormalizeStrategy returns the channel normalization strategy.
func (c *TuningConfig) GetNormalizeStrategy() gait.NormalizeStrategy {
	if c.NormalizeStrategy != nil {
		return gait.NormalizeStrategy(*c.NormalizeStrategy)
	}
	return gait.NormalizePerSequence
}

// GetGlobalStats returns the fixed normalization constants, or nil when
// the per-sequence strategy is active.
func (c *TuningConfig) GetGlobalStats() *gait.ChannelStats {
	if len(c.GlobalMean) != gait.NumFeatures || len(c.GlobalStd) != gait.NumFeatures {
		return nil
	}
	var stats gait.ChannelStats
	copy(stats.Mean[:], c.GlobalMean)
	copy(stats.Std[:], c.GlobalStd)
	return &stats
}

// GetThresholds returns the per-joint threshold table, merging file
// overrides onto the shipped defaults.
func (c *TuningConfig) GetThresholds() gait.Thresholds {
	thresholds := gait.DefaultThresholds()
	for name, v := range c.JointThresholds {
		if j, ok := gait.JointFromName(name); ok {
			thresholds[j] = v
		}
	}
	return thresholds
}

// GetSEISize returns the energy image side length.
func (c *TuningConfig) GetSEISize() int {
	if c.SEISize != nil {
		return *c.SEISize
	}
	return 224
}

// GetGaussianSigma returns the trajectory smoothing sigma.
func (c *TuningConfig) GetGaussianSigma() float64 {
	if c.GaussianSigma != nil {
		return *c.GaussianSigma
	}
	return 0.1
}

// GetLineThickness returns the skeleton stroke thickness in pixels.
func (c *TuningConfig) GetLineThickness() float64 {
	if c.LineThickness != nil {
		return *c.LineThickness
	}
	return 3.0
}

// GetLabels returns the ordered classifier label list.
func (c *TuningConfig) GetLabels() []string {
	if len(c.Labels) > 0 {
		return c.Labels
	}
	return DefaultLabels
}

// GetInferenceURL returns the sidecar inference base URL, empty when
// unset.
func (c *TuningConfig) GetInferenceURL() string {
	if c.InferenceURL != nil {
		return *c.InferenceURL
	}
	return ""
}

// PipelineConfig builds the anomaly-chain configuration.
func (c *TuningConfig) PipelineConfig() gait.Config {
	return gait.Config{
		FillPolicy:  c.GetFillPolicy(),
		Normalize:   c.GetNormalizeStrategy(),
		GlobalStats: c.GetGlobalStats(),
		Thresholds:  c.GetThresholds(),
	}
}
