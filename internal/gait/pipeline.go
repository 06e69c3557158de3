package gait

import (
	"context"

	"github.com/tjl0830/gait-aware/internal/model"
	"github.com/tjl0830/gait-aware/internal/monitoring"
	"github.com/tjl0830/gait-aware/internal/pose"
)

// Config selects the preprocessing strategies and threshold table for
// one pipeline instance. The defaults match the shipped autoencoder's
// training-time preprocessing; changing a strategy without retraining
// invalidates the threshold table.
type Config struct {
	FillPolicy  FillPolicy
	Normalize   NormalizeStrategy
	GlobalStats *ChannelStats // required when Normalize == NormalizeGlobal
	Thresholds  Thresholds
}

// DefaultConfig returns the deployed-model configuration: zero-filled
// all-NaN channels, per-sequence normalization, shipped thresholds.
func DefaultConfig() Config {
	return Config{
		FillPolicy: FillAllNaNZero,
		Normalize:  NormalizePerSequence,
		Thresholds: DefaultThresholds(),
	}
}

// Pipeline is the anomaly chain bound to a model session. It is a
// stateless batch transform: each Analyze call operates on its own
// sequence and shares nothing with concurrent calls.
type Pipeline struct {
	cfg     Config
	session *model.Session
}

// NewPipeline binds a configuration to a model session.
func NewPipeline(cfg Config, session *model.Session) *Pipeline {
	return &Pipeline{cfg: cfg, session: session}
}

// Analyze runs the full anomaly chain over one sequence:
// extract → clean → normalize → window → score → classify.
// The autoencoder call is the single suspension point; its failure, or a
// sequence shorter than one window, fails the analysis with a typed
// error and nothing is retried.
func (p *Pipeline) Analyze(ctx context.Context, seq *pose.PoseSequence) (*AnomalyResult, error) {
	_, result, err := p.Score(ctx, seq)
	return result, err
}

// Score exposes the raw window scores for callers that want the error
// series (debug plots, threshold calibration) alongside the verdict.
func (p *Pipeline) Score(ctx context.Context, seq *pose.PoseSequence) (*WindowScores, *AnomalyResult, error) {
	ae, err := p.session.Autoencoder()
	if err != nil {
		return nil, nil, err
	}

	features, err := ExtractFeatures(seq)
	if err != nil {
		return nil, nil, err
	}

	cleaned := CleanFeatures(features, p.cfg.FillPolicy)
	normalized := NormalizeFeatures(cleaned, p.cfg.Normalize, p.cfg.GlobalStats)

	windows, err := MakeWindows(normalized)
	if err != nil {
		return nil, nil, err
	}
	monitoring.Logf("gait: scoring %d windows over %d frames", len(windows), len(features))

	scores, err := ScoreWindows(ctx, ae, windows)
	if err != nil {
		return nil, nil, err
	}
	return scores, Classify(scores, p.cfg.Thresholds), nil
}
