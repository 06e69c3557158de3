package gait

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// NormalizeStrategy selects how feature channels are z-scored before
// windowing. Both strategies appear in deployed preprocessing variants;
// the default matches the shipped model's training-time preprocessing.
type NormalizeStrategy string

const (
	// NormalizePerSequence computes mean/std fresh from the current
	// sequence, per channel. This is the default.
	NormalizePerSequence NormalizeStrategy = "per_sequence"
	// NormalizeGlobal applies fixed mean/std constants captured once from
	// the training corpus.
	NormalizeGlobal NormalizeStrategy = "global"
)

// ChannelStats carries fixed per-channel normalization constants for the
// global strategy.
type ChannelStats struct {
	Mean [NumFeatures]float64
	Std  [NumFeatures]float64
}

// NormalizeFeatures z-scores each feature channel. A per-sequence std of
// zero or NaN is replaced by 1.0, so a constant channel maps to all
// zeros rather than dividing by zero. Output shape equals input shape;
// the input is not modified.
func NormalizeFeatures(features [][]float64, strategy NormalizeStrategy, global *ChannelStats) [][]float64 {
	frames := len(features)
	if frames == 0 {
		return nil
	}

	out := make([][]float64, frames)
	for i := range out {
		out[i] = make([]float64, NumFeatures)
	}

	channel := make([]float64, frames)
	for c := 0; c < NumFeatures; c++ {
		for i := 0; i < frames; i++ {
			channel[i] = features[i][c]
		}

		var mean, std float64
		if strategy == NormalizeGlobal && global != nil {
			mean, std = global.Mean[c], global.Std[c]
		} else {
			mean, std = stat.MeanStdDev(channel, nil)
		}
		// A std this small is summation noise from a constant channel;
		// dividing by it would amplify rounding error into fake motion.
		if std < 1e-12 || math.IsNaN(std) {
			std = 1.0
		}

		for i := 0; i < frames; i++ {
			out[i][c] = (channel[i] - mean) / std
		}
	}
	return out
}
