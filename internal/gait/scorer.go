package gait

import (
	"context"
	"fmt"

	"github.com/tjl0830/gait-aware/internal/model"
)

// WindowScores aggregates squared reconstruction error over a batch of
// windows: per window, overall, and per feature channel.
type WindowScores struct {
	NumWindows int
	// PerWindow is the mean squared error of each window over (time, feature).
	PerWindow []float64
	// MeanError and MaxError aggregate PerWindow.
	MeanError float64
	MaxError  float64
	// PerChannel is the mean squared error of each of the 16 feature
	// channels over (windows, time).
	PerChannel [NumFeatures]float64
}

// JointError pairs a joint's aggregate reconstruction error with its
// fixed threshold and the per-axis contributions.
type JointError struct {
	Joint      string  `json:"joint"`
	Error      float64 `json:"error"`
	Threshold  float64 `json:"threshold"`
	IsAbnormal bool    `json:"is_abnormal"`
	XError     float64 `json:"x_error"`
	YError     float64 `json:"y_error"`
}

// ScoreWindows runs the window batch through the autoencoder and computes
// squared-error aggregates. The model call is the single suspension point
// of this stage; a failed inference fails the whole analysis and is never
// retried.
func ScoreWindows(ctx context.Context, ae model.Autoencoder, windows [][][]float64) (*WindowScores, error) {
	if len(windows) == 0 {
		return nil, errTooShort(0, SequenceLength)
	}

	recon, err := ae.Reconstruct(ctx, windows)
	if err != nil {
		return nil, fmt.Errorf("autoencoder inference failed: %w", err)
	}
	if len(recon) != len(windows) {
		return nil, fmt.Errorf("autoencoder returned %d windows, want %d", len(recon), len(windows))
	}

	scores := &WindowScores{
		NumWindows: len(windows),
		PerWindow:  make([]float64, len(windows)),
	}

	var channelSum [NumFeatures]float64
	samplesPerChannel := float64(len(windows) * SequenceLength)

	for w := range windows {
		if len(recon[w]) != len(windows[w]) {
			return nil, fmt.Errorf("autoencoder window %d has %d frames, want %d", w, len(recon[w]), len(windows[w]))
		}
		windowSum := 0.0
		for t := range windows[w] {
			if len(recon[w][t]) != NumFeatures {
				return nil, fmt.Errorf("autoencoder window %d frame %d has %d features, want %d", w, t, len(recon[w][t]), NumFeatures)
			}
			for c := 0; c < NumFeatures; c++ {
				diff := windows[w][t][c] - recon[w][t][c]
				sq := diff * diff
				windowSum += sq
				channelSum[c] += sq
			}
		}
		scores.PerWindow[w] = windowSum / float64(SequenceLength*NumFeatures)
	}

	scores.MeanError = scores.PerWindow[0]
	scores.MaxError = scores.PerWindow[0]
	sum := 0.0
	for _, e := range scores.PerWindow {
		sum += e
		if e > scores.MaxError {
			scores.MaxError = e
		}
	}
	scores.MeanError = sum / float64(len(scores.PerWindow))

	for c := 0; c < NumFeatures; c++ {
		scores.PerChannel[c] = channelSum[c] / samplesPerChannel
	}
	return scores, nil
}

// JointErrors folds the 16 per-channel errors into 8 per-joint errors by
// averaging each joint's x and y channels, and attaches thresholds.
func (s *WindowScores) JointErrors(thresholds Thresholds) []JointError {
	out := make([]JointError, NumJoints)
	for j := Joint(0); j < NumJoints; j++ {
		xe := s.PerChannel[j.XChannel()]
		ye := s.PerChannel[j.YChannel()]
		err := (xe + ye) / 2
		thr := thresholds.For(j)
		out[j] = JointError{
			Joint:      j.String(),
			Error:      err,
			Threshold:  thr,
			IsAbnormal: err >= thr,
			XError:     xe,
			YError:     ye,
		}
	}
	return out
}
