// Package testutil provides synthetic pose sequences and fake inference
// backends shared by pipeline tests.
package testutil

import (
	"context"

	"github.com/tjl0830/gait-aware/internal/model"
	"github.com/tjl0830/gait-aware/internal/pose"
)

// bodyLayout is a plausible standing body in normalized coordinates,
// indexed by landmark slot. Slots not listed default to a point near the
// body centre so every frame is complete.
var bodyLayout = map[pose.LandmarkIndex][2]float64{
	pose.Nose:           {0.50, 0.20},
	pose.LeftEyeInner:   {0.48, 0.18},
	pose.LeftEye:        {0.47, 0.18},
	pose.LeftEyeOuter:   {0.46, 0.18},
	pose.RightEyeInner:  {0.52, 0.18},
	pose.RightEye:       {0.53, 0.18},
	pose.RightEyeOuter:  {0.54, 0.18},
	pose.LeftEar:        {0.45, 0.19},
	pose.RightEar:       {0.55, 0.19},
	pose.MouthLeft:      {0.48, 0.22},
	pose.MouthRight:     {0.52, 0.22},
	pose.LeftShoulder:   {0.42, 0.30},
	pose.RightShoulder:  {0.58, 0.30},
	pose.LeftElbow:      {0.40, 0.40},
	pose.RightElbow:     {0.60, 0.40},
	pose.LeftWrist:      {0.38, 0.50},
	pose.RightWrist:     {0.62, 0.50},
	pose.LeftPinky:      {0.37, 0.52},
	pose.RightPinky:     {0.63, 0.52},
	pose.LeftIndex:      {0.37, 0.51},
	pose.RightIndex:     {0.63, 0.51},
	pose.LeftThumb:      {0.38, 0.51},
	pose.RightThumb:     {0.62, 0.51},
	pose.LeftHip:        {0.45, 0.52},
	pose.RightHip:       {0.55, 0.52},
	pose.LeftKnee:       {0.44, 0.70},
	pose.RightKnee:      {0.56, 0.70},
	pose.LeftAnkle:      {0.44, 0.88},
	pose.RightAnkle:     {0.56, 0.88},
	pose.LeftHeel:       {0.43, 0.90},
	pose.RightHeel:      {0.57, 0.90},
	pose.LeftFootIndex:  {0.46, 0.92},
	pose.RightFootIndex: {0.58, 0.92},
}

// StandingFrame returns a complete 33-landmark frame of a standing body
// in normalized coordinates.
func StandingFrame() pose.Frame {
	landmarks := make([]pose.Landmark, pose.LandmarkCount)
	for i := range landmarks {
		landmarks[i] = pose.Landmark{X: 0.5, Y: 0.5, Visibility: 1}
	}
	for idx, xy := range bodyLayout {
		landmarks[idx] = pose.Landmark{X: xy[0], Y: xy[1], Visibility: 1}
	}
	return pose.Frame{Landmarks: landmarks}
}

// Sequence builds an n-frame sequence with 640×480 metadata. frameFn may
// mutate the standing frame per index; nil keeps every frame static.
func Sequence(n int, frameFn func(i int, f *pose.Frame)) *pose.PoseSequence {
	frames := make([]pose.Frame, n)
	for i := range frames {
		f := StandingFrame()
		if frameFn != nil {
			frameFn(i, &f)
		}
		frames[i] = f
	}
	return &pose.PoseSequence{
		Metadata: pose.Metadata{Width: 640, Height: 480, FrameCount: n, FPS: 30},
		Frames:   frames,
	}
}

// ZeroAutoencoder reconstructs every window as all zeros, so the squared
// error of a channel equals its mean square. Handy for predictable
// per-joint errors.
type ZeroAutoencoder struct{}

// Reconstruct implements model.Autoencoder.
func (ZeroAutoencoder) Reconstruct(_ context.Context, windows [][][]float64) ([][][]float64, error) {
	out := make([][][]float64, len(windows))
	for w := range windows {
		out[w] = make([][]float64, len(windows[w]))
		for t := range windows[w] {
			out[w][t] = make([]float64, len(windows[w][t]))
		}
	}
	return out, nil
}

// IdentityAutoencoder reconstructs its input exactly: zero error
// everywhere.
type IdentityAutoencoder struct{}

// Reconstruct implements model.Autoencoder.
func (IdentityAutoencoder) Reconstruct(_ context.Context, windows [][][]float64) ([][][]float64, error) {
	return windows, nil
}

// StaticClassifier returns the same score vector for every input.
type StaticClassifier struct {
	Scores []float32
}

// Classify implements model.ImageClassifier.
func (c StaticClassifier) Classify(_ context.Context, _ []float32) ([]float32, error) {
	return c.Scores, nil
}

// StaticLoader loads fixed backends into a model session.
type StaticLoader struct {
	AE  model.Autoencoder
	CLF model.ImageClassifier
	Err error
}

// Load implements model.Loader.
func (l StaticLoader) Load(_ context.Context) (model.Autoencoder, model.ImageClassifier, error) {
	if l.Err != nil {
		return nil, nil, l.Err
	}
	return l.AE, l.CLF, nil
}
