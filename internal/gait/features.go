package gait

import (
	"math"

	"github.com/tjl0830/gait-aware/internal/pose"
)

// ExtractFeatures converts a pose sequence into a frames×NumFeatures
// matrix of raw joint coordinates in the fixed channel order
// (LEFT_HIP x, LEFT_HIP y, RIGHT_HIP x, ... RIGHT_FOOT_INDEX y).
//
// A frame that does not carry all 33 landmark slots yields an all-NaN
// row: missing frames are data, not errors, and are repaired downstream
// by the temporal cleaner. Only a zero-frame sequence fails.
func ExtractFeatures(seq *pose.PoseSequence) ([][]float64, error) {
	if seq == nil || len(seq.Frames) == 0 {
		return nil, errEmptySequence()
	}

	features := make([][]float64, len(seq.Frames))
	for i, frame := range seq.Frames {
		row := make([]float64, NumFeatures)
		if !frame.Complete() {
			for c := range row {
				row[c] = math.NaN()
			}
			features[i] = row
			continue
		}
		for j := Joint(0); j < NumJoints; j++ {
			lm, ok := frame.Landmark(j.LandmarkIndex())
			if !ok {
				row[j.XChannel()] = math.NaN()
				row[j.YChannel()] = math.NaN()
				continue
			}
			row[j.XChannel()] = lm.X
			row[j.YChannel()] = lm.Y
		}
		features[i] = row
	}
	return features, nil
}
