// Package pose defines the landmark sequence data model produced by the
// upstream pose-estimation stage, plus parsing and validation for the
// pose-sequence interchange document.
package pose

import "math"

// LandmarkIndex identifies one slot in the fixed 33-point body topology.
type LandmarkIndex int

// Landmark slots follow the standard 33-point body topology used by the
// upstream pose extractor. The ordering is part of the input contract and
// must never change.
const (
	Nose LandmarkIndex = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex

	// LandmarkCount is the number of slots in a complete frame.
	LandmarkCount
)

// Landmark is a single detected body keypoint. X/Y are either normalized
// to [0,1] or in pixels, disambiguated by PoseSequence.PixelCoords.
// Z is an optional depth estimate; Visibility is a [0,1] detection
// confidence and may be absent (zero).
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z,omitempty"`
	Visibility float64 `json:"visibility,omitempty"`
}

// Valid reports whether the landmark carries usable coordinates.
func (l Landmark) Valid() bool {
	return !math.IsNaN(l.X) && !math.IsInf(l.X, 0) &&
		!math.IsNaN(l.Y) && !math.IsInf(l.Y, 0)
}

// Frame holds the landmarks detected in one video frame. A complete frame
// has LandmarkCount entries; frames where detection failed may carry fewer
// (including zero). Consumers treat short frames as missing data, not as
// errors.
type Frame struct {
	Landmarks []Landmark `json:"landmarks"`
}

// Complete reports whether the frame carries all 33 landmark slots.
func (f Frame) Complete() bool {
	return len(f.Landmarks) >= int(LandmarkCount)
}

// Landmark returns the landmark at idx and whether the slot is present
// and valid.
func (f Frame) Landmark(idx LandmarkIndex) (Landmark, bool) {
	if int(idx) >= len(f.Landmarks) {
		return Landmark{}, false
	}
	lm := f.Landmarks[idx]
	return lm, lm.Valid()
}

// Metadata describes the source clip a sequence was extracted from.
type Metadata struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	FrameCount int     `json:"frame_count"`
	FPS        float64 `json:"fps"`
}

// PoseSequence is a complete, time-ordered landmark sequence for one clip.
// PixelCoords declares whether landmark x/y are already in pixels (true)
// or normalized to [0,1] and must be scaled by Metadata.Width/Height
// before geometric work (false, the default for the standard extractor).
//
// Sequences are immutable after construction: every pipeline stage copies
// rather than mutates, so one sequence can feed both analysis chains.
type PoseSequence struct {
	Metadata    Metadata `json:"metadata"`
	Frames      []Frame  `json:"frames"`
	PixelCoords bool     `json:"pixel_coords,omitempty"`
}

// NumFrames returns the actual number of frames carried by the sequence.
// Metadata.FrameCount is advisory only; the frames slice is authoritative
// when the two disagree.
func (s *PoseSequence) NumFrames() int {
	return len(s.Frames)
}
