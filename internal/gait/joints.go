// Package gait implements the anomaly-scoring chain: feature extraction
// from a pose sequence, temporal cleaning, normalization, sliding-window
// segmentation, reconstruction scoring against a sequence autoencoder,
// and per-joint threshold classification.
package gait

import "github.com/tjl0830/gait-aware/internal/pose"

// Joint identifies one of the eight lower-body joints tracked for gait
// analysis. The numeric order doubles as the feature channel order and
// must match the order used when the reconstruction model was trained.
type Joint int

const (
	JointLeftHip Joint = iota
	JointRightHip
	JointLeftKnee
	JointRightKnee
	JointLeftAnkle
	JointRightAnkle
	JointLeftFootIndex
	JointRightFootIndex

	// NumJoints is the number of tracked joints.
	NumJoints
)

// NumFeatures is the width of the per-frame feature vector: (x, y) per
// tracked joint.
const NumFeatures = 2 * int(NumJoints)

var jointNames = [NumJoints]string{
	"LEFT_HIP",
	"RIGHT_HIP",
	"LEFT_KNEE",
	"RIGHT_KNEE",
	"LEFT_ANKLE",
	"RIGHT_ANKLE",
	"LEFT_FOOT_INDEX",
	"RIGHT_FOOT_INDEX",
}

var jointLandmarks = [NumJoints]pose.LandmarkIndex{
	pose.LeftHip,
	pose.RightHip,
	pose.LeftKnee,
	pose.RightKnee,
	pose.LeftAnkle,
	pose.RightAnkle,
	pose.LeftFootIndex,
	pose.RightFootIndex,
}

// String returns the canonical upper-snake joint name used in results
// and the threshold table.
func (j Joint) String() string {
	if j < 0 || j >= NumJoints {
		return "UNKNOWN"
	}
	return jointNames[j]
}

// LandmarkIndex returns the 33-point topology slot backing this joint.
func (j Joint) LandmarkIndex() pose.LandmarkIndex {
	return jointLandmarks[j]
}

// IsHip reports whether the joint is one of the two hips. Hips are
// reported but excluded from the abnormality vote: hip landmarks sit
// near the crop centre and move little, so their reconstruction error
// carries almost no diagnostic signal.
func (j Joint) IsHip() bool {
	return j == JointLeftHip || j == JointRightHip
}

// JointFromName resolves a canonical joint name back to its Joint value.
func JointFromName(name string) (Joint, bool) {
	for j := Joint(0); j < NumJoints; j++ {
		if jointNames[j] == name {
			return j, true
		}
	}
	return 0, false
}

// XChannel and YChannel return the feature channel indices carrying this
// joint's coordinates.
func (j Joint) XChannel() int { return 2 * int(j) }
func (j Joint) YChannel() int { return 2*int(j) + 1 }
