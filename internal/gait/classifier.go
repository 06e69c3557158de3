package gait

import "math"

// Thresholds is the per-joint anomaly threshold table. Values are
// empirically derived offline on the training corpus (95th percentile of
// healthy-gait reconstruction error per joint) and are never recomputed
// at runtime.
type Thresholds [NumJoints]float64

// DefaultThresholds returns the threshold table shipped with the current
// autoencoder. Retraining the model requires recalibrating these.
func DefaultThresholds() Thresholds {
	return Thresholds{
		JointLeftHip:        0.82,
		JointRightHip:       0.85,
		JointLeftKnee:       0.64,
		JointRightKnee:      0.66,
		JointLeftAnkle:      0.58,
		JointRightAnkle:     0.61,
		JointLeftFootIndex:  0.71,
		JointRightFootIndex: 0.74,
	}
}

// For returns the threshold for joint j.
func (t Thresholds) For(j Joint) float64 { return t[j] }

// AnomalyResult is the verdict of the anomaly chain for one sequence.
type AnomalyResult struct {
	IsAbnormal         bool         `json:"is_abnormal"`
	MeanError          float64      `json:"mean_error"`
	MaxError           float64      `json:"max_error"`
	NumWindows         int          `json:"num_windows"`
	Confidence         float64      `json:"confidence"`
	JointErrors        []JointError `json:"joint_errors"`
	WorstJoint         string       `json:"worst_joint"`
	WorstJointError    float64      `json:"worst_joint_error"`
	AbnormalJointCount int          `json:"abnormal_joint_count"`
}

// Classify derives the overall verdict from window scores. A joint is
// abnormal iff its error meets or exceeds its threshold (ties go to
// abnormal). Hips are reported but excluded from the vote, the worst-joint
// pick and the abnormal count. Confidence maps the worst non-hip joint's
// signed distance from its own threshold onto [50,100].
func Classify(scores *WindowScores, thresholds Thresholds) *AnomalyResult {
	jointErrors := scores.JointErrors(thresholds)

	result := &AnomalyResult{
		MeanError:   scores.MeanError,
		MaxError:    scores.MaxError,
		NumWindows:  scores.NumWindows,
		JointErrors: jointErrors,
	}

	worst := Joint(-1)
	worstError := math.Inf(-1)
	for j := Joint(0); j < NumJoints; j++ {
		if j.IsHip() {
			continue
		}
		je := jointErrors[j]
		if je.IsAbnormal {
			result.AbnormalJointCount++
		}
		if je.Error > worstError {
			worst = j
			worstError = je.Error
		}
	}

	result.IsAbnormal = result.AbnormalJointCount > 0
	if worst >= 0 {
		result.WorstJoint = worst.String()
		result.WorstJointError = worstError
		result.Confidence = confidence(worstError, thresholds.For(worst))
	}
	return result
}

// confidence maps the worst joint's distance from its threshold onto
// [50,100]: 50 at the threshold itself, approaching 100 as the error
// moves away from it on either side.
func confidence(err, threshold float64) float64 {
	if threshold <= 0 {
		return 50
	}
	var c float64
	if err >= threshold {
		c = 50 + 50*(err-threshold)/threshold
	} else {
		c = 50 + 50*(threshold-err)/threshold
	}
	return math.Min(100, c)
}
