package gait

// Windowing constants. SequenceLength is the model's fixed input length;
// WindowOverlap is the fraction shared between consecutive windows.
// Stride is derived: floor(60 * (1 - 0.5)) = 30.
const (
	SequenceLength = 60
	WindowOverlap  = 0.5
)

// WindowStride returns the frame step between consecutive windows.
func WindowStride() int {
	return int(float64(SequenceLength) * (1 - WindowOverlap))
}

// MakeWindows slices a normalized frames×NumFeatures matrix into
// fixed-length overlapping windows [start, start+SequenceLength) for
// start = 0, stride, 2*stride, ... while the window fits. Windows share
// backing rows with the input; callers must not mutate them.
//
// Returns an InputError naming the minimum required length when the
// sequence is shorter than one window.
func MakeWindows(features [][]float64) ([][][]float64, error) {
	total := len(features)
	if total < SequenceLength {
		return nil, errTooShort(total, SequenceLength)
	}

	stride := WindowStride()
	numWindows := (total-SequenceLength)/stride + 1
	windows := make([][][]float64, 0, numWindows)
	for start := 0; start+SequenceLength <= total; start += stride {
		windows = append(windows, features[start:start+SequenceLength])
	}
	return windows, nil
}
