package gait

import "math"

// FillPolicy selects what the cleaner does with a feature channel that is
// NaN for every frame (a joint the extractor never saw). Two behaviours
// exist in deployed preprocessing variants, so both are selectable; the
// default matches the training-time preprocessing of the shipped model.
type FillPolicy string

const (
	// FillAllNaNZero replaces an all-NaN channel with zeros. This is the
	// default: the shipped autoencoder was trained with zero-filled gaps.
	FillAllNaNZero FillPolicy = "zero"
	// FillAllNaNPropagate leaves an all-NaN channel untouched, letting the
	// NaNs surface in downstream scores.
	FillAllNaNPropagate FillPolicy = "propagate"
)

// smoothingWindow is the centred moving-average width applied after
// interpolation. Edge windows shrink rather than wrap.
const smoothingWindow = 5

// CleanFeatures repairs and smooths a frames×NumFeatures matrix in channel
// (column) direction: NaN runs are linearly interpolated between the
// nearest valid neighbours, leading/trailing NaNs copy the nearest valid
// value, and each channel is then smoothed with a centred moving average.
// The input matrix is not modified.
func CleanFeatures(features [][]float64, policy FillPolicy) [][]float64 {
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
		interpolateChannel(channel, policy)
		smoothed := movingAverage(channel, smoothingWindow)
		for i := 0; i < frames; i++ {
			out[i][c] = smoothed[i]
		}
	}
	return out
}

// interpolateChannel fills NaN entries in place. Interior gaps are linear
// between the surrounding valid samples; gaps touching either end copy
// the nearest valid value. An all-NaN channel follows the fill policy.
func interpolateChannel(x []float64, policy FillPolicy) {
	n := len(x)
	firstValid := -1
	for i := 0; i < n; i++ {
		if !math.IsNaN(x[i]) {
			firstValid = i
			break
		}
	}
	if firstValid == -1 {
		if policy == FillAllNaNZero {
			for i := range x {
				x[i] = 0
			}
		}
		return
	}

	lastValid := firstValid
	for i := n - 1; i > firstValid; i-- {
		if !math.IsNaN(x[i]) {
			lastValid = i
			break
		}
	}

	// Leading and trailing gaps copy the nearest valid value.
	for i := 0; i < firstValid; i++ {
		x[i] = x[firstValid]
	}
	for i := lastValid + 1; i < n; i++ {
		x[i] = x[lastValid]
	}

	// Interior gaps interpolate linearly.
	prev := firstValid
	for i := firstValid + 1; i <= lastValid; i++ {
		if math.IsNaN(x[i]) {
			continue
		}
		if i > prev+1 {
			span := float64(i - prev)
			for k := prev + 1; k < i; k++ {
				t := float64(k-prev) / span
				x[k] = x[prev]*(1-t) + x[i]*t
			}
		}
		prev = i
	}
}

// movingAverage applies a centred moving average of the given width.
// Windows at the edges shrink to the available samples. NaN inputs
// (possible under FillAllNaNPropagate) poison their window, which is the
// intended propagation behaviour.
func movingAverage(x []float64, window int) []float64 {
	n := len(x)
	out := make([]float64, n)
	half := window / 2
	for i := 0; i < n; i++ {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > n-1 {
			hi = n - 1
		}
		sum := 0.0
		for k := lo; k <= hi; k++ {
			sum += x[k]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}
