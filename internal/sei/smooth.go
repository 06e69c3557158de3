package sei

import "math"

// DefaultSigma is the Gaussian smoothing sigma applied to each joint
// trajectory across frames. The value is small on purpose: it knocks
// down single-frame detector jitter without dragging the swing phase.
const DefaultSigma = 0.1

// gaussianKernel builds a normalized 1D Gaussian kernel with radius
// ceil(3*sigma).
func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflectIndex reflects an out-of-range index back into [0, n).
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}

// smoothTrajectories applies a 1D Gaussian filter to each point slot's x
// and y trajectory across frames, with reflect boundary handling. Taps
// that land on invalid frames are dropped and the kernel renormalized
// over the remaining weight; a sample with no valid taps stays invalid.
// The input is not modified.
func smoothTrajectories(frames [][numPoints]Point, sigma float64) [][numPoints]Point {
	n := len(frames)
	if n == 0 || sigma <= 0 {
		return frames
	}

	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	out := make([][numPoints]Point, n)
	for p := 0; p < numPoints; p++ {
		for t := 0; t < n; t++ {
			if !frames[t][p].Valid {
				continue
			}
			var sx, sy, wsum float64
			for k := -radius; k <= radius; k++ {
				idx := reflectIndex(t+k, n)
				pt := frames[idx][p]
				if !pt.Valid {
					continue
				}
				w := kernel[k+radius]
				sx += pt.X * w
				sy += pt.Y * w
				wsum += w
			}
			if wsum == 0 {
				continue
			}
			out[t][p] = Point{X: sx / wsum, Y: sy / wsum, Valid: true}
		}
	}
	return out
}
