package sei

// DegenerateFramesError reports that no frame in the sequence produced a
// rasterizable skeleton (every frame missing its torso or collapsed to
// under a pixel of vertical span). The caller should treat it like an
// input-quality problem, not a crash.
type DegenerateFramesError struct {
	TotalFrames int
}

func (e *DegenerateFramesError) Error() string {
	return "no rasterizable frames in sequence: every frame was degenerate or missing torso landmarks"
}

// Accumulator averages per-frame masks element-wise into one greyscale
// energy image. Frames skipped as degenerate do not dilute the average.
type Accumulator struct {
	size  int
	sum   []float64
	count int
}

// NewAccumulator returns an accumulator for size×size masks.
func NewAccumulator(size int) *Accumulator {
	return &Accumulator{size: size, sum: make([]float64, size*size)}
}

// Add folds one rasterized frame into the running sum.
func (a *Accumulator) Add(mask *Mask) {
	for i, v := range mask.Pix {
		a.sum[i] += float64(v)
	}
	a.count++
}

// Count returns the number of frames accumulated so far.
func (a *Accumulator) Count() int { return a.count }

// Image returns the averaged greyscale buffer, or a
// DegenerateFramesError if nothing was accumulated.
func (a *Accumulator) Image() ([]uint8, error) {
	if a.count == 0 {
		return nil, &DegenerateFramesError{}
	}
	pix := make([]uint8, len(a.sum))
	for i, s := range a.sum {
		pix[i] = uint8(s/float64(a.count) + 0.5)
	}
	return pix, nil
}
