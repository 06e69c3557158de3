package sei

import (
	"bytes"

	"github.com/tjl0830/gait-aware/internal/monitoring"
	"github.com/tjl0830/gait-aware/internal/pngenc"
	"github.com/tjl0830/gait-aware/internal/pose"
)

// DefaultSize matches the downstream image classifier's input resolution.
const DefaultSize = 224

// EnergyImage is the averaged skeleton mask for one sequence.
type EnergyImage struct {
	Size int
	Pix  []uint8
}

// EncodePNG serializes the image as a lossless greyscale PNG. The host
// may re-encode it lossily before feeding the classifier; this buffer is
// the canonical artifact.
func (img *EnergyImage) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := pngenc.Encode(&buf, img.Pix, img.Size, img.Size); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Generator runs the energy-image chain: project to pixels, smooth
// trajectories, rasterize each frame, average.
type Generator struct {
	Size      int     // canvas side length; zero means DefaultSize
	Sigma     float64 // Gaussian smoothing sigma; zero means DefaultSigma
	Thickness float64 // skeleton line thickness; zero means DefaultThickness
}

// Generate builds the energy image for a sequence. Degenerate frames are
// skipped; if every frame is degenerate a DegenerateFramesError is
// returned. An empty sequence yields the same error.
func (g *Generator) Generate(seq *pose.PoseSequence) (*EnergyImage, error) {
	size := g.Size
	if size == 0 {
		size = DefaultSize
	}
	sigma := g.Sigma
	if sigma == 0 {
		sigma = DefaultSigma
	}
	thickness := g.Thickness
	if thickness == 0 {
		thickness = DefaultThickness
	}

	frames := projectFrames(seq)
	frames = smoothTrajectories(frames, sigma)

	acc := NewAccumulator(size)
	skipped := 0
	for i := range frames {
		mask, ok := rasterizeFrame(&frames[i], size, thickness)
		if !ok {
			skipped++
			continue
		}
		acc.Add(mask)
	}
	if skipped > 0 {
		monitoring.Logf("sei: skipped %d/%d degenerate frames", skipped, len(frames))
	}

	pix, err := acc.Image()
	if err != nil {
		if de, ok := err.(*DegenerateFramesError); ok {
			de.TotalFrames = len(frames)
		}
		return nil, err
	}
	return &EnergyImage{Size: size, Pix: pix}, nil
}
