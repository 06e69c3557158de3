// Package sei builds the skeleton energy image: landmark trajectories are
// converted to pixels, temporally smoothed, rasterized per frame as an
// anti-aliased skeleton mask scaled and centred by torso span, and the
// masks are averaged into one greyscale image.
package sei

import (
	"math"

	"github.com/tjl0830/gait-aware/internal/pose"
)

// Point is a 2D pixel-space landmark position. Invalid points are
// missing landmarks; they are skipped by smoothing and rasterization.
type Point struct {
	X, Y  float64
	Valid bool
}

// Synthetic point slots appended after the 33 topology slots: torso top
// is the shoulder midpoint, torso bottom the hip midpoint.
const (
	torsoTop    = int(pose.LandmarkCount)
	torsoBottom = torsoTop + 1
	numPoints   = torsoBottom + 1
)

// projectFrames converts each frame's landmarks into pixel coordinates
// and appends the two synthetic torso points. Landmarks already in
// pixels pass through unscaled.
func projectFrames(seq *pose.PoseSequence) [][numPoints]Point {
	sx, sy := 1.0, 1.0
	if !seq.PixelCoords {
		sx, sy = seq.Metadata.Width, seq.Metadata.Height
	}

	frames := make([][numPoints]Point, len(seq.Frames))
	for i, frame := range seq.Frames {
		var pts [numPoints]Point
		for idx := pose.LandmarkIndex(0); idx < pose.LandmarkCount; idx++ {
			lm, ok := frame.Landmark(idx)
			if !ok {
				continue
			}
			pts[idx] = Point{X: lm.X * sx, Y: lm.Y * sy, Valid: true}
		}
		pts[torsoTop] = midpoint(pts[pose.LeftShoulder], pts[pose.RightShoulder])
		pts[torsoBottom] = midpoint(pts[pose.LeftHip], pts[pose.RightHip])
		frames[i] = pts
	}
	return frames
}

// midpoint returns the midpoint of two points, valid only when both are.
func midpoint(a, b Point) Point {
	if !a.Valid || !b.Valid {
		return Point{}
	}
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2, Valid: true}
}

// placement holds the affine map from pixel space into the canvas for
// one frame: canvas = point*Scale + Offset.
type placement struct {
	Scale            float64
	OffsetX, OffsetY float64
}

// canvasFill is the fraction of the canvas height the body span fills;
// the remainder splits evenly above and below.
const canvasFill = 0.95

// framePlacement computes the per-frame scale and offsets. The vertical
// span over all valid points (torso points included) is scaled to
// canvasFill of the canvas, the torso midpoint's x is aligned to the
// horizontal centre, and the minimum y lands on the top padding.
// Degenerate frames (span under one pixel, or no torso) report ok=false
// and are skipped by the accumulator.
func framePlacement(pts *[numPoints]Point, size int) (placement, bool) {
	top, bottom := pts[torsoTop], pts[torsoBottom]
	if !top.Valid || !bottom.Valid {
		return placement{}, false
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := 0; i < numPoints; i++ {
		if !pts[i].Valid {
			continue
		}
		minY = math.Min(minY, pts[i].Y)
		maxY = math.Max(maxY, pts[i].Y)
	}
	span := maxY - minY
	if span < 1 {
		return placement{}, false
	}

	scale := float64(size) * canvasFill / span
	midX := (top.X + bottom.X) / 2
	padTop := (float64(size) - span*scale) / 2

	return placement{
		Scale:   scale,
		OffsetX: float64(size)/2 - midX*scale,
		OffsetY: padTop - minY*scale,
	}, true
}

// apply maps a pixel-space point into canvas coordinates.
func (p placement) apply(pt Point) (float64, float64) {
	return pt.X*p.Scale + p.OffsetX, pt.Y*p.Scale + p.OffsetY
}
