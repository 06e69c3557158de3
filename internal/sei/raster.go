package sei

import (
	"math"

	"github.com/tjl0830/gait-aware/internal/pose"
)

// DefaultThickness is the skeleton line thickness in canvas pixels.
const DefaultThickness = 3.0

// connections is the fixed skeleton topology drawn per frame. Torso
// spine first, then head/shoulder/hip attachments to the synthetic torso
// points, then the arm and leg chains and the eye lines. A segment is
// drawn only when both endpoints are valid.
var connections = [][2]int{
	{torsoTop, torsoBottom},

	{int(pose.Nose), torsoTop},
	{int(pose.LeftShoulder), torsoTop},
	{int(pose.RightShoulder), torsoTop},
	{int(pose.LeftHip), torsoBottom},
	{int(pose.RightHip), torsoBottom},

	{int(pose.LeftShoulder), int(pose.LeftElbow)},
	{int(pose.LeftElbow), int(pose.LeftWrist)},
	{int(pose.RightShoulder), int(pose.RightElbow)},
	{int(pose.RightElbow), int(pose.RightWrist)},

	{int(pose.LeftHip), int(pose.LeftKnee)},
	{int(pose.LeftKnee), int(pose.LeftAnkle)},
	{int(pose.LeftAnkle), int(pose.LeftFootIndex)},
	{int(pose.RightHip), int(pose.RightKnee)},
	{int(pose.RightKnee), int(pose.RightAnkle)},
	{int(pose.RightAnkle), int(pose.RightFootIndex)},

	{int(pose.Nose), int(pose.LeftEyeInner)},
	{int(pose.LeftEyeInner), int(pose.LeftEye)},
	{int(pose.LeftEye), int(pose.LeftEyeOuter)},
	{int(pose.Nose), int(pose.RightEyeInner)},
	{int(pose.RightEyeInner), int(pose.RightEye)},
	{int(pose.RightEye), int(pose.RightEyeOuter)},
}

// Mask is one frame's rasterized skeleton: a size×size byte grid,
// row-major, 0 background to 255 full coverage.
type Mask struct {
	Size int
	Pix  []uint8
}

// NewMask returns a zeroed mask.
func NewMask(size int) *Mask {
	return &Mask{Size: size, Pix: make([]uint8, size*size)}
}

// At returns the coverage value at (x, y); out-of-bounds reads are zero.
func (m *Mask) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= m.Size || y >= m.Size {
		return 0
	}
	return m.Pix[y*m.Size+x]
}

// stamp writes coverage at (x, y), keeping the maximum of old and new so
// overlapping segments do not double-brighten a pixel.
func (m *Mask) stamp(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= m.Size || y >= m.Size {
		return
	}
	idx := y*m.Size + x
	if v > m.Pix[idx] {
		m.Pix[idx] = v
	}
}

// DrawLine draws an anti-aliased thick segment by stamping discs of
// radius thickness/2 along it. Disc spacing is half a pixel, which keeps
// the stroke solid at any angle; coverage falls off linearly over the
// final boundary pixel. The disc stamping gives rounded caps for free,
// so joints need no separate circle pass.
func (m *Mask) DrawLine(x0, y0, x1, y1, thickness float64) {
	radius := thickness / 2
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)

	steps := int(math.Ceil(length/0.5)) + 1
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		m.stampDisc(x0+dx*t, y0+dy*t, radius)
	}
}

// stampDisc stamps one anti-aliased disc centred at (cx, cy).
func (m *Mask) stampDisc(cx, cy, radius float64) {
	x0 := int(math.Floor(cx - radius - 1))
	x1 := int(math.Ceil(cx + radius + 1))
	y0 := int(math.Floor(cy - radius - 1))
	y1 := int(math.Ceil(cy + radius + 1))

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			// Distance from the pixel centre to the disc centre.
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			alpha := radius + 0.5 - d
			if alpha <= 0 {
				continue
			}
			if alpha > 1 {
				alpha = 1
			}
			m.stamp(x, y, uint8(alpha*255+0.5))
		}
	}
}

// rasterizeFrame draws the skeleton topology for one placed frame.
// Returns false without drawing when the frame is degenerate.
func rasterizeFrame(pts *[numPoints]Point, size int, thickness float64) (*Mask, bool) {
	pl, ok := framePlacement(pts, size)
	if !ok {
		return nil, false
	}

	mask := NewMask(size)
	for _, conn := range connections {
		a, b := pts[conn[0]], pts[conn[1]]
		if !a.Valid || !b.Valid {
			continue
		}
		ax, ay := pl.apply(a)
		bx, by := pl.apply(b)
		mask.DrawLine(ax, ay, bx, by, thickness)
	}
	return mask, true
}
