package pose

import (
	"math"
	"strings"
	"testing"

	"github.com/tjl0830/gait-aware/internal/monitoring"
)

func TestParseSequenceValidDocument(t *testing.T) {
	doc := `{
		"metadata": {"width": 640, "height": 480, "frame_count": 2, "fps": 30},
		"frames": [
			{"landmarks": [{"x": 0.5, "y": 0.5, "z": -0.1, "visibility": 0.99}]},
			{"landmarks": []}
		]
	}`
	seq, err := ParseSequence(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseSequence failed: %v", err)
	}
	if seq.NumFrames() != 2 {
		t.Fatalf("NumFrames = %d, want 2", seq.NumFrames())
	}
	if seq.Metadata.FPS != 30 {
		t.Errorf("FPS = %v, want 30", seq.Metadata.FPS)
	}
	lm, ok := seq.Frames[0].Landmark(Nose)
	if !ok {
		t.Fatal("nose landmark should be present")
	}
	if lm.Visibility != 0.99 {
		t.Errorf("visibility = %v, want 0.99", lm.Visibility)
	}
}

func TestParseSequenceFrameCountMismatchTolerated(t *testing.T) {
	monitoring.SetLogger(nil)
	defer monitoring.SetLogger(nil)

	doc := `{
		"metadata": {"width": 640, "height": 480, "frame_count": 99, "fps": 30},
		"frames": [{"landmarks": []}]
	}`
	seq, err := ParseSequence(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("mismatch should be tolerated, got %v", err)
	}
	if seq.NumFrames() != 1 {
		t.Errorf("frames slice must win: NumFrames = %d, want 1", seq.NumFrames())
	}
}

func TestParseSequenceRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"not json", `hello`},
		{"missing dimensions for normalized coords", `{"metadata": {"frame_count": 1}, "frames": [{"landmarks": []}]}`},
		{"too many landmarks", `{"metadata": {"width": 1, "height": 1}, "frames": [{"landmarks": [` +
			strings.Repeat(`{"x":0,"y":0},`, 33) + `{"x":0,"y":0}]}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseSequence(strings.NewReader(tc.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLandmarkValid(t *testing.T) {
	if !(Landmark{X: 1, Y: 2}).Valid() {
		t.Error("finite landmark should be valid")
	}
	if (Landmark{X: math.NaN(), Y: 2}).Valid() {
		t.Error("NaN x should be invalid")
	}
	if (Landmark{X: 1, Y: math.Inf(1)}).Valid() {
		t.Error("infinite y should be invalid")
	}
}

func TestFrameLandmarkOutOfRange(t *testing.T) {
	f := Frame{Landmarks: make([]Landmark, 10)}
	if f.Complete() {
		t.Error("10-slot frame is not complete")
	}
	if _, ok := f.Landmark(LeftHip); ok {
		t.Error("slot 23 of a 10-slot frame should be absent")
	}
}
