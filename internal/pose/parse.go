package pose

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tjl0830/gait-aware/internal/monitoring"
)

// maxDocumentBytes bounds the size of a pose-sequence document. A 10-minute
// clip at 30fps with full 33-landmark frames is well under this.
const maxDocumentBytes = 64 * 1024 * 1024

// ParseSequence decodes a pose-sequence document from r and validates the
// input contract. A metadata/frames length mismatch is tolerated (the
// frames slice wins) but logged, since it usually indicates a truncated
// extraction upstream.
func ParseSequence(r io.Reader) (*PoseSequence, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read pose sequence: %w", err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("pose sequence document too large (max %d bytes)", maxDocumentBytes)
	}

	var seq PoseSequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("failed to parse pose sequence JSON: %w", err)
	}

	if err := seq.Validate(); err != nil {
		return nil, err
	}
	return &seq, nil
}

// Validate checks the structural invariants of the input contract.
// Per-frame landmark gaps are legal; they are absorbed downstream by
// interpolation and skip policies.
func (s *PoseSequence) Validate() error {
	if s.Metadata.Width < 0 || s.Metadata.Height < 0 {
		return fmt.Errorf("invalid frame dimensions %gx%g", s.Metadata.Width, s.Metadata.Height)
	}
	if !s.PixelCoords && (s.Metadata.Width == 0 || s.Metadata.Height == 0) {
		return fmt.Errorf("normalized coordinates require frame width/height metadata")
	}
	for i, f := range s.Frames {
		if len(f.Landmarks) > int(LandmarkCount) {
			return fmt.Errorf("frame %d has %d landmarks (max %d)", i, len(f.Landmarks), LandmarkCount)
		}
	}
	if s.Metadata.FrameCount != 0 && s.Metadata.FrameCount != len(s.Frames) {
		monitoring.Logf("pose: metadata frame_count=%d but %d frames present; using frames",
			s.Metadata.FrameCount, len(s.Frames))
	}
	return nil
}
