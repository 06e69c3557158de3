package model

import (
	"context"
	"fmt"
	"sort"
)

// Autoencoder is the sequence-reconstruction model contract. Reconstruct
// takes a [numWindows][60][16] batch and returns a same-shape batch; the
// caller computes reconstruction error. Implementations may offload to a
// worker or accelerator; the call must not return until the result is
// complete. A failed call fails the whole analysis and is not retried.
type Autoencoder interface {
	Reconstruct(ctx context.Context, windows [][][]float64) ([][][]float64, error)
}

// ClassifierInputSize is the side length of the classifier's square RGB
// input tensor [1, 224, 224, 3].
const ClassifierInputSize = 224

// ImageClassifier is the image classification model contract. Classify
// takes a flattened 224×224×3 RGB tensor with values in [0,1] and returns
// softmax probabilities, one per class in the configured label order.
type ImageClassifier interface {
	Classify(ctx context.Context, input []float32) ([]float32, error)
}

// LabelScore is one class probability in a ClassificationResult.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassificationResult is the ranked output of the image classifier.
type ClassificationResult struct {
	PredictedClass string       `json:"predicted_class"`
	Confidence     float64      `json:"confidence"`
	AllScores      []LabelScore `json:"all_scores"`
}

// InvokeClassifier feeds an 8-bit greyscale energy image to the
// classifier and ranks the class probabilities. The greyscale buffer is
// replicated across the three RGB channels and scaled to [0,1]. The
// input tensor is acquired from the arena and released on every exit
// path to bound peak memory on constrained devices.
func InvokeClassifier(ctx context.Context, clf ImageClassifier, labels []string, grey []uint8, size int, arena *TensorArena) (*ClassificationResult, error) {
	if clf == nil {
		return nil, &ModelNotReadyError{State: StateUnloaded}
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("classifier labels not configured")
	}
	if size != ClassifierInputSize {
		return nil, fmt.Errorf("energy image is %d×%d, classifier needs %d×%d",
			size, size, ClassifierInputSize, ClassifierInputSize)
	}
	if len(grey) != size*size {
		return nil, fmt.Errorf("energy image buffer has %d bytes, want %d", len(grey), size*size)
	}

	input, release := arena.Acquire(size * size * 3)
	defer release()

	for i, v := range grey {
		f := float32(v) / 255.0
		input[3*i] = f
		input[3*i+1] = f
		input[3*i+2] = f
	}

	probs, err := clf.Classify(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("classifier inference failed: %w", err)
	}
	if len(probs) != len(labels) {
		return nil, fmt.Errorf("classifier returned %d scores for %d labels", len(probs), len(labels))
	}

	scores := make([]LabelScore, len(labels))
	for i, label := range labels {
		scores[i] = LabelScore{Label: label, Score: float64(probs[i])}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })

	return &ClassificationResult{
		PredictedClass: scores[0].Label,
		Confidence:     scores[0].Score,
		AllScores:      scores,
	}, nil
}
