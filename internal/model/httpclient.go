package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPBackend talks to a sidecar inference service over JSON. It
// implements both the Autoencoder and ImageClassifier contracts:
//
//	POST {base}/reconstruct  {"windows": [[[...]]]}      -> {"windows": [[[...]]]}
//	POST {base}/classify     {"input": [...], "size": n} -> {"scores": [...]}
//	GET  {base}/healthz                                  -> 200 when models are loaded
type HTTPBackend struct {
	base   string
	client *http.Client
}

// NewHTTPBackend creates a backend for the given base URL. A nil client
// uses a default with a 60s timeout; inference on small accelerators can
// be slow but must still bound the call.
func NewHTTPBackend(base string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPBackend{base: base, client: client}
}

type reconstructRequest struct {
	Windows [][][]float64 `json:"windows"`
}

type reconstructResponse struct {
	Windows [][][]float64 `json:"windows"`
}

// Reconstruct implements Autoencoder.
func (b *HTTPBackend) Reconstruct(ctx context.Context, windows [][][]float64) ([][][]float64, error) {
	var resp reconstructResponse
	if err := b.post(ctx, "/reconstruct", reconstructRequest{Windows: windows}, &resp); err != nil {
		return nil, err
	}
	return resp.Windows, nil
}

type classifyRequest struct {
	Input []float32 `json:"input"`
	Size  int       `json:"size"`
}

type classifyResponse struct {
	Scores []float32 `json:"scores"`
}

// Classify implements ImageClassifier.
func (b *HTTPBackend) Classify(ctx context.Context, input []float32) ([]float32, error) {
	var resp classifyResponse
	if err := b.post(ctx, "/classify", classifyRequest{Input: input, Size: ClassifierInputSize}, &resp); err != nil {
		return nil, err
	}
	return resp.Scores, nil
}

// Healthy probes the backend's health endpoint.
func (b *HTTPBackend) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.base+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("inference backend unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference backend not healthy: %s", resp.Status)
	}
	return nil
}

func (b *HTTPBackend) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("inference backend returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode inference response: %w", err)
	}
	return nil
}

// HTTPLoader loads a Session against a sidecar inference service. Load
// succeeds once the backend reports healthy; both contracts are then
// served by the same backend.
type HTTPLoader struct {
	Base   string
	Client *http.Client
}

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context) (Autoencoder, ImageClassifier, error) {
	backend := NewHTTPBackend(l.Base, l.Client)
	if err := backend.Healthy(ctx); err != nil {
		return nil, nil, err
	}
	return backend, backend, nil
}
