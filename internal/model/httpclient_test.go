package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inferenceTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /reconstruct", func(w http.ResponseWriter, r *http.Request) {
		var req reconstructRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// Echo the input back: an identity autoencoder.
		json.NewEncoder(w).Encode(reconstructResponse{Windows: req.Windows})
	})
	mux.HandleFunc("POST /classify", func(w http.ResponseWriter, r *http.Request) {
		var req classifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(classifyResponse{Scores: []float32{0.1, 0.9}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPBackendReconstruct(t *testing.T) {
	srv := inferenceTestServer(t)
	backend := NewHTTPBackend(srv.URL, srv.Client())

	windows := [][][]float64{{{1, 2}, {3, 4}}}
	got, err := backend.Reconstruct(context.Background(), windows)
	require.NoError(t, err)
	assert.Equal(t, windows, got)
}

func TestHTTPBackendClassify(t *testing.T) {
	srv := inferenceTestServer(t)
	backend := NewHTTPBackend(srv.URL, srv.Client())

	scores, err := backend.Classify(context.Background(), []float32{0.5})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.9}, scores)
}

func TestHTTPBackendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	backend := NewHTTPBackend(srv.URL, srv.Client())
	_, err := backend.Reconstruct(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model crashed")
}

func TestHTTPLoaderHealthGate(t *testing.T) {
	t.Run("healthy backend loads", func(t *testing.T) {
		srv := inferenceTestServer(t)
		loader := &HTTPLoader{Base: srv.URL, Client: srv.Client()}
		session := NewSession()
		require.NoError(t, session.Load(context.Background(), loader))
		assert.Equal(t, StateReady, session.State())
	})

	t.Run("unhealthy backend fails load", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		loader := &HTTPLoader{Base: srv.URL, Client: srv.Client()}
		session := NewSession()
		require.Error(t, session.Load(context.Background(), loader))
		assert.Equal(t, StateFailed, session.State())
	})
}
