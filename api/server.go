// Package api exposes the analysis pipeline over HTTP for the host UI:
// submit a pose sequence, read back the anomaly and classification
// verdicts, browse run history, and fetch energy images.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tjl0830/gait-aware/internal/gait"
	"github.com/tjl0830/gait-aware/internal/history"
	"github.com/tjl0830/gait-aware/internal/model"
	"github.com/tjl0830/gait-aware/internal/monitor"
	"github.com/tjl0830/gait-aware/internal/monitoring"
	"github.com/tjl0830/gait-aware/internal/pose"
	"github.com/tjl0830/gait-aware/internal/sei"
)

// Server wires the two analysis chains, the model session and the
// optional history store behind an HTTP mux.
type Server struct {
	session   *model.Session
	pipeline  *gait.Pipeline
	generator *sei.Generator
	labels    []string
	arena     *model.TensorArena
	store     *history.Store // nil disables history endpoints and recording
}

// NewServer builds a server. store may be nil when no history database
// is configured.
func NewServer(session *model.Session, pipeline *gait.Pipeline, generator *sei.Generator, labels []string, store *history.Store) *Server {
	return &Server{
		session:   session,
		pipeline:  pipeline,
		generator: generator,
		labels:    labels,
		arena:     model.NewTensorArena(),
		store:     store,
	}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/model/status", s.handleModelStatus)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /api/runs/{id}/sei.png", s.handleRunImage)
	mux.HandleFunc("GET /debug/runs/{id}/joint-errors", s.handleJointErrorChart)
	return mux
}

// AnalyzeResponse is the combined output of both chains for one request.
type AnalyzeResponse struct {
	RunID          string                      `json:"run_id,omitempty"`
	Anomaly        *gait.AnomalyResult         `json:"anomaly"`
	Classification *model.ClassificationResult `json:"classification"`
}

func (s *Server) handleModelStatus(w http.ResponseWriter, r *http.Request) {
	status := struct {
		State string `json:"state"`
		Error string `json:"error,omitempty"`
	}{State: s.session.State().String()}
	if err := s.session.LoadError(); err != nil {
		status.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, status)
}

// handleAnalyze runs both chains over the posted pose sequence. A run is
// recorded to history when a store is configured, but a recording
// failure does not fail the analysis response.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	seq, err := pose.ParseSequence(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, pngBytes, err := s.runAnalysis(r.Context(), seq)
	if err != nil {
		s.writeTypedError(w, err)
		return
	}

	if s.store != nil {
		if runID, err := s.record(seq, resp, pngBytes); err != nil {
			monitoring.Logf("api: failed to record run: %v", err)
		} else {
			resp.RunID = runID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// runAnalysis executes both sub-pipelines against one sequence.
func (s *Server) runAnalysis(ctx context.Context, seq *pose.PoseSequence) (*AnalyzeResponse, []byte, error) {
	anomaly, err := s.pipeline.Analyze(ctx, seq)
	if err != nil {
		return nil, nil, err
	}

	img, err := s.generator.Generate(seq)
	if err != nil {
		return nil, nil, err
	}
	pngBytes, err := img.EncodePNG()
	if err != nil {
		return nil, nil, err
	}

	clf, err := s.session.Classifier()
	if err != nil {
		return nil, nil, err
	}
	classification, err := model.InvokeClassifier(ctx, clf, s.labels, img.Pix, img.Size, s.arena)
	if err != nil {
		return nil, nil, err
	}

	return &AnalyzeResponse{Anomaly: anomaly, Classification: classification}, pngBytes, nil
}

func (s *Server) record(seq *pose.PoseSequence, resp *AnalyzeResponse, pngBytes []byte) (string, error) {
	anomalyJSON, err := json.Marshal(resp.Anomaly)
	if err != nil {
		return "", err
	}
	classifyJSON, err := json.Marshal(resp.Classification)
	if err != nil {
		return "", err
	}
	run := &history.Run{
		Source:          "api",
		FrameCount:      seq.NumFrames(),
		IsAbnormal:      resp.Anomaly.IsAbnormal,
		MeanError:       resp.Anomaly.MeanError,
		MaxError:        resp.Anomaly.MaxError,
		WorstJoint:      resp.Anomaly.WorstJoint,
		Confidence:      resp.Anomaly.Confidence,
		PredictedClass:  resp.Classification.PredictedClass,
		ClassConfidence: resp.Classification.Confidence,
		AnomalyJSON:     anomalyJSON,
		ClassifyJSON:    classifyJSON,
		SEIPNG:          pngBytes,
	}
	if err := s.store.Insert(run); err != nil {
		return "", err
	}
	return run.RunID, nil
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSONError(w, http.StatusNotFound, "history store not configured")
		return
	}
	runs, err := s.store.List(50)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRunImage(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSONError(w, http.StatusNotFound, "history store not configured")
		return
	}
	png, err := s.store.SEIImage(r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) {
		writeJSONError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleJointErrorChart renders the stored anomaly verdict as an
// interactive HTML bar chart. Debug only, no auth.
func (s *Server) handleJointErrorChart(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	var anomaly gait.AnomalyResult
	if err := json.Unmarshal(run.AnomalyJSON, &anomaly); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "stored anomaly payload is unreadable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := monitor.RenderJointErrorChart(w, &anomaly); err != nil {
		monitoring.Logf("api: chart render failed: %v", err)
	}
}

func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*history.Run, bool) {
	if s.store == nil {
		writeJSONError(w, http.StatusNotFound, "history store not configured")
		return nil, false
	}
	run, err := s.store.Get(r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) {
		writeJSONError(w, http.StatusNotFound, "run not found")
		return nil, false
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return run, true
}

// writeTypedError maps pipeline failures onto actionable HTTP responses.
func (s *Server) writeTypedError(w http.ResponseWriter, err error) {
	var inputErr *gait.InputError
	var notReady *model.ModelNotReadyError
	var degenerate *sei.DegenerateFramesError

	switch {
	case errors.As(err, &inputErr):
		writeJSONError(w, http.StatusUnprocessableEntity,
			err.Error()+"; select a longer or clearer video")
	case errors.As(err, &notReady):
		w.Header().Set("Retry-After", "5")
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &degenerate):
		writeJSONError(w, http.StatusUnprocessableEntity,
			err.Error()+"; select a clearer video")
	default:
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("api: failed to encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
