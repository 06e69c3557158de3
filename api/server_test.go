package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjl0830/gait-aware/internal/gait"
	"github.com/tjl0830/gait-aware/internal/history"
	"github.com/tjl0830/gait-aware/internal/model"
	"github.com/tjl0830/gait-aware/internal/pose"
	"github.com/tjl0830/gait-aware/internal/sei"
	"github.com/tjl0830/gait-aware/internal/testutil"
)

var testLabels = []string{"normal", "antalgic", "lurching", "steppage", "trendelenburg"}

// newTestServer wires a server with fake inference backends. withStore
// controls whether a temp-file history database is attached.
func newTestServer(t *testing.T, loader model.Loader, withStore bool) *Server {
	t.Helper()

	session := model.NewSession()
	require.NoError(t, session.Load(context.Background(), loader))

	pipeline := gait.NewPipeline(gait.DefaultConfig(), session)

	var store *history.Store
	if withStore {
		db, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		store = history.NewStore(db)
	}
	return NewServer(session, pipeline, &sei.Generator{}, testLabels, store)
}

func readyLoader() testutil.StaticLoader {
	return testutil.StaticLoader{
		AE:  testutil.IdentityAutoencoder{},
		CLF: testutil.StaticClassifier{Scores: []float32{0.1, 0.6, 0.1, 0.1, 0.1}},
	}
}

func postSequence(t *testing.T, mux *http.ServeMux, seq *pose.PoseSequence) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(seq)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/analyze", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeHappyPath(t *testing.T) {
	srv := newTestServer(t, readyLoader(), true)
	mux := srv.ServeMux()

	rec := postSequence(t, mux, testutil.Sequence(90, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Anomaly)
	require.NotNil(t, resp.Classification)
	assert.NotEmpty(t, resp.RunID, "a configured store must record the run")

	// Identity reconstruction: nothing is abnormal.
	assert.False(t, resp.Anomaly.IsAbnormal)
	assert.Equal(t, 2, resp.Anomaly.NumWindows)
	assert.Len(t, resp.Anomaly.JointErrors, int(gait.NumJoints))

	// The classifier fake puts all the mass on the second label.
	assert.Equal(t, "antalgic", resp.Classification.PredictedClass)
	assert.Len(t, resp.Classification.AllScores, len(testLabels))

	// The recorded run is retrievable.
	getRec := httptest.NewRecorder()
	mux.ServeHTTP(getRec, httptest.NewRequest("GET", "/api/runs/"+resp.RunID, nil))
	assert.Equal(t, http.StatusOK, getRec.Code)

	imgRec := httptest.NewRecorder()
	mux.ServeHTTP(imgRec, httptest.NewRequest("GET", "/api/runs/"+resp.RunID+"/sei.png", nil))
	assert.Equal(t, http.StatusOK, imgRec.Code)
	assert.Equal(t, "image/png", imgRec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(imgRec.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}))
}

func TestAnalyzeTooShortSequence(t *testing.T) {
	srv := newTestServer(t, readyLoader(), false)

	rec := postSequence(t, srv.ServeMux(), testutil.Sequence(10, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "select a longer or clearer video")
}

func TestAnalyzeModelNotLoaded(t *testing.T) {
	session := model.NewSession()
	pipeline := gait.NewPipeline(gait.DefaultConfig(), session)
	srv := NewServer(session, pipeline, &sei.Generator{}, testLabels, nil)

	rec := postSequence(t, srv.ServeMux(), testutil.Sequence(90, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
}

func TestAnalyzeDegenerateFrames(t *testing.T) {
	srv := newTestServer(t, readyLoader(), false)

	// Flatten the body onto one horizontal line: the anomaly chain still
	// runs (constant features, zero error) but the image chain finds no
	// vertical span in any frame.
	seq := testutil.Sequence(90, func(_ int, f *pose.Frame) {
		for i := range f.Landmarks {
			f.Landmarks[i].Y = 0.5
		}
	})

	rec := postSequence(t, srv.ServeMux(), seq)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "select a clearer video")
}

func TestAnalyzeMalformedBody(t *testing.T) {
	srv := newTestServer(t, readyLoader(), false)

	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	srv.ServeMux().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModelStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, readyLoader(), false)

	rec := httptest.NewRecorder()
	srv.ServeMux().ServeHTTP(rec, httptest.NewRequest("GET", "/api/model/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		State string `json:"state"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ready", status.State)
	assert.Empty(t, status.Error)
}

func TestHistoryEndpointsWithoutStore(t *testing.T) {
	srv := newTestServer(t, readyLoader(), false)
	mux := srv.ServeMux()

	for _, path := range []string{"/api/runs", "/api/runs/x", "/api/runs/x/sei.png"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		assert.Equalf(t, http.StatusNotFound, rec.Code, "GET %s", path)
	}
}

func TestRunListingAndLookup(t *testing.T) {
	srv := newTestServer(t, readyLoader(), true)
	mux := srv.ServeMux()

	rec := postSequence(t, mux, testutil.Sequence(90, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	listRec := httptest.NewRecorder()
	mux.ServeHTTP(listRec, httptest.NewRequest("GET", "/api/runs", nil))
	require.Equal(t, http.StatusOK, listRec.Code)

	var runs []history.Run
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "api", runs[0].Source)
	assert.Equal(t, 90, runs[0].FrameCount)

	missingRec := httptest.NewRecorder()
	mux.ServeHTTP(missingRec, httptest.NewRequest("GET", "/api/runs/nope", nil))
	assert.Equal(t, http.StatusNotFound, missingRec.Code)
}

func TestJointErrorChartEndpoint(t *testing.T) {
	srv := newTestServer(t, readyLoader(), true)
	mux := srv.ServeMux()

	rec := postSequence(t, mux, testutil.Sequence(90, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	chartRec := httptest.NewRecorder()
	mux.ServeHTTP(chartRec, httptest.NewRequest("GET", "/debug/runs/"+resp.RunID+"/joint-errors", nil))
	require.Equal(t, http.StatusOK, chartRec.Code)
	assert.Contains(t, chartRec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, chartRec.Body.String(), "echarts")
}
