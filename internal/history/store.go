package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one persisted analysis: the anomaly verdict, the classification
// verdict, the energy image bytes, and enough summary columns to list
// runs without unpacking JSON.
type Run struct {
	RunID           string          `json:"run_id"`
	CreatedAt       int64           `json:"created_at"`
	Source          string          `json:"source"`
	FrameCount      int             `json:"frame_count"`
	IsAbnormal      bool            `json:"is_abnormal"`
	MeanError       float64         `json:"mean_error"`
	MaxError        float64         `json:"max_error"`
	WorstJoint      string          `json:"worst_joint"`
	Confidence      float64         `json:"confidence"`
	PredictedClass  string          `json:"predicted_class"`
	ClassConfidence float64         `json:"class_confidence"`
	AnomalyJSON     json.RawMessage `json:"anomaly_json,omitempty"`
	ClassifyJSON    json.RawMessage `json:"classification_json,omitempty"`
	SEIPNG          []byte          `json:"-"`
}

// Store provides persistence for analysis runs.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open history database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Insert persists a run. An empty RunID gets a fresh UUID; a zero
// CreatedAt gets the current time.
func (s *Store) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	_, err := s.db.Exec(`
		INSERT INTO analysis_runs (
			run_id, created_at, source, frame_count,
			is_abnormal, mean_error, max_error, worst_joint, confidence,
			predicted_class, class_confidence,
			anomaly_json, classification_json, sei_png
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.CreatedAt, run.Source, run.FrameCount,
		run.IsAbnormal, run.MeanError, run.MaxError, run.WorstJoint, run.Confidence,
		run.PredictedClass, run.ClassConfidence,
		nullableJSON(run.AnomalyJSON), nullableJSON(run.ClassifyJSON), run.SEIPNG,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return nil
}

// Get returns one run including its JSON payloads, or sql.ErrNoRows.
// The energy image is not loaded; use SEIImage.
func (s *Store) Get(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, created_at, source, frame_count,
			is_abnormal, mean_error, max_error, worst_joint, confidence,
			predicted_class, class_confidence, anomaly_json, classification_json
		FROM analysis_runs WHERE run_id = ?`, runID)

	var run Run
	var anomaly, classify sql.NullString
	err := row.Scan(&run.RunID, &run.CreatedAt, &run.Source, &run.FrameCount,
		&run.IsAbnormal, &run.MeanError, &run.MaxError, &run.WorstJoint, &run.Confidence,
		&run.PredictedClass, &run.ClassConfidence, &anomaly, &classify)
	if err != nil {
		return nil, err
	}
	if anomaly.Valid {
		run.AnomalyJSON = json.RawMessage(anomaly.String)
	}
	if classify.Valid {
		run.ClassifyJSON = json.RawMessage(classify.String)
	}
	return &run, nil
}

// List returns recent run summaries (no JSON payloads, no image),
// newest first.
func (s *Store) List(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT run_id, created_at, source, frame_count,
			is_abnormal, mean_error, max_error, worst_joint, confidence,
			predicted_class, class_confidence
		FROM analysis_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.RunID, &run.CreatedAt, &run.Source, &run.FrameCount,
			&run.IsAbnormal, &run.MeanError, &run.MaxError, &run.WorstJoint, &run.Confidence,
			&run.PredictedClass, &run.ClassConfidence); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// SEIImage returns the stored energy image PNG for a run, or
// sql.ErrNoRows.
func (s *Store) SEIImage(runID string) ([]byte, error) {
	var png []byte
	err := s.db.QueryRow(`SELECT sei_png FROM analysis_runs WHERE run_id = ?`, runID).Scan(&png)
	if err != nil {
		return nil, err
	}
	return png, nil
}

// Delete removes a run.
func (s *Store) Delete(runID string) error {
	_, err := s.db.Exec(`DELETE FROM analysis_runs WHERE run_id = ?`, runID)
	return err
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
