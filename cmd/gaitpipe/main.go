// Command gaitpipe runs the gait analysis pipeline over a pose-sequence
// document: it scores the sequence for per-joint anomalies against the
// reconstruction model, builds the skeleton energy image, classifies it,
// and writes the result artifacts. It can also serve the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tjl0830/gait-aware/api"
	"github.com/tjl0830/gait-aware/internal/config"
	"github.com/tjl0830/gait-aware/internal/gait"
	"github.com/tjl0830/gait-aware/internal/history"
	"github.com/tjl0830/gait-aware/internal/model"
	"github.com/tjl0830/gait-aware/internal/monitor"
	"github.com/tjl0830/gait-aware/internal/pose"
	"github.com/tjl0830/gait-aware/internal/sei"
)

var (
	inputPath  = flag.String("input", "", "Pose-sequence JSON file to analyze")
	outDir     = flag.String("out", ".", "Directory for result artifacts")
	configPath = flag.String("config", "", "Tuning config JSON (optional)")
	modelURL   = flag.String("model-url", "", "Inference backend base URL (overrides config)")
	dbPath     = flag.String("db", "", "History database path (optional)")
	plots      = flag.Bool("plots", false, "Also write debug error plots")
	seiOnly    = flag.Bool("sei-only", false, "Generate only the energy image (no models needed)")
	listen     = flag.String("listen", "", "Serve the HTTP API on this address instead of running one-shot")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	backendURL := cfg.GetInferenceURL()
	if *modelURL != "" {
		backendURL = *modelURL
	}

	session := model.NewSession()
	defer session.Dispose()
	if backendURL != "" {
		log.Printf("loading inference backend at %s", backendURL)
		if err := session.Load(ctx, &model.HTTPLoader{Base: backendURL}); err != nil {
			log.Fatalf("model load failed: %v", err)
		}
	}

	pipeline := gait.NewPipeline(cfg.PipelineConfig(), session)
	generator := &sei.Generator{
		Size:      cfg.GetSEISize(),
		Sigma:     cfg.GetGaussianSigma(),
		Thickness: cfg.GetLineThickness(),
	}

	// Classification needs the energy image at the classifier's input
	// resolution; catch a mismatched sei_size here rather than failing
	// every request.
	if *listen != "" || !*seiOnly {
		if err := checkClassifierSize(cfg.GetSEISize()); err != nil {
			log.Fatalf("invalid configuration: %v", err)
		}
	}

	var store *history.Store
	if *dbPath != "" {
		db, err := history.Open(*dbPath)
		if err != nil {
			log.Fatalf("failed to open history database: %v", err)
		}
		defer db.Close()
		store = history.NewStore(db)
	}

	if *listen != "" {
		server := api.NewServer(session, pipeline, generator, cfg.GetLabels(), store)
		log.Printf("serving API on %s", *listen)
		log.Fatal(http.ListenAndServe(*listen, server.ServeMux()))
	}

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: gaitpipe -input sequence.json [-out dir] [-model-url URL] ...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := runOnce(ctx, cfg, pipeline, generator, session, store); err != nil {
		log.Fatalf("analysis failed: %v", err)
	}
}

// runOnce analyzes one file and writes artifacts into the output dir.
func runOnce(ctx context.Context, cfg *config.TuningConfig, pipeline *gait.Pipeline, generator *sei.Generator, session *model.Session, store *history.Store) error {
	f, err := os.Open(*inputPath)
	if err != nil {
		return err
	}
	seq, err := pose.ParseSequence(f)
	f.Close()
	if err != nil {
		return err
	}
	log.Printf("loaded %d frames from %s", seq.NumFrames(), *inputPath)

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return err
	}

	// Energy image chain runs regardless; the anomaly chain and
	// classification need a loaded model.
	img, err := generator.Generate(seq)
	if err != nil {
		return err
	}
	pngBytes, err := img.EncodePNG()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(*outDir, "sei.png"), pngBytes, 0644); err != nil {
		return err
	}
	log.Printf("wrote sei.png (%d bytes)", len(pngBytes))

	if *seiOnly {
		return nil
	}

	scores, anomaly, err := pipeline.Score(ctx, seq)
	if err != nil {
		return err
	}
	if err := writeJSONFile(filepath.Join(*outDir, "anomaly.json"), anomaly); err != nil {
		return err
	}
	verdict := "normal"
	if anomaly.IsAbnormal {
		verdict = "abnormal"
	}
	log.Printf("anomaly verdict: %s (worst=%s confidence=%.0f%%)", verdict, anomaly.WorstJoint, anomaly.Confidence)

	clf, err := session.Classifier()
	if err != nil {
		return err
	}
	classification, err := model.InvokeClassifier(ctx, clf, cfg.GetLabels(), img.Pix, img.Size, model.NewTensorArena())
	if err != nil {
		return err
	}
	if err := writeJSONFile(filepath.Join(*outDir, "classification.json"), classification); err != nil {
		return err
	}
	log.Printf("classification: %s (%.2f)", classification.PredictedClass, classification.Confidence)

	if *plots {
		if err := monitor.SaveWindowErrorPlot(scores, filepath.Join(*outDir, "window_errors.png")); err != nil {
			return err
		}
		if err := monitor.SaveJointErrorPlot(anomaly, filepath.Join(*outDir, "joint_errors.png")); err != nil {
			return err
		}
		log.Printf("wrote debug plots")
	}

	if store != nil {
		anomalyJSON, _ := json.Marshal(anomaly)
		classifyJSON, _ := json.Marshal(classification)
		run := &history.Run{
			Source:          filepath.Base(*inputPath),
			FrameCount:      seq.NumFrames(),
			IsAbnormal:      anomaly.IsAbnormal,
			MeanError:       anomaly.MeanError,
			MaxError:        anomaly.MaxError,
			WorstJoint:      anomaly.WorstJoint,
			Confidence:      anomaly.Confidence,
			PredictedClass:  classification.PredictedClass,
			ClassConfidence: classification.Confidence,
			AnomalyJSON:     anomalyJSON,
			ClassifyJSON:    classifyJSON,
			SEIPNG:          pngBytes,
		}
		if err := store.Insert(run); err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		log.Printf("recorded run %s", run.RunID)
	}
	return nil
}

// checkClassifierSize rejects tuning whose energy image cannot feed the
// classifier. sei-only runs may use any size.
func checkClassifierSize(size int) error {
	if size != model.ClassifierInputSize {
		return fmt.Errorf("sei_size %d does not match the classifier input size %d (use -sei-only for other sizes)",
			size, model.ClassifierInputSize)
	}
	return nil
}

func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
