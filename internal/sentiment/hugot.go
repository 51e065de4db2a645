package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/spacesedan/brandpulse/internal/models"
)

// DEFAULT_HUGOT_MODEL is the ONNX export of distilbert fine-tuned on SST-2
const DEFAULT_HUGOT_MODEL = "KnightsAnalytics/distilbert-base-uncased-finetuned-sst-2-english"

// HugotClassifier runs a text-classification model in process
type HugotClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	mu       sync.Mutex
}

// NewHugotClassifier loads the model at modelPath, downloading the default
// model into that directory first when it does not exist.
func NewHugotClassifier(modelPath string) (*HugotClassifier, error) {
	if _, err := os.Stat(modelPath); errors.Is(err, os.ErrNotExist) {
		slog.Info("[HugotClassifier] Model not found, downloading...", slog.String("model", DEFAULT_HUGOT_MODEL))
		if err := os.MkdirAll(filepath.Dir(modelPath), os.ModePerm); err != nil {
			return nil, fmt.Errorf("create model directory: %w", err)
		}
		downloaded, err := hugot.DownloadModel(DEFAULT_HUGOT_MODEL, filepath.Dir(modelPath), hugot.NewDownloadOptions())
		if err != nil {
			return nil, fmt.Errorf("download model: %w", err)
		}
		modelPath = downloaded
		slog.Info("[HugotClassifier] Model downloaded successfully", slog.String("path", modelPath))
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("init hugot session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "brandSentimentPipeline",
	})
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("init classification pipeline: %w", err)
	}

	slog.Info("[HugotClassifier] Pipeline ready", slog.String("path", modelPath))
	return &HugotClassifier{session: session, pipeline: pipeline}, nil
}

func (h *HugotClassifier) Classify(_ context.Context, text string) (Classification, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	output, err := h.pipeline.RunPipeline([]string{text})
	if err != nil {
		return Classification{}, err
	}
	if len(output.ClassificationOutputs) == 0 {
		return Classification{}, errors.New("pipeline returned no output")
	}

	labels := make([]models.LabelScore, 0, len(output.ClassificationOutputs[0]))
	for _, o := range output.ClassificationOutputs[0] {
		labels = append(labels, models.LabelScore{Label: o.Label, Score: float64(o.Score)})
	}
	return best(labels)
}

func (h *HugotClassifier) Close() error {
	return h.session.Destroy()
}
