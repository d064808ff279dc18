package pipeline

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/YuminosukeSato/pricefit/model_selection"
	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

// Manifest records the partition used by a training run so that the
// evaluator can score on the rows the models never saw.
type Manifest struct {
	RunID        string  `json:"run_id"`
	DataPath     string  `json:"data_path"`
	Target       string  `json:"target"`
	NRows        int     `json:"n_rows"`
	TestSize     float64 `json:"test_size"`
	Seed         int64   `json:"seed"`
	TestIndices  []int   `json:"test_indices"`
	TrainIndices []int   `json:"train_indices"`
}

// Split returns the recorded partition.
func (m *Manifest) Split() model_selection.Split {
	return model_selection.Split{Train: m.TrainIndices, Test: m.TestIndices}
}

// WriteManifest writes m as indented JSON, replacing any existing file.
func WriteManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode holdout manifest")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write holdout manifest %s", path)
	}
	return nil
}

// ReadManifest reads and validates a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrArtifactNotFound, "holdout manifest %s", path)
		}
		return nil, errors.Wrapf(err, "failed to read holdout manifest %s", path)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptArtifact, "holdout manifest %s: %v", path, err)
	}
	if err := m.Split().Validate(m.NRows); err != nil {
		return nil, errors.Wrapf(err, "holdout manifest %s", path)
	}
	return &m, nil
}
