package pipeline

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/core/model"
	"github.com/YuminosukeSato/pricefit/internal/config"
	"github.com/YuminosukeSato/pricefit/metrics"
	"github.com/YuminosukeSato/pricefit/model_selection"
	"github.com/YuminosukeSato/pricefit/pkg/errors"
	"github.com/YuminosukeSato/pricefit/pkg/log"
)

// EvalResult holds the metrics of one model.
type EvalResult struct {
	Model string
	MAE   float64
	MSE   float64
	NRows int
}

type loadedModel struct {
	slot string
	est  model.Estimator
	meta model.Metadata
}

// Evaluate scores the models listed in cfg.Evaluate.Models and prints one
// line per model to w:
//
//	Random Forest MAE: 17544.12, MSE: 812345678.9
//
// Every artifact is loaded before the dataset is read, and nothing is
// printed unless every model was scored.
func Evaluate(cfg *config.Config, logger log.Logger, w io.Writer) ([]EvalResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logger.With(log.PhaseKey, log.PhaseEvaluation)

	loaded := make([]loadedModel, 0, len(cfg.Evaluate.Models))
	for _, slot := range cfg.Evaluate.Models {
		path, err := cfg.ArtifactPath(slot)
		if err != nil {
			return nil, err
		}
		est, meta, err := model.LoadModel(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load %s model", slot)
		}
		logger.Debug("model loaded",
			log.OperationKey, log.OperationLoad,
			log.ModelSlotKey, slot,
			log.ModelNameKey, meta.ModelType,
			log.RunIDKey, meta.RunID,
			log.PathKey, path,
		)
		loaded = append(loaded, loadedModel{slot: slot, est: est, meta: meta})
	}

	X, y, features, err := loadXY(cfg)
	if err != nil {
		return nil, err
	}
	X, y, err = selectRows(cfg, loaded, X, y)
	if err != nil {
		return nil, err
	}
	nRows, _ := X.Dims()

	results := make([]EvalResult, 0, len(loaded))
	for _, m := range loaded {
		if err := checkFeatures(m.meta.Features, features); err != nil {
			return nil, errors.Wrapf(err, "%s model does not match %s", m.slot, cfg.DataPath)
		}
		pred, err := m.est.Predict(X)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to predict with %s", m.slot)
		}
		yPred := metrics.ColumnVector(pred)
		mae, err := metrics.MAE(y, yPred)
		if err != nil {
			return nil, err
		}
		mse, err := metrics.MSE(y, yPred)
		if err != nil {
			return nil, err
		}
		logger.Info("model evaluated",
			log.OperationKey, log.OperationEvaluate,
			log.ModelSlotKey, m.slot,
			log.SamplesKey, nRows,
			log.MAEKey, mae,
			log.MSEKey, mse,
		)
		results = append(results, EvalResult{Model: m.slot, MAE: mae, MSE: mse, NRows: nRows})
	}

	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%s MAE: %s, MSE: %s\n",
			config.DisplayName(r.Model), formatMetric(r.MAE), formatMetric(r.MSE)); err != nil {
			return nil, errors.Wrap(err, "failed to write metrics")
		}
	}
	return results, nil
}

// selectRows applies cfg.Evaluate.On to the loaded data. Holdout rows are
// only used when the manifest comes from the run that trained every model.
func selectRows(cfg *config.Config, loaded []loadedModel, X *mat.Dense, y *mat.VecDense) (*mat.Dense, *mat.VecDense, error) {
	if cfg.Evaluate.On == config.EvalOnFull {
		return X, y, nil
	}
	manifest, err := ReadManifest(cfg.HoldoutPath())
	if err != nil {
		return nil, nil, err
	}
	for _, m := range loaded {
		if m.meta.RunID != manifest.RunID {
			return nil, nil, errors.NewValidationError("holdout.run_id",
				fmt.Sprintf("manifest belongs to run %s but the %s model was trained in run %s",
					manifest.RunID, m.slot, m.meta.RunID),
				manifest.RunID)
		}
	}
	nRows, _ := X.Dims()
	if manifest.NRows != nRows {
		return nil, nil, errors.NewValidationError("holdout.n_rows",
			fmt.Sprintf("manifest was written for %d rows but %s has %d", manifest.NRows, cfg.DataPath, nRows),
			manifest.NRows)
	}
	if manifest.Target != cfg.Target {
		return nil, nil, errors.NewValidationError("holdout.target", "manifest was written for another target", manifest.Target)
	}
	if len(manifest.TestIndices) == 0 {
		return nil, nil, errors.NewValidationError("holdout.test_indices", "manifest holds no test rows", 0)
	}
	idx := model_selection.Sorted(manifest.TestIndices)
	return model_selection.TakeRows(X, idx), model_selection.TakeVec(y, idx), nil
}

// checkFeatures requires the evaluated columns to equal the training
// columns, in order.
func checkFeatures(trained, got []string) error {
	if len(trained) != len(got) {
		return errors.NewInputShapeError("evaluation", []int{len(trained)}, []int{len(got)})
	}
	for i := range trained {
		if trained[i] != got[i] {
			return errors.NewFeatureMismatchError("evaluation", trained[i], i, indexOf(got, trained[i]))
		}
	}
	return nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
