package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/core/model"
	"github.com/YuminosukeSato/pricefit/dataset"
	"github.com/YuminosukeSato/pricefit/internal/config"
	"github.com/YuminosukeSato/pricefit/model_selection"
	"github.com/YuminosukeSato/pricefit/pkg/errors"
	"github.com/YuminosukeSato/pricefit/pkg/log"
)

// TrainReport summarises a training run.
type TrainReport struct {
	RunID        string
	NTrain       int
	NTest        int
	Features     []string
	Models       []TrainedModel
	HoldoutPath  string
	TotalElapsed time.Duration
}

// TrainedModel describes one persisted model.
type TrainedModel struct {
	Slot     string
	Type     string
	Path     string
	Duration time.Duration
}

// Train loads the dataset, holds out cfg.TestSize of the rows, fits the
// three models on the remaining rows and persists them together with the
// holdout manifest. Nothing is written unless every model fits.
func Train(cfg *config.Config, logger log.Logger) (*TrainReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	runID := uuid.NewString()
	logger = logger.With(log.RunIDKey, runID, log.PhaseKey, log.PhaseTraining)

	X, y, features, err := loadXY(cfg)
	if err != nil {
		return nil, err
	}
	nRows, nFeatures := X.Dims()

	split, err := model_selection.TrainTestSplit(nRows, cfg.TestSize, cfg.Seed)
	if err != nil {
		return nil, err
	}
	xTrain := model_selection.TakeRows(X, split.Train)
	yTrain := model_selection.TakeVec(y, split.Train)
	logger.Info("dataset split",
		log.OperationKey, log.OperationSplit,
		log.SamplesKey, nRows,
		log.FeaturesKey, nFeatures,
		log.TestSizeKey, cfg.TestSize,
		log.RandomSeedKey, cfg.Seed,
		"train_rows", len(split.Train),
		"test_rows", len(split.Test),
	)

	if cfg.Task == config.TaskClassification {
		classes, _ := model.EncodeLabels(yTrain.RawVector().Data)
		errors.Warn(errors.NewDataConversionWarning("continuous", "multiclass",
			fmt.Sprintf("each of the %d distinct %s values is fitted as its own class", len(classes), cfg.Target)))
	}

	models := newModels(cfg)
	report := &TrainReport{
		RunID:    runID,
		NTrain:   len(split.Train),
		NTest:    len(split.Test),
		Features: features,
	}
	for _, m := range models {
		mlog := logger.With(log.ModelSlotKey, m.slot, log.ModelNameKey, modelType(m.est))
		mlog.Debug("fitting model", log.OperationKey, log.OperationFit, log.TaskKey, cfg.Task)

		fitStart := time.Now()
		err := errors.SafeExecute(m.slot+".Fit", func() error {
			return m.est.Fit(xTrain, yTrain)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fit %s", m.slot)
		}
		elapsed := time.Since(fitStart)
		mlog.Info("model fitted",
			log.OperationKey, log.OperationFit,
			log.SamplesKey, len(split.Train),
			log.FeaturesKey, nFeatures,
			log.DurationMsKey, elapsed.Milliseconds(),
		)

		path, err := cfg.ArtifactPath(m.slot)
		if err != nil {
			return nil, err
		}
		report.Models = append(report.Models, TrainedModel{
			Slot:     m.slot,
			Type:     modelType(m.est),
			Path:     path,
			Duration: elapsed,
		})
	}

	created := time.Now().UTC()
	for i, m := range models {
		path := report.Models[i].Path
		meta := model.Metadata{
			ModelType: report.Models[i].Type,
			RunID:     runID,
			Features:  features,
			NSamples:  len(split.Train),
			CreatedAt: created,
		}
		if err := model.SaveModel(path, meta, m.est); err != nil {
			return nil, errors.Wrapf(err, "failed to save %s", m.slot)
		}
		logger.Info("model saved",
			log.OperationKey, log.OperationSave,
			log.ModelSlotKey, m.slot,
			log.PathKey, path,
		)
	}

	report.HoldoutPath = cfg.HoldoutPath()
	manifest := &Manifest{
		RunID:        runID,
		DataPath:     cfg.DataPath,
		Target:       cfg.Target,
		NRows:        nRows,
		TestSize:     cfg.TestSize,
		Seed:         cfg.Seed,
		TestIndices:  split.Test,
		TrainIndices: split.Train,
	}
	if err := WriteManifest(report.HoldoutPath, manifest); err != nil {
		return nil, err
	}
	report.TotalElapsed = time.Since(start)
	logger.Info("training finished",
		log.PathKey, report.HoldoutPath,
		log.DurationMsKey, report.TotalElapsed.Milliseconds(),
	)
	return report, nil
}

// loadXY reads cfg.DataPath and separates the target column.
func loadXY(cfg *config.Config) (*mat.Dense, *mat.VecDense, []string, error) {
	frame, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return nil, nil, nil, err
	}
	return frame.XY(cfg.Target)
}
