// Standard attribute keys for training and evaluation logs.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that logs from the trainer and the evaluator can be
// filtered the same way.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the type of model, e.g. "RandomForestRegressor".
	ModelNameKey = "model.name"

	// ModelSlotKey identifies the configured slot: random_forest, decision_tree or mlp.
	ModelSlotKey = "model.slot"

	// RunIDKey identifies one training run across artifacts and manifest.
	RunIDKey = "run.id"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	ClassesKey  = "data.classes"
	PathKey     = "data.path"
	TargetKey   = "data.target"
)

// Performance and metrics.
const (
	DurationMsKey = "perf.duration_ms"
	MAEKey        = "metrics.mae"
	MSEKey        = "metrics.mse"
	LossKey       = "metrics.loss"
	IterationKey  = "training.iteration"
)

// Error context.
const (
	ErrorKey      = "error"
	StacktraceKey = "error.stacktrace"
	ErrorTypeKey  = "error.type"
)

// Configuration.
const (
	RandomSeedKey = "config.random_seed"
	TestSizeKey   = "config.test_size"
	TaskKey       = "config.task"
)

// Standard attribute values.
const (
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationSave     = "save"
	OperationLoad     = "load"
	OperationSplit    = "split"
	OperationEvaluate = "evaluate"

	PhaseTraining   = "training"
	PhaseEvaluation = "evaluation"
)
