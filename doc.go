// Package pricefit trains and evaluates sale-price models on tabular
// housing data.
//
// Two programs share one configuration:
//
//   - cmd/train loads the CSV, drops the target column (SalePrice by
//     default), holds out 20% of the rows with seed 42 and fits a random
//     forest, a decision tree and a multilayer perceptron on the rest. Each
//     model is written to its own artifact file (rf_model.gob, dt_model.gob,
//     ann_model.gob) and the held out rows are recorded in holdout.json.
//   - cmd/evaluate reloads the forest and prints its MAE and MSE:
//
//	Random Forest MAE: 17544.12, MSE: 812345678.9
//
// # Packages
//
//   - dataset: CSV loading and feature/target separation
//   - model_selection: seeded train/test partition
//   - sklearn/tree, sklearn/ensemble, sklearn/neural_network: the models,
//     each with a Regressor and a Classifier variant
//   - preprocessing: StandardScaler and ScaledEstimator
//   - metrics: MAE, MSE, RMSE, R² and accuracy
//   - core/model: estimator interfaces and the gob artifact codec
//   - core/parallel: bounded worker pools
//   - internal/config, internal/pipeline: the programs' configuration and flow
//   - pkg/errors, pkg/log: structured errors and zerolog based logging
//
// # Library use
//
//	rf := ensemble.NewRandomForestRegressor(
//	    ensemble.WithNEstimators(100),
//	    ensemble.WithRandomState(42),
//	)
//	if err := rf.Fit(X, y); err != nil {
//	    return err
//	}
//	err := model.SaveModel("rf_model.gob", model.Metadata{Features: names}, rf)
package pricefit
