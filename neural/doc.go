// Package neural provides a window model: a small dense network that
// reads a fixed number of past rows and forecasts a fixed number of
// future rows in one call.
//
// The model reads every component of the series (InputSize of them) and
// forecasts the configured target components (OutputSize of them).
// Inputs are normalised per component with the training mean and
// standard deviation. Training is plain stochastic gradient descent on
// the squared error and is deterministic for a given Seed.
//
// # Usage
//
//	cfg := neural.DefaultConfig()
//	cfg.InputLength = 24
//	cfg.OutputLength = 3
//	cfg.InputSize = 2
//	model := neural.New(cfg, timeseries.Name("load"))
//
//	if err := model.Fit(train, forecasting.WithValidation(val)); err != nil {
//		log.Fatal(err)
//	}
//	forecast, err := model.Predict(6, forecasting.UseFullOutputLength(true))
//
// # Long horizons
//
// One network call yields OutputLength rows. With UseFullOutputLength a
// longer horizon is covered by repeated calls, each reading the rows the
// previous calls forecast. Without it a horizon beyond OutputLength is
// forecast one row per call. Either way forecasts are fed back as input,
// so every input component must be a target.
//
// # Checkpoints
//
// SaveCheckpoint writes the fitted model to CheckpointDir/ModelName and
// LoadFromCheckpoint restores it. A checkpoint is an xxhash64 checksum
// followed by zstd-compressed JSON; a model loaded from it predicts
// exactly as the one that was saved.
package neural
