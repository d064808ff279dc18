// Command train fits the random forest, decision tree and MLP models on the
// training partition of a sale-price dataset and writes their artifacts
// together with the holdout manifest.
//
//	train -config pricefit.yaml -log-level debug
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/YuminosukeSato/pricefit/internal/config"
	"github.com/YuminosukeSato/pricefit/internal/pipeline"
	"github.com/YuminosukeSato/pricefit/pkg/log"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file (defaults apply when empty)")
	logLevel := flag.String("log-level", "info", "debug|info|warn|error")
	flag.Parse()

	if err := log.SetupLogger(*logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := log.GetLoggerWithName("cmd.train")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("invalid configuration", err)
		os.Exit(1)
	}

	report, err := pipeline.Train(cfg, logger)
	if err != nil {
		logger.Error("training failed", err, log.PathKey, cfg.DataPath)
		os.Exit(1)
	}
	for _, m := range report.Models {
		logger.Debug("artifact written", log.ModelSlotKey, m.Slot, log.PathKey, m.Path)
	}
}
