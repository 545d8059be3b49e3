package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"labelpipe/internal/config"
	"labelpipe/internal/imgio"
	"labelpipe/internal/logger"
	"labelpipe/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "pipeline configuration YAML (defaults apply when omitted)")
	inputPath := flag.String("in", "", "input image (PNG, JPEG or TIFF)")
	outputPath := flag.String("out", "objects.csv", "output object table")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	appLog := logger.NewConsoleLogger(level)

	if err := run(*configPath, *inputPath, *outputPath, appLog); err != nil {
		appLog.Error("Main", err, nil)
		os.Exit(1)
	}
}

func run(configPath, inputPath, outputPath string, log logger.Logger) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	data, err := imgio.Load(inputPath)
	if err != nil {
		return err
	}
	defer data.Close()

	coordinator, err := pipeline.NewCoordinator(cfg, log)
	if err != nil {
		return err
	}

	result, err := coordinator.Run(data.Mat)
	if err != nil {
		return err
	}
	defer result.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if result.Empty {
		// A header-only table: a valid outcome, not a failure.
		if err := pipeline.WriteCSV(out, nil, []int{}); err != nil {
			return err
		}
		log.Warning("Main", "no objects qualified; wrote empty table", map[string]interface{}{
			"output": outputPath,
		})
		return nil
	}

	ids := make([]int, 0, len(result.Annotations))
	for _, ann := range result.Annotations {
		ids = append(ids, ann.Label)
	}
	if err := pipeline.WriteCSV(out, result.Records, ids); err != nil {
		return err
	}

	log.Info("Main", "object table written", map[string]interface{}{
		"output":  outputPath,
		"objects": len(ids),
	})
	return nil
}
