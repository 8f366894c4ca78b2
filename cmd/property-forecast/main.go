package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/property-forecast/internal/config"
	"github.com/iwvelando/property-forecast/internal/logging"
	"github.com/iwvelando/property-forecast/internal/optimizer"
	"github.com/iwvelando/property-forecast/internal/projection"
	"github.com/iwvelando/property-forecast/pkg/constants"
	"github.com/iwvelando/property-forecast/pkg/optimization"
	"github.com/iwvelando/property-forecast/pkg/output"
	"github.com/iwvelando/property-forecast/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	fromYear := flag.Int("from", 0, "first operating year to report (overrides projection.from)")
	toYear := flag.Int("to", 0, "last operating year to report (overrides projection.to)")
	skipOptimizer := flag.Bool("no-optimize", false, "ignore the optimizer directive in the configuration")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if *fromYear > 0 {
		conf.Projection.From = *fromYear
	}
	if *toYear > 0 {
		conf.Projection.To = *toYear
	}
	if err := validation.ValidateYearRange(conf.Projection.From, conf.Projection.To); err != nil {
		logger.Fatal("invalid projection range",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if err := config.ValidateRecord(conf.Property); err != nil {
		logger.Fatal("invalid property record",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	engine := projection.NewEngine(logger, conf.Assumptions)

	var summaries []optimization.Summary
	if conf.Optimizer != nil && !*skipOptimizer {
		runner, err := optimizer.NewRunner(logger, engine)
		if err != nil {
			logger.Fatal("failed to initialize optimizer",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		summary, err := runner.Run(conf)
		if err != nil {
			logger.Fatal("optimizer execution failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		summaries = append(summaries, *summary)
	}

	result, err := engine.Project(conf.Property, conf.Projection.From, conf.Projection.To)
	if err != nil {
		logger.Fatal("failed to compute projection",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := output.Write(os.Stdout, outputFormat, result, summaries); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
