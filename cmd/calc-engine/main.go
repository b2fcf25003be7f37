package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fincalcs/calc-engine/internal/config"
	"github.com/fincalcs/calc-engine/internal/scenario"
	"github.com/fincalcs/calc-engine/internal/server"
	"github.com/fincalcs/calc-engine/internal/store"
	"github.com/fincalcs/calc-engine/pkg/constants"
	"github.com/fincalcs/calc-engine/pkg/output"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "start the HTTP API instead of running configured scenarios")
	listen := flag.String("listen", "", "HTTP listen address override")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	composerConfig, err := conf.ComposerConfig()
	if err != nil {
		logger.Fatal("failed to build bracket tables from configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	composer := scenario.NewComposer(logger, composerConfig)

	if *serve {
		runServer(logger, conf, composer, *listen)
		return
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := output.ValidateFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	var results []*scenario.Result
	for _, entry := range conf.Scenarios {
		if !entry.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", entry.Name),
				zap.String("op", "main"),
			)
			continue
		}
		result, err := composer.Run(entry.Request())
		if err != nil {
			logger.Fatal(fmt.Sprintf("failed to run scenario %s", entry.Name),
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		results = append(results, result)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(results)
	case constants.OutputFormatCSV:
		output.CsvFormat(results)
	case constants.OutputFormatJSON:
		if err := output.JSONFormat(results); err != nil {
			logger.Fatal("failed to encode results",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}

func runServer(logger *zap.Logger, conf *config.Configuration, composer *scenario.Composer, listenOverride string) {
	var st store.Store = store.NewNoopStore()
	if conf.Server.DataFile != "" {
		sqliteStore, err := store.NewSQLiteStore(conf.Server.DataFile)
		if err != nil {
			logger.Fatal("failed to open scenario store",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		st = sqliteStore
	}
	defer func() {
		_ = st.Close()
	}()

	address := conf.Server.Address
	if listenOverride != "" {
		address = listenOverride
	}
	if address == "" {
		address = constants.DefaultServerAddress
	}

	handler := server.NewHandler(logger, composer, st, conf, version)
	logger.Info("starting HTTP API",
		zap.String("op", "main"),
		zap.String("address", address),
	)
	if err := http.ListenAndServe(address, handler); err != nil {
		logger.Fatal("server stopped",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
