package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roachag/blog-export/config"
	"github.com/roachag/blog-export/export"
	"github.com/roachag/blog-export/fetch"
	"github.com/roachag/blog-export/ledger"
	"github.com/roachag/blog-export/pipeline"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if os.Getenv("DEBUG") == "true" {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func main() {
	configPath := flag.String("config", getEnv("BLOG_EXPORT_CONFIG", "blog-export.yaml"), "Path to YAML config override (BLOG_EXPORT_CONFIG)")
	outputDir := flag.String("output", getEnv("BLOG_EXPORT_OUTPUT", ""), "Directory for export files (BLOG_EXPORT_OUTPUT)")
	ledgerPath := flag.String("ledger", getEnv("BLOG_EXPORT_LEDGER", ""), "Path to SQLite outcome ledger, empty disables (BLOG_EXPORT_LEDGER)")
	flag.Parse()

	log := newLogger()

	cfg := config.Default()
	fileCfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}
	if err := fileCfg.Apply(cfg); err != nil {
		log.Fatalf("Failed to apply config file: %v", err)
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *ledgerPath != "" {
		cfg.LedgerPath = *ledgerPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	session := fetch.NewSession(cfg, log)
	pipe := pipeline.New(cfg, session, log)

	if cfg.LedgerPath != "" {
		store, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			log.Fatalf("Failed to open ledger: %v", err)
		}
		defer store.Close()
		pipe.Ledger = store
	}

	result, err := pipe.Run(context.Background())
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	xlsxPath, csvPath := export.Filenames(cfg.OutputDir, time.Now())
	if err := export.WriteXLSX(xlsxPath, result.Records); err != nil {
		log.Fatalf("Failed to write spreadsheet: %v", err)
	}
	if err := export.WriteCSV(csvPath, result.Records); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}

	log.WithFields(logrus.Fields{
		"posts": len(result.Records),
		"xlsx":  xlsxPath,
		"csv":   csvPath,
	}).Info("export written")
}
