// Command sari-import loads design codes and saris from CSV files straight into
// the database configured by DATABASE_URL.
//
//	sari-import -items designs.csv -saris saris.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kendall-kelly/sari-inventory-api/config"
	"github.com/kendall-kelly/sari-inventory-api/models"
	"github.com/kendall-kelly/sari-inventory-api/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	itemsPath := flag.String("items", "", "CSV of design codes (design_code,kora,white,self_dyed,contrast_dyed)")
	sarisPath := flag.String("saris", "", "CSV of saris (serial_number,design_code,entry_date,current_process,current_location)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)

	if *itemsPath == "" && *sarisPath == "" {
		logger.Fatal("nothing to import, pass -items and/or -saris")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}

	err = importFiles(ctx, db, logger, *itemsPath, *sarisPath)
	if closeErr := config.CloseDatabase(db); closeErr != nil {
		logger.WithError(closeErr).Warn("failed to close database")
	}
	if err != nil {
		logger.WithError(err).Fatal("import failed")
	}
}

// importFiles migrates the schema and imports items before saris, so saris can reference the imported codes
func importFiles(ctx context.Context, db *gorm.DB, logger logrus.FieldLogger, itemsPath, sarisPath string) error {
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	imports := services.NewImportService(db, nil, nil, nil, logger)
	steps := []struct {
		path string
		run  func(context.Context, io.Reader) (*services.ImportResult, error)
	}{
		{itemsPath, imports.ImportItems},
		{sarisPath, imports.ImportSaris},
	}

	for _, step := range steps {
		if step.path == "" {
			continue
		}
		if err := importFile(ctx, step.path, step.run, logger); err != nil {
			return err
		}
	}
	return nil
}

func importFile(ctx context.Context, path string, run func(context.Context, io.Reader) (*services.ImportResult, error), logger logrus.FieldLogger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	result, err := run(ctx, f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, rowErr := range result.Errors {
		logger.WithFields(logrus.Fields{"file": path, "row": rowErr.Row}).Warn(rowErr.Message)
	}
	return nil
}
