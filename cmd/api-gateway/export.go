package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sciclass-api/pkg/config"
	"github.com/noah-isme/sciclass-api/pkg/logger"
	"github.com/noah-isme/sciclass-api/pkg/storage"
)

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Exports only read, never seed.
	cfg.Seed.DemoData = false

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	sessionID, _ := cmd.Flags().GetString("session")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	dir, _ := cmd.Flags().GetString("dir")
	retention, _ := cmd.Flags().GetDuration("retention")

	a, err := newApp(cmd.Context(), cfg, logr)
	if err != nil {
		return err
	}
	defer a.Close()

	file, err := a.reports.SessionReport(cmd.Context(), sessionID, format)
	if err != nil {
		return err
	}

	switch output {
	case "-":
		_, err = cmd.OutOrStdout().Write(file.Data)
		return err
	case "":
		archive, err := storage.NewReportArchive(dir)
		if err != nil {
			return err
		}
		if output, err = archive.Save(file.Filename, file.Data); err != nil {
			return err
		}
		removed, err := archive.Prune(retention)
		if err != nil {
			logr.Warn("failed to prune old reports", zap.Error(err))
		} else if len(removed) > 0 {
			logr.Info("old reports removed", zap.Strings("files", removed))
		}
	default:
		if err := os.WriteFile(output, file.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
	}
	logr.Info("report exported", zap.String("session_id", sessionID), zap.String("path", output), zap.Int("bytes", len(file.Data)))
	return nil
}
