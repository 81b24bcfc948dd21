package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title SciClass API
// @version 1.0.0
// @description Science classroom engagement: sessions, Q&A board, quizzes and a two-bucket point ledger.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sciclass",
		Short:        "Science classroom engagement API",
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())
	// serve is the default when no subcommand is given.
	root.RunE = serve.RunE
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a session participation report to a file",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("session", "", "Session ID (required)")
	f.StringP("format", "f", "csv", "Report format (csv, pdf)")
	f.StringP("output", "o", "", "Write to this path instead of the report directory (- for stdout)")
	f.String("dir", "./exports", "Report directory")
	f.Duration("retention", 0, "Remove reports in the directory older than this (0 keeps all)")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}
