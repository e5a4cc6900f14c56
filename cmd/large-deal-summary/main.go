package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/crossval_backend/config"
	"bitbucket.org/mmdatafocus/crossval_backend/versioning"
	"bitbucket.org/mmdatafocus/crossval_backend/workflow"
)

func main() {
	date := flag.String("date", "", "Reporting date (YYYYMMDD) to summarize")
	flag.Parse()

	if strings.TrimSpace(*date) == "" {
		fmt.Fprintln(os.Stderr, "usage: large-deal-summary -date YYYYMMDD")
		os.Exit(2)
	}

	logger := config.GetLogger()

	cfg, err := config.Load(*date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Reads the published summary report, so resolve against that folder.
	resolver := versioning.NewResolver(cfg.SummaryReportDir, nil, logger)
	job := workflow.NewLargeDealSummary(cfg, logger, resolver)
	if err := job.Run(context.Background()); err != nil {
		config.LogError(logger, "LargeDealSummary", "main", "run aborted", nil, err)
		os.Exit(1)
	}
}
