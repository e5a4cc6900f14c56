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
	date := flag.String("date", "", "Reporting date (YYYYMMDD), always a month-end, e.g. 20251130")
	flag.Parse()

	if strings.TrimSpace(*date) == "" {
		fmt.Fprintln(os.Stderr, "usage: cross-validation -date YYYYMMDD")
		os.Exit(2)
	}

	logger := config.GetLogger()

	cfg, err := config.Load(*date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// The lineage index is an enhancement; a run without it still archives
	// and resolves versions off the directory scan.
	var index *versioning.LineageIndex
	if err := config.ConnectLineageDatabase(); err != nil {
		config.LogWarn(logger, "CrossValidation", "main", "lineage database unavailable", err)
	} else if db := config.GetDB(); db != nil {
		index = versioning.NewLineageIndex(db)
		if err := index.Migrate(); err != nil {
			config.LogWarn(logger, "CrossValidation", "main", "lineage migration failed", err)
			index = nil
		}
	}

	cv := workflow.NewCrossValidation(cfg, logger, index)
	if err := cv.Run(context.Background()); err != nil {
		config.LogError(logger, "CrossValidation", "main", "run aborted", nil, err)
		os.Exit(1)
	}
}
