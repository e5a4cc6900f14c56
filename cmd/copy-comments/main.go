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
	date := flag.String("date", "", "Reporting date (YYYYMMDD) whose latest snapshot receives the comments")
	flag.Parse()

	if strings.TrimSpace(*date) == "" {
		fmt.Fprintln(os.Stderr, "usage: copy-comments -date YYYYMMDD")
		os.Exit(2)
	}

	logger := config.GetLogger()

	cfg, err := config.Load(*date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	var index *versioning.LineageIndex
	if err := config.ConnectLineageDatabase(); err != nil {
		config.LogWarn(logger, "CommentCarryForward", "main", "lineage database unavailable", err)
	} else if db := config.GetDB(); db != nil {
		index = versioning.NewLineageIndex(db)
	}

	resolver := versioning.NewResolver(cfg.VersionedDir, index, logger)
	carry := workflow.NewCommentCarryForward(cfg, logger, resolver)
	if err := carry.Run(context.Background()); err != nil {
		config.LogError(logger, "CommentCarryForward", "main", "run aborted", nil, err)
		os.Exit(1)
	}
}
