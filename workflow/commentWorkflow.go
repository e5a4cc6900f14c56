package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/crossval_backend/config"
	"bitbucket.org/mmdatafocus/crossval_backend/models"
	"bitbucket.org/mmdatafocus/crossval_backend/reports"
	"bitbucket.org/mmdatafocus/crossval_backend/utils"
	"bitbucket.org/mmdatafocus/crossval_backend/versioning"
)

// CommentCarryForward migrates analyst comments from the previous snapshot
// version into the latest one, keyed by deal name, across the two highlight
// views. It runs as a later pass over the archived output of a completed
// cross-validation run.
type CommentCarryForward struct {
	cfg      config.Config
	logger   *logrus.Logger
	resolver *versioning.Resolver
}

func NewCommentCarryForward(cfg config.Config, logger *logrus.Logger, resolver *versioning.Resolver) *CommentCarryForward {
	return &CommentCarryForward{cfg: cfg, logger: logger, resolver: resolver}
}

// Run carries comments forward for the configured date. Failing to resolve
// the latest version is an error: that file is this pass's own subject. A
// missing previous version only means there is nothing to inherit; the pass
// is skipped with a warning and the latest snapshot stands as produced.
func (c *CommentCarryForward) Run(ctx context.Context) error {
	// Unlike the archival copies this pass has no fallback: without the
	// versioned folder there is neither a subject nor a source.
	if c.resolver.Dir() == "" {
		return errors.New("versioned files folder is not configured")
	}

	date := c.cfg.ReportDate

	latest, err := c.resolver.Latest(ctx, date)
	if err != nil {
		return err
	}
	c.logger.WithFields(logrus.Fields{
		"module":  "CommentCarryForward",
		"date":    date,
		"version": latest.N,
		"path":    latest.Path,
	}).Info("latest snapshot resolved")

	prev, err := c.resolver.Previous(ctx, date, latest.N)
	if err != nil {
		var versionMissing *utils.VersionNotFoundError
		if errors.As(err, &versionMissing) {
			config.LogWarn(c.logger, "CommentCarryForward", "Run", "previous version missing, pass skipped", err)
			return nil
		}
		return err
	}
	if prev == nil {
		c.logger.WithFields(logrus.Fields{
			"module": "CommentCarryForward",
			"date":   date,
		}).Warn("no prior-month snapshot, nothing to inherit")
		return nil
	}
	c.logger.WithFields(logrus.Fields{
		"module":   "CommentCarryForward",
		"previous": prev.Path,
	}).Info("previous snapshot resolved")

	comments, err := reports.ExtractComments(prev.Path, models.CommentSheets, c.logger)
	if err != nil {
		config.LogWarn(c.logger, "CommentCarryForward", "Run", "extract comments, pass skipped", err)
		return nil
	}
	if len(comments) == 0 {
		c.logger.WithField("module", "CommentCarryForward").Warn("previous snapshot has no comments")
		return nil
	}

	updated, err := reports.UpdateComments(latest.Path, models.CommentSheets, comments, c.cfg.CommentFillBlankOnly, c.logger)
	if err != nil {
		config.LogWarn(c.logger, "CommentCarryForward", "Run", "update comments, pass skipped", err)
		return nil
	}
	c.logger.WithFields(logrus.Fields{
		"module":   "CommentCarryForward",
		"comments": len(comments),
		"updated":  updated,
	}).Info("comments carried forward")

	c.saveSummaryCopy(ctx, latest.Path)
	return nil
}

// saveSummaryCopy publishes the annotated snapshot to the summary-report
// folder as the next version for the date there. Best effort.
func (c *CommentCarryForward) saveSummaryCopy(ctx context.Context, src string) {
	if c.cfg.SummaryReportDir == "" {
		return
	}
	if err := os.MkdirAll(c.cfg.SummaryReportDir, 0o755); err != nil {
		config.LogWarn(c.logger, "CommentCarryForward", "saveSummaryCopy", "create summary folder", err)
		return
	}

	n, err := versioning.ScanNext(c.cfg.SummaryReportDir, c.cfg.ReportDate)
	if err != nil {
		config.LogWarn(c.logger, "CommentCarryForward", "saveSummaryCopy", "determine next version", err)
		return
	}
	dst := filepath.Join(c.cfg.SummaryReportDir, c.cfg.VersionedFilename(n))
	if err := utils.CopyFile(src, dst); err != nil {
		config.LogWarn(c.logger, "CommentCarryForward", "saveSummaryCopy", "copy summary file", err)
		return
	}
	c.logger.WithFields(logrus.Fields{
		"module":  "CommentCarryForward",
		"version": n,
		"path":    dst,
	}).Info("summary report copy saved")
}

// buildCommentMap collects the deal-name to comment map from in-memory view
// rows, skipping blanks. The file-backed equivalent lives in reports; this
// one exists so the merge semantics stay testable without a workbook.
func buildCommentMap(views ...[]*models.Deal) map[string]string {
	comments := map[string]string{}
	for _, view := range views {
		for _, d := range view {
			if d.Name == "" || d.Comment == "" {
				continue
			}
			comments[d.Name] = d.Comment
		}
	}
	return comments
}

// applyComments merges inherited comments into rows and reports how many
// changed. Same policy as the workbook-level update.
func applyComments(rows []*models.Deal, inherited map[string]string, fillBlankOnly bool) int {
	updated := 0
	for _, d := range rows {
		comment, ok := inherited[d.Name]
		if !ok {
			continue
		}
		merged, changed := models.MergeComment(d.Comment, comment, fillBlankOnly)
		if changed {
			d.Comment = merged
			updated++
		}
	}
	return updated
}
