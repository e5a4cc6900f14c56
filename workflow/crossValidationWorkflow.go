// Package workflow implements the reconciliation pipeline: merging the
// internal model's output with the external engine's, deriving the delta
// metrics, classifying discrepancies, and carrying analyst comments forward
// across snapshot versions.
package workflow

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/crossval_backend/config"
	"bitbucket.org/mmdatafocus/crossval_backend/models"
	"bitbucket.org/mmdatafocus/crossval_backend/reports"
	"bitbucket.org/mmdatafocus/crossval_backend/utils"
	"bitbucket.org/mmdatafocus/crossval_backend/versioning"
)

// CrossValidation is one reconciliation run for a reporting date.
type CrossValidation struct {
	cfg    config.Config
	logger *logrus.Logger
	index  *versioning.LineageIndex
}

func NewCrossValidation(cfg config.Config, logger *logrus.Logger, index *versioning.LineageIndex) *CrossValidation {
	return &CrossValidation{cfg: cfg, logger: logger, index: index}
}

// Run executes the full pipeline: load, merge, derive, classify, build
// views, persist, then the best-effort archival copy. Any error before
// persistence aborts the run with no partial snapshot on disk; archival
// problems are warnings only.
func (cv *CrossValidation) Run(ctx context.Context) error {
	current, prior, err := utils.ReportDateLabels(cv.cfg.ReportDate)
	if err != nil {
		return err
	}
	labels := models.DateLabels{Current: current, Prior: prior}

	cv.logger.WithFields(logrus.Fields{
		"module":  "CrossValidation",
		"date":    cv.cfg.ReportDate,
		"current": labels.Current,
		"prior":   labels.Prior,
	}).Info("starting cross-validation run")

	aatRows, err := reports.LoadAATTable(cv.cfg.AATDataPath(), labels)
	if err != nil {
		return err
	}
	statusRows, err := reports.LoadStatusTable(cv.cfg.StatusFilePath(), labels)
	if err != nil {
		return err
	}
	owners, err := reports.LoadOwnerMap(cv.cfg.OwnerMapPath())
	if err != nil {
		return err
	}

	deals := MergeDealTables(aatRows, statusRows, cv.logger)
	DeriveMetrics(deals, owners)
	RankByMarketValue(deals)
	ClassifyDeals(deals, cv.cfg.Thresholds())

	snap := BuildSnapshot(cv.cfg.ReportDate, labels, deals, cv.cfg.Thresholds())

	if err := os.MkdirAll(cv.cfg.OutputDir(), 0o755); err != nil {
		return err
	}
	if err := reports.WriteSnapshot(cv.cfg.OutputPath(), snap, cv.cfg.Thresholds()); err != nil {
		return err
	}

	cv.logger.WithFields(logrus.Fields{
		"module":        "CrossValidation",
		"output":        cv.cfg.OutputPath(),
		"deals":         len(snap.Deals),
		"irrMovers":     len(snap.IRRMovers),
		"irrDiffs":      len(snap.IRRDiffs),
		"durationDiffs": len(snap.DurationDiffs),
		"missingData":   len(snap.MissingData),
	}).Info("report generated")

	cv.saveVersionedCopy(ctx)
	return nil
}

// BuildSnapshot assembles the snapshot views from the classified, ranked
// table. The views share *Deal values with the primary table; they are
// projections, not copies.
func BuildSnapshot(date string, labels models.DateLabels, deals []*models.Deal, th models.Thresholds) *models.Snapshot {
	snap := &models.Snapshot{Date: date, Labels: labels, Deals: deals}

	for _, d := range deals {
		material := d.IsMaterial(th)
		if material && exceeds(d.IRRMovement, th.IRRDiff) {
			snap.IRRMovers = append(snap.IRRMovers, d)
		}
		if material && exceeds(d.IRRDiff, th.IRRDiff) {
			snap.IRRDiffs = append(snap.IRRDiffs, d)
		}
		if material && exceeds(d.DurationDiff, th.DurationDiff) {
			snap.DurationDiffs = append(snap.DurationDiffs, d)
		}
		if len(d.MissingAATFields()) > 0 {
			snap.MissingData = append(snap.MissingData, d)
		}
	}

	// The missing-data view ranks by liquidation cap, the alternate
	// materiality weight for deals with no market value yet.
	sort.SliceStable(snap.MissingData, func(i, j int) bool {
		a, b := snap.MissingData[i].LiqCap, snap.MissingData[j].LiqCap
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.GreaterThan(*b)
	})

	return snap
}

// saveVersionedCopy archives the produced workbook as the next version for
// the date. Best effort throughout: a cron box with the versioned share
// unmounted must still leave the primary report standing.
func (cv *CrossValidation) saveVersionedCopy(ctx context.Context) {
	if cv.cfg.VersionedDir == "" {
		return
	}
	if err := os.MkdirAll(cv.cfg.VersionedDir, 0o755); err != nil {
		config.LogWarn(cv.logger, "CrossValidation", "saveVersionedCopy", "create versioned folder", err)
		return
	}

	n, err := versioning.ScanNext(cv.cfg.VersionedDir, cv.cfg.ReportDate)
	if err != nil {
		config.LogWarn(cv.logger, "CrossValidation", "saveVersionedCopy", "determine next version", err)
		return
	}

	dst := filepath.Join(cv.cfg.VersionedDir, cv.cfg.VersionedFilename(n))
	if err := utils.CopyFile(cv.cfg.OutputPath(), dst); err != nil {
		config.LogWarn(cv.logger, "CrossValidation", "saveVersionedCopy", "copy versioned file", err)
		return
	}
	cv.logger.WithFields(logrus.Fields{
		"module":  "CrossValidation",
		"version": n,
		"path":    dst,
	}).Info("versioned copy saved")

	if cv.index != nil {
		if err := cv.index.Record(ctx, cv.cfg.ReportDate, n, dst); err != nil {
			config.LogWarn(cv.logger, "CrossValidation", "saveVersionedCopy", "record lineage", err)
		}
	}

	uploaded, err := utils.ArchiveFileToGCS(ctx, dst, cv.cfg.VersionedFilename(n))
	if err != nil {
		config.LogWarn(cv.logger, "CrossValidation", "saveVersionedCopy", "gcs archive", err)
	} else if uploaded {
		cv.logger.WithField("object", cv.cfg.VersionedFilename(n)).Info("archived to gcs")
	}
}

func exceeds(d *decimal.Decimal, threshold decimal.Decimal) bool {
	return d != nil && d.Abs().GreaterThan(threshold)
}
