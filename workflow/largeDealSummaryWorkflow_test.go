package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bitbucket.org/mmdatafocus/crossval_backend/config"
	"bitbucket.org/mmdatafocus/crossval_backend/models"
	"bitbucket.org/mmdatafocus/crossval_backend/reports"
	"bitbucket.org/mmdatafocus/crossval_backend/versioning"
)

// No published summary folder configured: the job must fall back to the
// run's primary output and still produce the projection.
func TestLargeDealSummary_FallsBackToRunOutput(t *testing.T) {
	base := t.TempDir()
	cfg := config.Config{
		ReportDate:   "20251130",
		BasePath:     base,
		ReportName:   "AAT vs ECF",
		LargeDealDir: filepath.Join(base, "large-deals"),
	}

	labels := models.DateLabels{Current: "11/30/25", Prior: "10/31/25"}
	snap := &models.Snapshot{
		Date:   cfg.ReportDate,
		Labels: labels,
		Deals: []*models.Deal{
			{Name: "Alpha", LiqCap: dec(t, "45000000"), MarketValue: dec(t, "30000000")},
			{Name: "Beta", LiqCap: dec(t, "15000000"), MarketValue: dec(t, "10000000")},
		},
	}
	if err := os.MkdirAll(cfg.OutputDir(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := reports.WriteSnapshot(cfg.OutputPath(), snap, testThresholds()); err != nil {
		t.Fatalf("write run output: %v", err)
	}

	job := NewLargeDealSummary(cfg, testLogger(), versioning.NewResolver(cfg.SummaryReportDir, nil, testLogger()))
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(cfg.LargeDealSummaryPath()); err != nil {
		t.Fatalf("summary not written: %v", err)
	}
}

func TestCommentCarryForward_RequiresVersionedFolder(t *testing.T) {
	cfg := config.Config{ReportDate: "20251130"}
	carry := NewCommentCarryForward(cfg, testLogger(), versioning.NewResolver("", nil, testLogger()))
	if err := carry.Run(context.Background()); err == nil {
		t.Fatalf("carry-forward must refuse to run without the versioned folder")
	}
}
