package config

import (
	"testing"
)

func TestLoad_ArchivalFoldersOptional(t *testing.T) {
	t.Setenv("CROSSVAL_BASE_PATH", "/data/crossval")
	t.Setenv("AAT_OUTPUT_BASE_PATH", "/data/aat")
	t.Setenv("VERSIONED_FILES_DIR", "")
	t.Setenv("SUMMARY_REPORT_DIR", "")

	cfg, err := Load("20251130")
	if err != nil {
		t.Fatalf("a run without archival folders must configure: %v", err)
	}
	if cfg.VersionedDir != "" || cfg.SummaryReportDir != "" {
		t.Fatalf("unset folders must stay empty: %+v", cfg)
	}
	if cfg.ReportName != DefaultReportName {
		t.Fatalf("default report name = %q", cfg.ReportName)
	}
}

func TestLoad_Validation(t *testing.T) {
	t.Setenv("CROSSVAL_BASE_PATH", "")
	t.Setenv("AAT_OUTPUT_BASE_PATH", "/data/aat")
	if _, err := Load("20251130"); err == nil {
		t.Fatalf("missing base path must fail")
	}

	t.Setenv("CROSSVAL_BASE_PATH", "/data/crossval")
	for _, bad := range []string{"", "2025-11-30", "202511", "notadate"} {
		if _, err := Load(bad); err == nil {
			t.Errorf("invalid date %q accepted", bad)
		}
	}
}

func TestLoad_ThresholdOverrides(t *testing.T) {
	t.Setenv("CROSSVAL_BASE_PATH", "/data/crossval")
	t.Setenv("AAT_OUTPUT_BASE_PATH", "/data/aat")
	t.Setenv("IRR_DIFF_THRESHOLD", "0.10")

	cfg, err := Load("20251130")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IRRDiffThreshold.String() != "0.1" {
		t.Fatalf("IRR threshold override = %s", cfg.IRRDiffThreshold)
	}
	if cfg.SignificantMVThreshold.String() != DefaultSignificantMVThreshold {
		t.Fatalf("unset threshold must keep the default, got %s", cfg.SignificantMVThreshold)
	}

	t.Setenv("IRR_DIFF_THRESHOLD", "not a number")
	if _, err := Load("20251130"); err == nil {
		t.Fatalf("unparsable threshold must fail")
	}
}
