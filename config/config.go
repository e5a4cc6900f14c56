package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/crossval_backend/models"
)

// Threshold defaults. Overridable per run through env; never mutated after
// Load returns.
const (
	DefaultSignificantMVThreshold = "25000000"
	DefaultIRRDiffThreshold       = "0.05"
	DefaultDurationDiffThreshold  = "0.5"
	DefaultReportName             = "AAT vs ECF"
)

// Config is the immutable per-run configuration. Every workflow stage takes
// it (or a slice of it) at construction; nothing reads env after Load.
type Config struct {
	// ReportDate is the reporting period in YYYYMMDD form, always a month-end.
	ReportDate string `validate:"required,len=8,numeric"`

	// BasePath holds the monthly working folders ({BasePath}/{date}/...) and
	// the PM owner mapping workbook.
	BasePath string `validate:"required"`
	// AATOutputBasePath is where the internal model drops its monthly output.
	AATOutputBasePath string `validate:"required"`

	// VersionedDir receives the ".v<N>" archival copies of each run. Optional
	// for the cross-validation run, which skips archival when unset; the
	// comment carry-forward refuses to run without it.
	VersionedDir string
	// SummaryReportDir receives the versioned copy made after comments are
	// carried forward. Optional: the copy is skipped when unset and the
	// large-deal summary falls back to the run's primary output.
	SummaryReportDir string
	// LargeDealDir receives the large-deal summary projection.
	LargeDealDir string

	ReportName string `validate:"required"`

	SignificantMVThreshold decimal.Decimal
	IRRDiffThreshold       decimal.Decimal
	DurationDiffThreshold  decimal.Decimal

	// CommentFillBlankOnly switches the carry-forward to only fill blank
	// comments instead of letting the inherited comment win on conflict.
	CommentFillBlankOnly bool

	// LargeDealExcludeNames drops deals whose name contains any of these
	// substrings from the large-deal summary.
	LargeDealExcludeNames []string
}

// Load builds the run configuration for a reporting date from the
// environment (.env honored the same way the rest of our services do).
func Load(dateStr string) (Config, error) {
	godotenv.Load()

	cfg := Config{
		ReportDate:        strings.TrimSpace(dateStr),
		BasePath:          strings.TrimSpace(os.Getenv("CROSSVAL_BASE_PATH")),
		AATOutputBasePath: strings.TrimSpace(os.Getenv("AAT_OUTPUT_BASE_PATH")),
		VersionedDir:      strings.TrimSpace(os.Getenv("VERSIONED_FILES_DIR")),
		SummaryReportDir:  strings.TrimSpace(os.Getenv("SUMMARY_REPORT_DIR")),
		LargeDealDir:      strings.TrimSpace(os.Getenv("LARGE_DEAL_SUMMARY_DIR")),
		ReportName:        envOrDefault("REPORT_NAME", DefaultReportName),
	}

	var err error
	if cfg.SignificantMVThreshold, err = decimalEnv("SIGNIFICANT_MV_THRESHOLD", DefaultSignificantMVThreshold); err != nil {
		return Config{}, err
	}
	if cfg.IRRDiffThreshold, err = decimalEnv("IRR_DIFF_THRESHOLD", DefaultIRRDiffThreshold); err != nil {
		return Config{}, err
	}
	if cfg.DurationDiffThreshold, err = decimalEnv("DURATION_DIFF_THRESHOLD", DefaultDurationDiffThreshold); err != nil {
		return Config{}, err
	}

	cfg.CommentFillBlankOnly = boolEnv("COMMENT_FILL_BLANK_ONLY")

	if raw := strings.TrimSpace(os.Getenv("LARGE_DEAL_EXCLUDE")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				cfg.LargeDealExcludeNames = append(cfg.LargeDealExcludeNames, p)
			}
		}
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Thresholds returns the classification thresholds for this run.
func (c Config) Thresholds() models.Thresholds {
	return models.Thresholds{
		SignificantMV: c.SignificantMVThreshold,
		IRRDiff:       c.IRRDiffThreshold,
		DurationDiff:  c.DurationDiffThreshold,
	}
}

// Input and output locations follow the upstream folder conventions: one
// working folder per reporting date under BasePath, the AAT output dropped
// under its own base, and the owner mapping at the BasePath root.

func (c Config) StatusFilePath() string {
	return filepath.Join(c.BasePath, c.ReportDate, fmt.Sprintf("Status_Final_%s.xlsx", c.ReportDate))
}

func (c Config) AATDataPath() string {
	return filepath.Join(c.AATOutputBasePath, c.ReportDate, fmt.Sprintf("AATOutput.%s.xlsx", c.ReportDate))
}

func (c Config) OwnerMapPath() string {
	return filepath.Join(c.BasePath, "AAT PM Owner.xlsx")
}

func (c Config) OutputDir() string {
	return filepath.Join(c.BasePath, c.ReportDate)
}

func (c Config) OutputFilename() string {
	return fmt.Sprintf("%s %s.xlsx", c.ReportName, c.ReportDate)
}

func (c Config) OutputPath() string {
	return filepath.Join(c.OutputDir(), c.OutputFilename())
}

// VersionedFilename is the archival name for version n of this run's output.
func (c Config) VersionedFilename(n int) string {
	return fmt.Sprintf("%s %s.v%d.xlsx", c.ReportName, c.ReportDate, n)
}

func (c Config) LargeDealSummaryPath() string {
	return filepath.Join(c.LargeDealDir, "Large Deals Summary.xlsx")
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func decimalEnv(key, def string) (decimal.Decimal, error) {
	raw := envOrDefault(key, def)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func boolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
