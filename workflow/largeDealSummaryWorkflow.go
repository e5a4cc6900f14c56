package workflow

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/crossval_backend/config"
	"bitbucket.org/mmdatafocus/crossval_backend/models"
	"bitbucket.org/mmdatafocus/crossval_backend/reports"
	"bitbucket.org/mmdatafocus/crossval_backend/utils"
	"bitbucket.org/mmdatafocus/crossval_backend/versioning"
)

const largeDealTopN = 10

// LargeDealSummary projects the annotated snapshot down to the columns the
// portfolio-head review wants: one sheet, liquidation-cap weighted, top ten
// flagged.
type LargeDealSummary struct {
	cfg      config.Config
	logger   *logrus.Logger
	resolver *versioning.Resolver
}

func NewLargeDealSummary(cfg config.Config, logger *logrus.Logger, resolver *versioning.Resolver) *LargeDealSummary {
	return &LargeDealSummary{cfg: cfg, logger: logger, resolver: resolver}
}

// Run reads the latest summary-report snapshot for the date (falling back
// to the run's primary output when none has been published yet), builds the
// projection and writes it to the large-deal folder.
func (s *LargeDealSummary) Run(ctx context.Context) error {
	current, prior, err := utils.ReportDateLabels(s.cfg.ReportDate)
	if err != nil {
		return err
	}
	labels := models.DateLabels{Current: current, Prior: prior}

	source := s.cfg.OutputPath()
	if s.resolver.Dir() != "" {
		if latest, err := s.resolver.Latest(ctx, s.cfg.ReportDate); err == nil {
			source = latest.Path
		} else {
			var notFound *utils.NoVersionFoundError
			if !errors.As(err, &notFound) {
				return err
			}
		}
	}

	deals, err := reports.ReadSummarySheet(source, labels)
	if err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"module": "LargeDealSummary",
		"source": source,
		"deals":  len(deals),
	}).Info("summary sheet loaded")

	rows := BuildLargeDealRows(deals, s.cfg.LargeDealExcludeNames)

	if err := os.MkdirAll(s.cfg.LargeDealDir, 0o755); err != nil {
		return err
	}
	out := s.cfg.LargeDealSummaryPath()
	if err := reports.WriteLargeDealSummary(out, rows, labels); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"module": "LargeDealSummary",
		"output": out,
		"rows":   len(rows),
	}).Info("large deal summary written")
	return nil
}

// BuildLargeDealRows drops excluded deals, ranks by liquidation cap
// descending, computes each deal's share of total liquidation cap, and
// flags the top ten.
func BuildLargeDealRows(deals []*models.Deal, excludeNames []string) []*models.LargeDealRow {
	var kept []*models.Deal
	for _, d := range deals {
		if nameExcluded(d.Name, excludeNames) {
			continue
		}
		kept = append(kept, d)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i].LiqCap, kept[j].LiqCap
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.GreaterThan(*b)
	})

	total := decimal.Zero
	for _, d := range kept {
		if d.LiqCap != nil {
			total = total.Add(*d.LiqCap)
		}
	}

	rows := make([]*models.LargeDealRow, 0, len(kept))
	for i, d := range kept {
		row := &models.LargeDealRow{
			Deal:   d,
			TopTen: i < largeDealTopN && d.LiqCap != nil,
		}
		if d.LiqCap != nil && !total.IsZero() {
			pct := d.LiqCap.Div(total).Mul(oneHundred)
			row.LCPercent = &pct
		}
		rows = append(rows, row)
	}
	return rows
}

func nameExcluded(name string, excludeNames []string) bool {
	for _, pattern := range excludeNames {
		if pattern != "" && strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}
