package workflow

import (
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/crossval_backend/models"
)

// MergeDealTables left-joins the AAT table with the deal-level rows of the
// status table on deal name.
//
// The status table mixes instrument rows with one aggregate row per deal
// (empty instrument). Only aggregate rows take part in the join; joining the
// instrument rows would duplicate deals and silently inflate market values.
//
// Deals present in AAT but absent from the status aggregates keep nil
// ECF-side fields; that is missing data to report, not an error. Duplicate
// deal names on either side are dropped keeping the first occurrence, and
// the drop is logged so upstream data-quality regressions stay visible.
func MergeDealTables(aatRows []*models.AATRecord, statusRows []*models.StatusRecord, logger *logrus.Logger) []*models.Deal {
	aggregates := make(map[string]*models.StatusRecord, len(statusRows))
	instrumentRows := 0
	duplicateAggregates := 0
	for _, s := range statusRows {
		if !s.IsAggregate() {
			instrumentRows++
			continue
		}
		if _, ok := aggregates[s.DealName]; ok {
			duplicateAggregates++
			continue
		}
		aggregates[s.DealName] = s
	}

	deals := make([]*models.Deal, 0, len(aatRows))
	seen := make(map[string]bool, len(aatRows))
	duplicateDeals := 0
	for _, a := range aatRows {
		if seen[a.DealName] {
			duplicateDeals++
			continue
		}
		seen[a.DealName] = true

		d := &models.Deal{
			Name:             a.DealName,
			PortfolioManager: a.PortfolioManager,
			AATIRR:           a.IRR,
			AATDuration:      a.Duration,
			LiqCap:           a.LiqCap,
			MarketValue:      a.MarketValue,
			Comment:          a.Comment,
		}
		if s := aggregates[a.DealName]; s != nil {
			d.ECFIRR = s.CurrentIRR
			d.PriorECFIRR = s.PriorIRR
			d.IRRMovement = s.IRRChange
			d.ECFDuration = s.Duration
			// AbsIRRChange is an upstream sort helper and ends here.
		}
		deals = append(deals, d)
	}

	logger.WithFields(logrus.Fields{
		"module":         "CrossValidation",
		"aatRows":        len(aatRows),
		"statusRows":     len(statusRows),
		"instrumentRows": instrumentRows,
		"aggregateRows":  len(aggregates),
		"mergedDeals":    len(deals),
	}).Info("merged AAT and ECF tables")

	if duplicateDeals > 0 || duplicateAggregates > 0 {
		logger.WithFields(logrus.Fields{
			"module":              "CrossValidation",
			"duplicateDeals":      duplicateDeals,
			"duplicateAggregates": duplicateAggregates,
		}).Warn("duplicate deal names dropped, first occurrence kept")
	}

	return deals
}
