package workflow

import (
	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/crossval_backend/models"
)

// Classify assigns a discrepancy category from the deal's IRR diff, duration
// diff and market value. Pure: no state, no side effects.
//
// Rules, in order:
//   - both diffs nil: the deal cannot be evaluated, no category (nil).
//   - neither |diff| strictly exceeds its threshold: Alignment, regardless
//     of market value.
//   - a diff exceeds its threshold and MV strictly exceeds the significance
//     threshold: Significant Discrepancy.
//   - a diff exceeds its threshold but MV is missing or at/below the
//     threshold: flagged but ignored.
//
// All comparisons are strict: a diff sitting exactly on the threshold is not
// a discrepancy.
func Classify(irrDiff, durationDiff, marketValue *decimal.Decimal, th models.Thresholds) *models.Category {
	if irrDiff == nil && durationDiff == nil {
		return nil
	}

	hasDiscrepancy := (irrDiff != nil && irrDiff.Abs().GreaterThan(th.IRRDiff)) ||
		(durationDiff != nil && durationDiff.Abs().GreaterThan(th.DurationDiff))

	var cat models.Category
	switch {
	case !hasDiscrepancy:
		cat = models.CategoryAlignment
	case marketValue != nil && marketValue.GreaterThan(th.SignificantMV):
		cat = models.CategorySignificantDiscrepancy
	default:
		cat = models.CategoryDiscrepancyBelowMaterial
	}
	return &cat
}

// ClassifyDeals recomputes the category on every deal in place. Categories
// are derived every run; a category read from a prior snapshot is never
// authoritative.
func ClassifyDeals(deals []*models.Deal, th models.Thresholds) {
	for _, d := range deals {
		d.Category = Classify(d.IRRDiff, d.DurationDiff, d.MarketValue, th)
	}
}
