package models

import "github.com/shopspring/decimal"

// Sheet names of the reconciliation workbook. Downstream tooling (comment
// carry-forward, large-deal summary) addresses sheets by these names, so they
// are part of the output contract.
const (
	SheetSummary        = "Summary"
	SheetIRRMovers      = "Significant ECF IRR Movers"
	SheetIRRDiffs       = "Highlight IRR Diffs"
	SheetDurationDiffs  = "Highlight Duration Diffs"
	SheetMissingAATData = "Missing AAT Data"
)

// CommentSheets are the views the comment carry-forward reads from and writes
// to across snapshot versions.
var CommentSheets = []string{SheetIRRDiffs, SheetDurationDiffs}

// DateLabels carries the display form of the reporting period and the one
// before it, e.g. "11/30/25" and "10/31/25". Column headers embed these.
type DateLabels struct {
	Current string
	Prior   string
}

// LargeDealRow is one line of the large-deal summary projection: the deal,
// its share of total liquidation cap, and whether it ranks in the top ten
// by liquidation cap.
type LargeDealRow struct {
	Deal      *Deal
	LCPercent *decimal.Decimal
	TopTen    bool
}

// MergeComment decides what a deal's comment becomes when an annotation is
// inherited from the previous snapshot version. Blank inherited comments
// never replace anything (never-erase). On a real conflict the inherited
// comment wins by default; fillBlankOnly keeps the existing comment and only
// fills gaps. Returns the resulting comment and whether it changed.
func MergeComment(existing, inherited string, fillBlankOnly bool) (string, bool) {
	if inherited == "" {
		return existing, false
	}
	if fillBlankOnly && existing != "" {
		return existing, false
	}
	if existing == inherited {
		return existing, false
	}
	return inherited, true
}

// Snapshot is one full reconciled table for a reporting date, together with
// the filtered views persisted alongside it. Deals is sorted market-value
// descending; the views are projections of the same *Deal values, so a
// comment set through one view is visible in all of them.
type Snapshot struct {
	Date   string // YYYYMMDD
	Labels DateLabels

	Deals         []*Deal
	IRRMovers     []*Deal
	IRRDiffs      []*Deal
	DurationDiffs []*Deal
	MissingData   []*Deal
}
