package models

import (
	"github.com/shopspring/decimal"
)

// Category is the discrepancy bucket assigned to a reconciled deal.
// A nil *Category means the deal could not be evaluated (both diffs missing).
type Category string

const (
	CategoryAlignment                Category = "Alignment"
	CategorySignificantDiscrepancy   Category = "Significant Discrepancy"
	CategoryDiscrepancyBelowMaterial Category = "Significant discrepancy but ignore"
)

// Thresholds are the materiality knobs for classification and view filtering.
// They are passed explicitly into each stage; there are no package-level defaults.
type Thresholds struct {
	SignificantMV decimal.Decimal
	IRRDiff       decimal.Decimal
	DurationDiff  decimal.Decimal
}

// Deal is one reconciled portfolio position. AAT is the internal analytical
// model, ECF the external cash-flow engine. Pointer fields are nullable:
// a nil means the upstream table had no value, which is data to surface,
// not an error.
type Deal struct {
	Name             string
	PortfolioManager string
	PMOwner          *string

	AATIRR      *decimal.Decimal
	ECFIRR      *decimal.Decimal
	IRRDiff     *decimal.Decimal // ECF - AAT
	PriorECFIRR *decimal.Decimal
	IRRMovement *decimal.Decimal // current ECF - prior ECF

	AATDuration  *decimal.Decimal
	ECFDuration  *decimal.Decimal
	DurationDiff *decimal.Decimal // ECF - AAT

	LiqCap      *decimal.Decimal
	MarketValue *decimal.Decimal

	MVPercent           *decimal.Decimal
	CumulativeMVPercent *decimal.Decimal

	Category *Category
	Comment  string
}

// IsMaterial reports whether the deal's market value strictly exceeds the
// significance threshold. Deals with no market value are never material.
func (d *Deal) IsMaterial(th Thresholds) bool {
	return d.MarketValue != nil && d.MarketValue.GreaterThan(th.SignificantMV)
}

// MissingAATFields lists which AAT-side inputs the deal is missing.
// Empty when nothing is missing.
func (d *Deal) MissingAATFields() []string {
	var missing []string
	if d.AATIRR == nil {
		missing = append(missing, "AAT IRR")
	}
	if d.AATDuration == nil {
		missing = append(missing, "Duration AAT")
	}
	return missing
}

// AATRecord is one entity-level row of the internal model's output table.
type AATRecord struct {
	DealName         string
	PortfolioManager string
	IRR              *decimal.Decimal
	Duration         *decimal.Decimal
	LiqCap           *decimal.Decimal
	MarketValue      *decimal.Decimal
	Comment          string
}

// StatusRecord is one row of the external engine's status table. The table
// mixes instrument-level rows with one aggregate row per deal; the aggregate
// row is the one with an empty Instrument.
type StatusRecord struct {
	DealName     string
	Instrument   string
	CurrentIRR   *decimal.Decimal
	PriorIRR     *decimal.Decimal
	IRRChange    *decimal.Decimal
	Duration     *decimal.Decimal
	AbsIRRChange *decimal.Decimal // upstream sort helper, dropped after the join
}

// IsAggregate reports whether the row carries the deal-level aggregate
// (MV and IRR summed over instruments) rather than a single instrument.
func (s *StatusRecord) IsAggregate() bool {
	return s.Instrument == ""
}

// OwnerMap maps a Sr. Portfolio Manager name to the AAT PM owner responsible
// for the deal's model inputs. Unmapped managers stay unmapped.
type OwnerMap map[string]string
