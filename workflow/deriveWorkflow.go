package workflow

import (
	"sort"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/crossval_backend/models"
)

var oneHundred = decimal.NewFromInt(100)

// DeriveMetrics fills in the computed fields on every deal in place:
//
//   - IRRDiff = ECF IRR - AAT IRR. The sign convention is fixed here and
//     nowhere else: a positive diff means the external engine values the
//     deal richer than the internal model.
//   - DurationDiff = ECF duration - AAT duration, same convention.
//   - IRRMovement = current ECF IRR - prior ECF IRR, recomputed whenever
//     both periods are present; the upstream-supplied change survives only
//     when one side is missing.
//   - PMOwner from the Sr. Portfolio Manager mapping; unmapped managers stay
//     nil rather than erroring.
//
// A diff is nil whenever either input is nil.
func DeriveMetrics(deals []*models.Deal, owners models.OwnerMap) {
	for _, d := range deals {
		d.IRRDiff = subtract(d.ECFIRR, d.AATIRR)
		d.DurationDiff = subtract(d.ECFDuration, d.AATDuration)
		if mov := subtract(d.ECFIRR, d.PriorECFIRR); mov != nil {
			d.IRRMovement = mov
		}
		if owner, ok := owners[d.PortfolioManager]; ok {
			d.PMOwner = &owner
		}
	}
}

// RankByMarketValue sorts deals market-value descending and computes the
// MV % and cumulative MV % columns over the sorted order.
//
// The sort must be stable: near-tied deals keep their upstream order, which
// keeps the cumulative column reproducible between runs. Deals without a
// market value sort last, contribute nothing to the denominator and get no
// percentage of their own.
func RankByMarketValue(deals []*models.Deal) {
	sort.SliceStable(deals, func(i, j int) bool {
		a, b := deals[i].MarketValue, deals[j].MarketValue
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.GreaterThan(*b)
	})

	total := decimal.Zero
	for _, d := range deals {
		if d.MarketValue != nil {
			total = total.Add(*d.MarketValue)
		}
	}

	if total.IsZero() {
		for _, d := range deals {
			d.MVPercent = nil
			d.CumulativeMVPercent = nil
		}
		return
	}

	running := decimal.Zero
	for _, d := range deals {
		if d.MarketValue == nil {
			d.MVPercent = nil
			d.CumulativeMVPercent = nil
			continue
		}
		pct := d.MarketValue.Div(total).Mul(oneHundred)
		running = running.Add(pct)
		cum := running
		d.MVPercent = &pct
		d.CumulativeMVPercent = &cum
	}
}

func subtract(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil || b == nil {
		return nil
	}
	diff := a.Sub(*b)
	return &diff
}
