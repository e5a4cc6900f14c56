package reports

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"bitbucket.org/mmdatafocus/crossval_backend/models"
)

// Derived column headers introduced by this system (upstream headers live in
// loadTables.go).
const (
	colIRRDiffs     = "AAT&ECF IRR Diffs"
	colIRRMovements = "MoM ECF IRR Movements"
	colDurationAAT  = "Duration AAT"
	colDurationECF  = "Duration ECF"
	colDurationDiff = "Duration Diffs"
	colMVPercent    = "MV %"
	colCumulativeMV = "Cumulative MV %"
	colCategory     = "Category"
	colAATComments  = "AAT Comments"
	colMissing      = "Missing Fields"
)

// canonicalHeaders is the column order downstream consumers rely on.
// Cumulative MV % is appended on the primary view only.
func canonicalHeaders(l models.DateLabels) []string {
	return []string{
		colDealName,
		colPortfolioManager,
		colPMOwner,
		l.Current + " AAT IRR",
		l.Current + " ECF IRR",
		colIRRDiffs,
		l.Prior + " ECF IRR",
		colIRRMovements,
		colDurationAAT,
		colDurationECF,
		colDurationDiff,
		colLiqCap,
		l.Current + " MV",
		colMVPercent,
		colCategory,
		colAATComments,
	}
}

func summaryHeaders(l models.DateLabels) []string {
	return append(canonicalHeaders(l), colCumulativeMV)
}

func irrDiffHeaders(l models.DateLabels) []string {
	drop := map[string]bool{
		l.Prior + " ECF IRR": true,
		colIRRMovements:      true,
		colDurationAAT:       true,
		colDurationECF:       true,
		colDurationDiff:      true,
	}
	return pruneHeaders(canonicalHeaders(l), drop)
}

func durationDiffHeaders(l models.DateLabels) []string {
	var kept []string
	for _, h := range canonicalHeaders(l) {
		if strings.Contains(h, "IRR") {
			continue
		}
		kept = append(kept, h)
	}
	return kept
}

func missingDataHeaders(l models.DateLabels) []string {
	return []string{
		colDealName,
		colPortfolioManager,
		colPMOwner,
		l.Current + " AAT IRR",
		colDurationAAT,
		colLiqCap,
		l.Current + " MV",
		colMissing,
	}
}

func pruneHeaders(headers []string, drop map[string]bool) []string {
	var kept []string
	for _, h := range headers {
		if !drop[h] {
			kept = append(kept, h)
		}
	}
	return kept
}

// FormatPercent renders a ratio-of-total column the way the report displays
// it: fixed two decimals with a percent sign, blank for missing values.
func FormatPercent(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2) + "%"
}

// valueFor addresses a deal's fields by column header. Everything the writer
// emits goes through here, so a reordered sheet layout can never silently
// shift values into the wrong column.
func valueFor(d *models.Deal, header string, l models.DateLabels) interface{} {
	switch header {
	case colDealName:
		return d.Name
	case colPortfolioManager:
		return d.PortfolioManager
	case colPMOwner:
		return strPtrCell(d.PMOwner)
	case l.Current + " AAT IRR":
		return decCell(d.AATIRR)
	case l.Current + " ECF IRR":
		return decCell(d.ECFIRR)
	case colIRRDiffs:
		return decCell(d.IRRDiff)
	case l.Prior + " ECF IRR":
		return decCell(d.PriorECFIRR)
	case colIRRMovements:
		return decCell(d.IRRMovement)
	case colDurationAAT:
		return decCell(d.AATDuration)
	case colDurationECF:
		return decCell(d.ECFDuration)
	case colDurationDiff:
		return decCell(d.DurationDiff)
	case colLiqCap:
		return decCell(d.LiqCap)
	case l.Current + " MV":
		return decCell(d.MarketValue)
	case colMVPercent:
		return FormatPercent(d.MVPercent)
	case colCumulativeMV:
		return FormatPercent(d.CumulativeMVPercent)
	case colCategory:
		if d.Category == nil {
			return nil
		}
		return string(*d.Category)
	case colAATComments:
		if d.Comment == "" {
			return nil
		}
		return d.Comment
	case colMissing:
		return strings.Join(d.MissingAATFields(), ", ")
	}
	return nil
}

func decCell(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return f
}

func strPtrCell(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

type workbookStyles struct {
	header        int
	center        int
	percent       int
	money         int
	number        int
	percentYellow int
	percentOrange int
	numberGreen   int
	grayName      int
	redMissing    int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var st workbookStyles
	var err error

	centered := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	pctFmt := "0.00%"
	moneyFmt := "#,##0_);(#,##0)"
	numFmt := "0.00"
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}

	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      fill("00008B"),
		Alignment: centered,
	}); err != nil {
		return st, err
	}
	if st.center, err = f.NewStyle(&excelize.Style{Alignment: centered}); err != nil {
		return st, err
	}
	if st.percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &pctFmt, Alignment: centered}); err != nil {
		return st, err
	}
	if st.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt, Alignment: centered}); err != nil {
		return st, err
	}
	if st.number, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt, Alignment: centered}); err != nil {
		return st, err
	}
	if st.percentYellow, err = f.NewStyle(&excelize.Style{CustomNumFmt: &pctFmt, Alignment: centered, Fill: fill("FFFF00")}); err != nil {
		return st, err
	}
	if st.percentOrange, err = f.NewStyle(&excelize.Style{CustomNumFmt: &pctFmt, Alignment: centered, Fill: fill("FFA500")}); err != nil {
		return st, err
	}
	if st.numberGreen, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt, Alignment: centered, Fill: fill("00FF00")}); err != nil {
		return st, err
	}
	if st.grayName, err = f.NewStyle(&excelize.Style{Alignment: centered, Fill: fill("D3D3D3")}); err != nil {
		return st, err
	}
	if st.redMissing, err = f.NewStyle(&excelize.Style{Alignment: centered, Fill: fill("FF4C4C")}); err != nil {
		return st, err
	}
	return st, nil
}

// styleForHeader picks the data style for a column from its header text,
// mirroring how the report formats have always been keyed.
func (st workbookStyles) styleForHeader(header string, l models.DateLabels) int {
	switch {
	case strings.Contains(header, "IRR"):
		return st.percent
	case header == colLiqCap || header == l.Current+" MV":
		return st.money
	case strings.Contains(header, "Duration"):
		return st.number
	default:
		return st.center
	}
}

func writeSheet(f *excelize.File, sheet string, headers []string, deals []*models.Deal, l models.DateLabels, st workbookStyles) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	for c, h := range headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, st.header); err != nil {
			return err
		}
	}

	for r, d := range deals {
		for c, h := range headers {
			v := valueFor(d, h, l)
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	// Per-column number format and width.
	for c, h := range headers {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if len(deals) > 0 {
			first, _ := excelize.CoordinatesToCellName(c+1, 2)
			last, _ := excelize.CoordinatesToCellName(c+1, len(deals)+1)
			if err := f.SetCellStyle(sheet, first, last, st.styleForHeader(h, l)); err != nil {
				return err
			}
		}
		if err := f.SetColWidth(sheet, name, name, columnWidth(h, deals, l)); err != nil {
			return err
		}
	}
	return nil
}

func columnWidth(header string, deals []*models.Deal, l models.DateLabels) float64 {
	maxLen := len(header)
	for _, d := range deals {
		if v := valueFor(d, header, l); v != nil {
			if n := len(fmt.Sprint(v)); n > maxLen {
				maxLen = n
			}
		}
	}
	w := float64(maxLen + 2)
	if w < 10 {
		w = 10
	}
	if w > 60 {
		w = 60
	}
	return w
}

// WriteSnapshot persists the reconciled snapshot: the Summary plus the four
// derived views, with the report's number formats, threshold highlights and
// the collapse of immaterial rows on the Summary.
func WriteSnapshot(path string, snap *models.Snapshot, th models.Thresholds) error {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newWorkbookStyles(f)
	if err != nil {
		return err
	}
	l := snap.Labels

	if err := f.SetSheetName("Sheet1", models.SheetSummary); err != nil {
		return err
	}
	if err := writeSheet(f, models.SheetSummary, summaryHeaders(l), snap.Deals, l, st); err != nil {
		return err
	}
	if err := highlightSummary(f, snap, th, st); err != nil {
		return err
	}

	views := []struct {
		sheet   string
		headers []string
		deals   []*models.Deal
	}{
		{models.SheetIRRMovers, canonicalHeaders(l), snap.IRRMovers},
		{models.SheetIRRDiffs, irrDiffHeaders(l), snap.IRRDiffs},
		{models.SheetDurationDiffs, durationDiffHeaders(l), snap.DurationDiffs},
		{models.SheetMissingAATData, missingDataHeaders(l), snap.MissingData},
	}
	for _, v := range views {
		if err := writeSheet(f, v.sheet, v.headers, v.deals, l, st); err != nil {
			return err
		}
	}
	if err := highlightMissingData(f, snap, th, st); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// highlightSummary marks threshold breaches on material rows and collapses
// the rest into a hidden outline group, the presentation policy keyed off
// the same materiality bit the classifier uses.
func highlightSummary(f *excelize.File, snap *models.Snapshot, th models.Thresholds, st workbookStyles) error {
	headers := summaryHeaders(snap.Labels)
	colOf := map[string]int{}
	for i, h := range headers {
		colOf[h] = i + 1
	}

	for i, d := range snap.Deals {
		row := i + 2
		if !d.IsMaterial(th) {
			if err := f.SetRowOutlineLevel(models.SheetSummary, row, 1); err != nil {
				return err
			}
			if err := f.SetRowVisible(models.SheetSummary, row, false); err != nil {
				return err
			}
			continue
		}

		if err := styleCell(f, models.SheetSummary, colOf[colDealName], row, st.grayName); err != nil {
			return err
		}
		if exceeds(d.IRRMovement, th.IRRDiff) {
			if err := styleCell(f, models.SheetSummary, colOf[colIRRMovements], row, st.percentYellow); err != nil {
				return err
			}
		}
		if exceeds(d.IRRDiff, th.IRRDiff) {
			if err := styleCell(f, models.SheetSummary, colOf[colIRRDiffs], row, st.percentOrange); err != nil {
				return err
			}
		}
		if exceeds(d.DurationDiff, th.DurationDiff) {
			if err := styleCell(f, models.SheetSummary, colOf[colDurationDiff], row, st.numberGreen); err != nil {
				return err
			}
		}
	}
	return nil
}

// highlightMissingData flags the missing cells and grays the names of deals
// whose liquidation cap alone makes them worth chasing.
func highlightMissingData(f *excelize.File, snap *models.Snapshot, th models.Thresholds, st workbookStyles) error {
	headers := missingDataHeaders(snap.Labels)
	colOf := map[string]int{}
	for i, h := range headers {
		colOf[h] = i + 1
	}

	for i, d := range snap.MissingData {
		row := i + 2
		if d.LiqCap != nil && d.LiqCap.GreaterThan(th.SignificantMV) {
			if err := styleCell(f, models.SheetMissingAATData, colOf[colDealName], row, st.grayName); err != nil {
				return err
			}
		}
		if d.AATIRR == nil {
			if err := styleCell(f, models.SheetMissingAATData, colOf[snap.Labels.Current+" AAT IRR"], row, st.redMissing); err != nil {
				return err
			}
		}
		if d.AATDuration == nil {
			if err := styleCell(f, models.SheetMissingAATData, colOf[colDurationAAT], row, st.redMissing); err != nil {
				return err
			}
		}
	}
	return nil
}

func styleCell(f *excelize.File, sheet string, col, row, style int) error {
	if col == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}

func exceeds(d *decimal.Decimal, threshold decimal.Decimal) bool {
	return d != nil && d.Abs().GreaterThan(threshold)
}
