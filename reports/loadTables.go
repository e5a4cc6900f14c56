// Package reports owns every workbook the reconciliation touches: loading
// the upstream AAT and ECF tables, writing the reconciled snapshot and its
// views, and reading comments back out of archived versions. All other
// packages work on typed records; header-text lookups happen only here, at
// the boundary.
package reports

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"bitbucket.org/mmdatafocus/crossval_backend/models"
	"bitbucket.org/mmdatafocus/crossval_backend/utils"
)

// Upstream header names that do not embed a date.
const (
	colDealName         = "Deal Name"
	colPortfolioManager = "Sr. Portfolio Manager"
	colPMOwner          = "AAT PM Owner"
	colInstrument       = "Instrument"
	colIRRChange        = "IRR Change"
	colDurationAATBase  = "Duration AAT Base"
	colDurationDCFBase  = "Duration DCF Base"
	colAbsIRRChange     = "Abs IRR Change"
	colLiqCap           = "Liq Cap"
	colComments         = "Comments"
)

func openWorkbook(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &utils.MissingFileError{Path: path}
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// firstSheetRows reads the first sheet as raw cell values. Raw matters:
// IRR cells display as "5.00%" but store 0.05, and the stored value is the
// one every computation needs.
func firstSheetRows(f *excelize.File) ([][]string, string, error) {
	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, sheet, err
	}
	return rows, sheet, nil
}

type headerIndex struct {
	sheet string
	cols  map[string]int
}

func indexHeaders(rows [][]string, sheet string) headerIndex {
	ix := headerIndex{sheet: sheet, cols: map[string]int{}}
	if len(rows) == 0 {
		return ix
	}
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, ok := ix.cols[h]; !ok {
			ix.cols[h] = i
		}
	}
	return ix
}

// require returns the column index for the first matching header name.
// Multiple names cover upstream drift like the footnote marker on
// "Duration DCF Base¹".
func (ix headerIndex) require(names ...string) (int, error) {
	for _, n := range names {
		if i, ok := ix.cols[n]; ok {
			return i, nil
		}
	}
	return 0, &utils.MissingColumnError{Column: names[0], Sheet: ix.sheet}
}

func (ix headerIndex) optional(name string) (int, bool) {
	if i, ok := ix.cols[name]; ok {
		return i, true
	}
	return -1, false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseDecimalCell turns a raw cell into a decimal, tolerating the thousands
// separators and percent suffixes that show up when someone pastes display
// text into a source workbook. Unparsable or empty cells are nil: missing
// data, surfaced later, never a hard failure at load time.
func parseDecimalCell(raw string) *decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	pct := strings.HasSuffix(s, "%")
	if pct {
		s = strings.TrimSuffix(s, "%")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	if pct {
		d = d.Div(decimal.NewFromInt(100))
	}
	return &d
}

// LoadAATTable reads the internal model's entity-level output.
func LoadAATTable(path string, labels models.DateLabels) ([]*models.AATRecord, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, sheet, err := firstSheetRows(f)
	if err != nil {
		return nil, err
	}
	ix := indexHeaders(rows, sheet)

	nameCol, err := ix.require(colDealName)
	if err != nil {
		return nil, err
	}
	irrCol, err := ix.require(labels.Current + " AAT IRR")
	if err != nil {
		return nil, err
	}
	durationCol, err := ix.require(colDurationAATBase)
	if err != nil {
		return nil, err
	}
	liqCapCol, err := ix.require(colLiqCap)
	if err != nil {
		return nil, err
	}
	mvCol, err := ix.require(labels.Current + " MV")
	if err != nil {
		return nil, err
	}
	pmCol, _ := ix.optional(colPortfolioManager)
	commentCol, hasComments := ix.optional(colComments)

	var records []*models.AATRecord
	for _, row := range rows[1:] {
		name := cellAt(row, nameCol)
		if name == "" {
			continue
		}
		rec := &models.AATRecord{
			DealName:         name,
			PortfolioManager: cellAt(row, pmCol),
			IRR:              parseDecimalCell(cellAt(row, irrCol)),
			Duration:         parseDecimalCell(cellAt(row, durationCol)),
			LiqCap:           parseDecimalCell(cellAt(row, liqCapCol)),
			MarketValue:      parseDecimalCell(cellAt(row, mvCol)),
		}
		if hasComments {
			rec.Comment = cellAt(row, commentCol)
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadStatusTable reads the external engine's status table, instrument and
// aggregate rows alike. Filtering to aggregates is the merger's decision,
// not the loader's.
func LoadStatusTable(path string, labels models.DateLabels) ([]*models.StatusRecord, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, sheet, err := firstSheetRows(f)
	if err != nil {
		return nil, err
	}
	ix := indexHeaders(rows, sheet)

	nameCol, err := ix.require(colDealName)
	if err != nil {
		return nil, err
	}
	instrumentCol, err := ix.require(colInstrument)
	if err != nil {
		return nil, err
	}
	currentIRRCol, err := ix.require(labels.Current + " IRR")
	if err != nil {
		return nil, err
	}
	priorIRRCol, err := ix.require(labels.Prior + " IRR")
	if err != nil {
		return nil, err
	}
	durationCol, err := ix.require(colDurationDCFBase+"¹", colDurationDCFBase)
	if err != nil {
		return nil, err
	}
	changeCol, _ := ix.optional(colIRRChange)
	absChangeCol, _ := ix.optional(colAbsIRRChange)

	var records []*models.StatusRecord
	for _, row := range rows[1:] {
		name := cellAt(row, nameCol)
		if name == "" {
			continue
		}
		records = append(records, &models.StatusRecord{
			DealName:     name,
			Instrument:   cellAt(row, instrumentCol),
			CurrentIRR:   parseDecimalCell(cellAt(row, currentIRRCol)),
			PriorIRR:     parseDecimalCell(cellAt(row, priorIRRCol)),
			IRRChange:    parseDecimalCell(cellAt(row, changeCol)),
			Duration:     parseDecimalCell(cellAt(row, durationCol)),
			AbsIRRChange: parseDecimalCell(cellAt(row, absChangeCol)),
		})
	}
	return records, nil
}

// LoadOwnerMap reads the Sr. Portfolio Manager to AAT PM owner mapping.
func LoadOwnerMap(path string) (models.OwnerMap, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, sheet, err := firstSheetRows(f)
	if err != nil {
		return nil, err
	}
	ix := indexHeaders(rows, sheet)

	pmCol, err := ix.require(colPortfolioManager)
	if err != nil {
		return nil, err
	}
	ownerCol, err := ix.require(colPMOwner)
	if err != nil {
		return nil, err
	}

	owners := models.OwnerMap{}
	for _, row := range rows[1:] {
		pm := cellAt(row, pmCol)
		owner := cellAt(row, ownerCol)
		if pm == "" || owner == "" {
			continue
		}
		if _, ok := owners[pm]; !ok {
			owners[pm] = owner
		}
	}
	return owners, nil
}
