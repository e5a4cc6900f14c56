package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"bitbucket.org/mmdatafocus/crossval_backend/models"
)

const colLCPercent = "% LC"

func largeDealHeaders(l models.DateLabels) []string {
	return []string{
		colDealName,
		colPortfolioManager,
		l.Current + " AAT IRR",
		l.Current + " ECF IRR",
		colIRRDiffs,
		colDurationAAT,
		colDurationECF,
		colDurationDiff,
		colLiqCap,
		colLCPercent,
		colCategory,
	}
}

// WriteLargeDealSummary writes the single-sheet large-deal projection,
// highlighting the top ten deals by liquidation cap.
func WriteLargeDealSummary(path string, rows []*models.LargeDealRow, l models.DateLabels) error {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newWorkbookStyles(f)
	if err != nil {
		return err
	}
	topTen, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFD700"}},
	})
	if err != nil {
		return err
	}

	sheet := models.SheetSummary
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := largeDealHeaders(l)
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

	for r, row := range rows {
		for c, h := range headers {
			var v interface{}
			if h == colLCPercent {
				v = FormatPercent(row.LCPercent)
			} else {
				v = valueFor(row.Deal, h, l)
			}
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

	for c, h := range headers {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			first, _ := excelize.CoordinatesToCellName(c+1, 2)
			last, _ := excelize.CoordinatesToCellName(c+1, len(rows)+1)
			if err := f.SetCellStyle(sheet, first, last, st.styleForHeader(h, l)); err != nil {
				return err
			}
		}
		maxLen := len(h)
		for _, row := range rows {
			var v interface{}
			if h == colLCPercent {
				v = FormatPercent(row.LCPercent)
			} else {
				v = valueFor(row.Deal, h, l)
			}
			if v != nil {
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
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return err
		}
	}

	for r, row := range rows {
		if !row.TopTen {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, topTen); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
