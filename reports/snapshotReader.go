package reports

import (
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"bitbucket.org/mmdatafocus/crossval_backend/models"
)

// ExtractComments builds the deal-name to comment map from the given sheets
// of an archived snapshot. Blank comments never make it into the map, so a
// blank can never overwrite anything downstream. Later sheets win on
// duplicate names, matching how the sheets have historically been read.
func ExtractComments(path string, sheets []string, logger *logrus.Logger) (map[string]string, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	comments := map[string]string{}
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			logger.WithFields(logrus.Fields{"sheet": sheet, "path": path}).
				Warn("sheet not readable, skipped for comment extraction")
			continue
		}
		ix := indexHeaders(rows, sheet)
		nameCol, okName := ix.optional(colDealName)
		commentCol, okComment := ix.optional(colAATComments)
		if !okName || !okComment {
			logger.WithField("sheet", sheet).Warn("comment columns not found, sheet skipped")
			continue
		}

		count := 0
		for _, row := range rows[1:] {
			name := cellAt(row, nameCol)
			comment := cellAt(row, commentCol)
			if name == "" || comment == "" {
				continue
			}
			comments[name] = comment
			count++
		}
		logger.WithFields(logrus.Fields{"sheet": sheet, "comments": count}).
			Debug("extracted comments")
	}
	return comments, nil
}

// UpdateComments merges inherited comments into the given sheets of the
// latest snapshot, keyed by deal name, and saves the workbook in place.
// Deals not in the map keep whatever comment they have. Returns the number
// of cells changed; zero changes means nothing is written back, which is
// what makes a second run over the same pair a no-op.
func UpdateComments(path string, sheets []string, comments map[string]string, fillBlankOnly bool, logger *logrus.Logger) (int, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	updated := 0
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			logger.WithFields(logrus.Fields{"sheet": sheet, "path": path}).
				Warn("sheet not readable, skipped for comment update")
			continue
		}
		ix := indexHeaders(rows, sheet)
		nameCol, okName := ix.optional(colDealName)
		commentCol, okComment := ix.optional(colAATComments)
		if !okName || !okComment {
			logger.WithField("sheet", sheet).Warn("comment columns not found, sheet skipped")
			continue
		}

		for r, row := range rows[1:] {
			name := cellAt(row, nameCol)
			if name == "" {
				continue
			}
			inherited, ok := comments[name]
			if !ok {
				continue
			}
			existing := cellAt(row, commentCol)
			merged, changed := models.MergeComment(existing, inherited, fillBlankOnly)
			if !changed {
				continue
			}
			if existing != "" {
				logger.WithFields(logrus.Fields{
					"sheet": sheet,
					"deal":  name,
				}).Warn("inherited comment overwrote a differing current comment")
			}
			cell, err := excelize.CoordinatesToCellName(commentCol+1, r+2)
			if err != nil {
				return updated, err
			}
			if err := f.SetCellValue(sheet, cell, merged); err != nil {
				return updated, err
			}
			updated++
		}
	}

	if updated == 0 {
		return 0, nil
	}
	if err := f.Save(); err != nil {
		return updated, err
	}
	return updated, nil
}

// ReadSummarySheet loads the Summary view of a persisted snapshot back into
// deal records. Only the columns the downstream summaries consume are
// parsed; the percentage columns are display strings and get recomputed by
// whoever needs them.
func ReadSummarySheet(path string, labels models.DateLabels) ([]*models.Deal, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(models.SheetSummary, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	ix := indexHeaders(rows, models.SheetSummary)

	nameCol, err := ix.require(colDealName)
	if err != nil {
		return nil, err
	}
	pmCol, _ := ix.optional(colPortfolioManager)
	ownerCol, _ := ix.optional(colPMOwner)
	aatIRRCol, _ := ix.optional(labels.Current + " AAT IRR")
	ecfIRRCol, _ := ix.optional(labels.Current + " ECF IRR")
	irrDiffCol, _ := ix.optional(colIRRDiffs)
	durAATCol, _ := ix.optional(colDurationAAT)
	durECFCol, _ := ix.optional(colDurationECF)
	durDiffCol, _ := ix.optional(colDurationDiff)
	liqCapCol, _ := ix.optional(colLiqCap)
	mvCol, _ := ix.optional(labels.Current + " MV")
	categoryCol, _ := ix.optional(colCategory)
	commentCol, _ := ix.optional(colAATComments)

	var deals []*models.Deal
	for _, row := range rows[1:] {
		name := cellAt(row, nameCol)
		if name == "" {
			continue
		}
		d := &models.Deal{
			Name:             name,
			PortfolioManager: cellAt(row, pmCol),
			AATIRR:           parseDecimalCell(cellAt(row, aatIRRCol)),
			ECFIRR:           parseDecimalCell(cellAt(row, ecfIRRCol)),
			IRRDiff:          parseDecimalCell(cellAt(row, irrDiffCol)),
			AATDuration:      parseDecimalCell(cellAt(row, durAATCol)),
			ECFDuration:      parseDecimalCell(cellAt(row, durECFCol)),
			DurationDiff:     parseDecimalCell(cellAt(row, durDiffCol)),
			LiqCap:           parseDecimalCell(cellAt(row, liqCapCol)),
			MarketValue:      parseDecimalCell(cellAt(row, mvCol)),
			Comment:          cellAt(row, commentCol),
		}
		if owner := cellAt(row, ownerCol); owner != "" {
			d.PMOwner = &owner
		}
		if cat := cellAt(row, categoryCol); cat != "" {
			c := models.Category(cat)
			d.Category = &c
		}
		deals = append(deals, d)
	}
	return deals, nil
}
