// Package report renders GRN, counting-sheet and stock-take workbooks.
package report

import (
	"fmt"

	"intake-app/wms/grading"
	"intake-app/wms/grn"
	"intake-app/wms/stocktake"

	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheet = "Sheet1"

func header(f *excelize.File, row int, titles ...string) error {
	for i, t := range titles {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, t); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// GRNWorkbook lists one row per variety followed by a totals row.
func GRNWorkbook(lines []grn.GRNLine) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := header(f, 1, "Variety", "Weight (kg)", "Crates", "Source At"); err != nil {
		return nil, err
	}

	var kg float64
	var crates int
	for i, l := range lines {
		if err := setRow(f, i+2, l.Variety, l.WeightKg, l.Crates, l.SourceAt.Format("2006-01-02 15:04")); err != nil {
			return nil, err
		}
		kg += l.WeightKg
		crates += l.Crates
	}
	if err := setRow(f, len(lines)+2, "Total", kg, crates); err != nil {
		return nil, err
	}
	return f, nil
}

// CountingWorkbook writes the pallet header, every matrix cell, and the
// class and pack subtotals below it.
func CountingWorkbook(view *grading.RecordView) (*excelize.File, error) {
	f := excelize.NewFile()
	rec := view.Record

	rows := [][]any{
		{"Pallet", rec.PalletID},
		{"Supplier", rec.SupplierCode},
		{"Submitted By", rec.SubmittedBy},
		{"Submitted At", rec.SubmittedAt.Format("2006-01-02 15:04")},
	}
	for i, r := range rows {
		if err := setRow(f, i+1, r...); err != nil {
			return nil, err
		}
	}

	row := len(rows) + 2
	if err := header(f, row, "Variety", "Pack Size", "Class", "Size Code", "Boxes"); err != nil {
		return nil, err
	}
	row++
	for _, c := range rec.Matrix().Cells() {
		if err := setRow(f, row, c.Variety, c.PackSize, c.Class, c.SizeCode, c.Boxes); err != nil {
			return nil, err
		}
		row++
	}

	row++
	if err := header(f, row, "Variety", "Pack Size", "Class", "Boxes", "Weight (kg)"); err != nil {
		return nil, err
	}
	row++
	for _, c := range view.Summary.Classes {
		if err := setRow(f, row, c.Variety, c.PackSize, fmt.Sprintf("Class %d", c.Class), c.Boxes, c.WeightKg); err != nil {
			return nil, err
		}
		row++
	}
	for _, p := range view.Summary.Packs {
		if err := setRow(f, row, p.Variety, p.PackSize, "All", p.Boxes, p.WeightKg); err != nil {
			return nil, err
		}
		row++
	}
	if err := setRow(f, row, "Total", "", "", view.Summary.TotalBoxes, view.Summary.TotalWeightKg); err != nil {
		return nil, err
	}
	return f, nil
}

// StockTakeWorkbook writes every counted line and the batch summary.
func StockTakeWorkbook(rec *stocktake.Record) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := header(f, 1, "Item", "Expected", "Counted", "Variance"); err != nil {
		return nil, err
	}
	for i, l := range rec.Lines {
		if err := setRow(f, i+2, l.ItemID, l.Expected, l.Counted, l.Variance); err != nil {
			return nil, err
		}
	}

	s := rec.Summary()
	row := len(rec.Lines) + 3
	summary := [][]any{
		{"Total Items", s.TotalItems},
		{"Exact Matches", s.ExactMatches},
		{"Variances", s.Variances},
		{"Average Variance", s.AverageVariance},
	}
	for i, r := range summary {
		if err := setRow(f, row+i, r...); err != nil {
			return nil, err
		}
	}
	return f, nil
}
