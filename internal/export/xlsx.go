// Package export renders cost reports as spreadsheets.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"procurement/internal/report"
)

const (
	budgetSheet   = "Budget"
	districtSheet = "Districts"
)

var budgetHeader = []string{"Category", "Item", "Quantity", "Total Cost"}

// BudgetWorkbook writes rep to a Budget sheet, one row per item followed by a
// category subtotal row. When districts is non-empty a Districts sheet lists
// each district's grand total.
func BudgetWorkbook(title string, rep report.CostReport, districts map[string]report.CostReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(budgetSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	f.SetCellValue(budgetSheet, "A1", title)
	for i, h := range budgetHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(budgetSheet, cell, h)
	}

	row := 4
	for _, cat := range rep.Categories {
		for _, it := range cat.Items {
			writeRow(f, budgetSheet, row, string(cat.Category), it.ItemName, it.TotalQuantity, it.TotalCost.InexactFloat64())
			row++
		}
		writeRow(f, budgetSheet, row, string(cat.Category)+" total", "", cat.TotalQuantity, cat.TotalCost.InexactFloat64())
		row++
	}
	writeRow(f, budgetSheet, row+1, "Grand total", "", nil, rep.GrandTotal.InexactFloat64())

	if len(districts) > 0 {
		if _, err := f.NewSheet(districtSheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
		f.SetCellValue(districtSheet, "A1", "District")
		f.SetCellValue(districtSheet, "B1", "Total Cost")

		names := make([]string, 0, len(districts))
		for name := range districts {
			names = append(names, name)
		}
		sort.Strings(names)
		for i, name := range names {
			f.SetCellValue(districtSheet, fmt.Sprintf("A%d", i+2), name)
			f.SetCellValue(districtSheet, fmt.Sprintf("B%d", i+2), districts[name].GrandTotal.InexactFloat64())
		}
	}

	f.SetColWidth(budgetSheet, "A", "B", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}
