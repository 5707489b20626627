package export_test

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"procurement/internal/export"
	"procurement/internal/model"
	"procurement/internal/report"
)

func TestBudgetWorkbook(t *testing.T) {
	rep := report.CostReport{
		Categories: []report.CategoryTotal{{
			Category:      model.CategoryConsumables,
			TotalQuantity: 15,
			TotalCost:     decimal.NewFromInt(75),
			Items:         []report.ItemTotal{{ItemName: "Gloves", TotalQuantity: 15, TotalCost: decimal.NewFromInt(75)}},
		}},
		GrandTotal: decimal.NewFromInt(75),
	}
	districts := map[string]report.CostReport{"Pune": rep}

	data, err := export.BudgetWorkbook("Approved budget", rep, districts)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Budget", "Districts"}, f.GetSheetList())

	title, _ := f.GetCellValue("Budget", "A1")
	assert.Equal(t, "Approved budget", title)
	item, _ := f.GetCellValue("Budget", "B4")
	assert.Equal(t, "Gloves", item)
	qty, _ := f.GetCellValue("Budget", "C4")
	assert.Equal(t, "15", qty)
	subtotal, _ := f.GetCellValue("Budget", "A5")
	assert.Equal(t, "Consumables total", subtotal)
	grand, _ := f.GetCellValue("Budget", "D7")
	assert.Equal(t, "75", grand)

	district, _ := f.GetCellValue("Districts", "A2")
	assert.Equal(t, "Pune", district)
}

func TestBudgetWorkbookEmptyReport(t *testing.T) {
	data, err := export.BudgetWorkbook("Empty", report.CostReport{GrandTotal: decimal.Zero}, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Budget"}, f.GetSheetList())
}
