package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

var materialExportHeaders = []string{
	"Name", "Category", "Unit", "On Hand", "Reserved", "Available",
}

var transactionExportHeaders = []string{
	"Material", "Type", "Quantity", "Note", "Recorded At",
}

// ExportXLSX renders a user's materials and their transaction ledger into a
// two-sheet workbook.
func (s *Service) ExportXLSX(userID uuid.UUID) (*excelize.File, error) {
	materials, err := s.ListMaterials(userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Materials"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})

	for i, h := range materialExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, m := range materials {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), m.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), m.Category)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), m.Unit)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), m.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), m.ReservedQuantity)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), m.AvailableQuantity())
	}

	txSheet := "Transactions"
	if _, err := f.NewSheet(txSheet); err != nil {
		return nil, fmt.Errorf("failed to create transactions sheet: %w", err)
	}
	for i, h := range transactionExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(txSheet, cell, h)
		f.SetCellStyle(txSheet, cell, cell, boldStyle)
	}

	row := 2
	for _, m := range materials {
		txs, err := s.ListTransactions(m.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range txs {
			f.SetCellValue(txSheet, fmt.Sprintf("A%d", row), m.Name)
			f.SetCellValue(txSheet, fmt.Sprintf("B%d", row), t.TransactionType)
			f.SetCellValue(txSheet, fmt.Sprintf("C%d", row), t.Quantity)
			f.SetCellValue(txSheet, fmt.Sprintf("D%d", row), t.Note)
			f.SetCellValue(txSheet, fmt.Sprintf("E%d", row), t.CreatedAt.Format("2006-01-02 15:04"))
			row++
		}
	}

	return f, nil
}
