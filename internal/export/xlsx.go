// Package export renders comparison sheets as Excel workbooks.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"pricecompare-bot/internal/compare"
)

const sheetName = "Comparison"

// XLSX writes the evaluated sheet to an in-memory workbook. Cheapest rows are
// bold on a green fill.
func XLSX(s compare.Sheet, currency string) (*bytes.Buffer, error) {
	res := compare.Evaluate(s)
	amountUnit := s.Scale.AmountLabel(s.Unit)
	priceUnit := s.Scale.PriceLabel(s.Unit)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []string{
		"#",
		fmt.Sprintf("Amount (%s)", amountUnit),
		fmt.Sprintf("Price (%s)", currency),
		fmt.Sprintf("%s/%s", currency, priceUnit),
		"Cheapest",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	cheapestStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D1FAE5"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create highlight style: %w", err)
	}

	for i, rr := range res.Rows {
		row := i + 2
		cheapest := ""
		if rr.Cheapest {
			cheapest = "yes"
		}

		data := []any{
			rr.Index + 1,
			rr.Row.Amount,
			rr.Row.Price,
			rr.UnitPrice,
			cheapest,
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", rr.Index+1, err)
			}
		}

		if rr.Cheapest {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(headers), row)
			if err := f.SetCellStyle(sheetName, first, last, cheapestStyle); err != nil {
				return nil, fmt.Errorf("failed to highlight row %d: %w", rr.Index+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// Filename is the download name of an exported sheet.
func Filename(s compare.Sheet) string {
	return fmt.Sprintf("comparison_%s.xlsx", s.Unit)
}
