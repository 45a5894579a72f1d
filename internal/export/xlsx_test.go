package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pricecompare-bot/internal/compare"
)

func TestXLSX(t *testing.T) {
	s := compare.Sheet{
		Rows: []compare.Row{
			{Price: "10", Amount: "5"},
			{Price: "8", Amount: "4"},
			{Price: "", Amount: ""},
		},
		Unit:  compare.Weight,
		Scale: compare.ScaleLarge,
	}

	buf, err := XLSX(s, "R$")
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"#", "Amount (kg)", "Price (R$)", "R$/kg", "Cheapest"}, rows[0])
	assert.Equal(t, []string{"1", "5", "10", "2", "yes"}, rows[1])
	assert.Equal(t, []string{"2", "4", "8", "2", "yes"}, rows[2])
	assert.Equal(t, "0", rows[3][3])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "comparison_volume.xlsx", Filename(compare.NewSheet(1).WithUnit(compare.Volume)))
}
