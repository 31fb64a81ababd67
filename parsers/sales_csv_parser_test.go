package parsers

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp_Layouts(t *testing.T) {
	want := time.Date(2025, 4, 1, 10, 15, 0, 0, time.UTC)
	cases := []struct {
		date, clock string
		want        time.Time
	}{
		{"2025/04/01", "10:15:00", want},
		{"2025/4/1", "10:15:00", want},
		{"2025/4/1", "10:15", want},
		{"2025/4/1", "", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"20250401", "10:15:00", want},
		{"2025-04-01", "10:15:00", want},
		{" 2025/4/1 ", " 10:15:00 ", want},
	}
	for _, tc := range cases {
		got, err := ParseTimestamp(tc.date, tc.clock)
		require.NoError(t, err, "%q %q", tc.date, tc.clock)
		assert.True(t, tc.want.Equal(got), "%q %q: got %v", tc.date, tc.clock, got)
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, date := range []string{"", "not-a-date", "2025/13/45", "04/01/2025"} {
		_, err := ParseTimestamp(date, "10:00:00")
		assert.Error(t, err, date)
	}
}

func TestExtractTransactions_FullRow(t *testing.T) {
	rows := []RawRow{{Line: 2, Cells: salesCells(validSalesCells())}}

	txs, diags := ExtractTransactions(rows, DefaultSalesColumns)
	require.Len(t, txs, 1)
	assert.Empty(t, diags)

	tx := txs[0]
	assert.Equal(t, time.Date(2025, 4, 1, 10, 15, 0, 0, time.UTC), tx.TransactionDate)
	assert.Equal(t, "S100", tx.StoreCode)
	assert.Equal(t, "T1", tx.TicketNumber)
	assert.Equal(t, "P-1", tx.ProductCode)
	assert.Equal(t, "iPhone 15", tx.ProductName)
	assert.Equal(t, 1, tx.Quantity)
	assert.True(t, decimal.RequireFromString("120000").Equal(tx.TotalPrice))
	assert.True(t, decimal.RequireFromString("15000.5").Equal(tx.GrossProfit))
	assert.Equal(t, "山田太郎", tx.StaffName)
	assert.Equal(t, "au", tx.ContractType)
	assert.Equal(t, "MNP", tx.ProcedureName)
	assert.Equal(t, 2, tx.Line)
	assert.Empty(t, tx.ServiceCategory)
}

func TestExtractTransactions_BadDateDropsOnlyThatRow(t *testing.T) {
	bad := validSalesCells()
	bad[DefaultSalesColumns.SalesDate] = "someday"
	rows := []RawRow{
		{Line: 2, Cells: salesCells(validSalesCells())},
		{Line: 3, Cells: salesCells(bad)},
		{Line: 4, Cells: salesCells(validSalesCells())},
	}

	txs, diags := ExtractTransactions(rows, DefaultSalesColumns)
	require.Len(t, txs, 2)
	assert.Equal(t, 2, txs[0].Line)
	assert.Equal(t, 4, txs[1].Line)

	require.Len(t, diags, 1)
	assert.Equal(t, RowDropped, diags[0].Kind)
	assert.Equal(t, 3, diags[0].Line)
	assert.Equal(t, "transaction_date", diags[0].Field)
}

func TestExtractTransactions_NumericDefaults(t *testing.T) {
	c := DefaultSalesColumns
	cells := validSalesCells()
	cells[c.Quantity] = "abc"
	cells[c.UnitPrice] = "N/A"
	cells[c.TotalPrice] = ""
	rows := []RawRow{{Line: 2, Cells: salesCells(cells)}}

	txs, diags := ExtractTransactions(rows, c)
	require.Len(t, txs, 1)
	tx := txs[0]
	assert.Equal(t, 1, tx.Quantity)
	assert.True(t, tx.UnitPrice.IsZero())
	assert.True(t, tx.TotalPrice.IsZero())
	assert.Equal(t, "iPhone 15", tx.ProductName, "other fields are kept")
	assert.Equal(t, "T1", tx.TicketNumber)

	// 空欄の金額は警告なしで0
	require.Len(t, diags, 2)
	assert.Equal(t, FieldDefaulted, diags[0].Kind)
	assert.Equal(t, "quantity", diags[0].Field)
	assert.Equal(t, "abc", diags[0].Value)
	assert.Equal(t, "unit_price", diags[1].Field)
}

func TestExtractTransactions_IntegralDecimalQuantity(t *testing.T) {
	cells := validSalesCells()
	cells[DefaultSalesColumns.Quantity] = "2.0"
	txs, diags := ExtractTransactions([]RawRow{{Line: 2, Cells: salesCells(cells)}}, DefaultSalesColumns)
	require.Len(t, txs, 1)
	assert.Equal(t, 2, txs[0].Quantity)
	assert.Empty(t, diags)

	cells[DefaultSalesColumns.Quantity] = "1.5"
	txs, diags = ExtractTransactions([]RawRow{{Line: 2, Cells: salesCells(cells)}}, DefaultSalesColumns)
	require.Len(t, txs, 1)
	assert.Equal(t, 1, txs[0].Quantity)
	assert.Len(t, diags, 1)
}

func TestExtractTransactions_QuantityOutOfRange(t *testing.T) {
	for _, q := range []string{"99999999999999999999", "-99999999999999999999", "1e30"} {
		cells := validSalesCells()
		cells[DefaultSalesColumns.Quantity] = q
		txs, diags := ExtractTransactions([]RawRow{{Line: 2, Cells: salesCells(cells)}}, DefaultSalesColumns)
		require.Len(t, txs, 1, q)
		assert.Equal(t, 1, txs[0].Quantity, q)
		require.Len(t, diags, 1, q)
		assert.Equal(t, FieldDefaulted, diags[0].Kind, q)
		assert.Equal(t, "quantity", diags[0].Field, q)
	}
}

func TestExtractTransactions_ShortRow(t *testing.T) {
	c := DefaultSalesColumns
	// 時刻列より後ろが無い行
	cells := make([]string, c.SalesDate+1)
	cells[c.StoreCode] = "S1"
	cells[c.SalesDate] = "2025/04/01"

	txs, diags := ExtractTransactions([]RawRow{{Line: 5, Cells: cells}}, c)
	require.Len(t, txs, 1)
	assert.Empty(t, diags)
	tx := txs[0]
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), tx.TransactionDate)
	assert.Equal(t, "S1", tx.StoreCode)
	assert.Equal(t, "", tx.TicketNumber)
	assert.Equal(t, 1, tx.Quantity)
	assert.True(t, tx.GrossProfit.IsZero())
}

func TestSalesColumns_Width(t *testing.T) {
	assert.Equal(t, 74, DefaultSalesColumns.Width())
}

func TestReadRows_SkipsHeaderAndNumbersLines(t *testing.T) {
	text := "h1,h2,h3\na,b,c\n\"x,y\",z\nshort\n"
	rows, diags := ReadRows(text)
	assert.Empty(t, diags)
	require.Len(t, rows, 3)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0].Cells)
	assert.Equal(t, "x,y", rows[1].Cell(0))
	assert.Equal(t, 4, rows[2].Line)
	assert.Equal(t, "", rows[2].Cell(5))
	assert.False(t, rows[2].Has(1))
}

func TestReadRows_Empty(t *testing.T) {
	rows, diags := ReadRows("")
	assert.Empty(t, rows)
	assert.Empty(t, diags)

	rows, _ = ReadRows("only,header\n")
	assert.Empty(t, rows)
}
