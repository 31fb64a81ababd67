package parsers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"salesperf/model"
)

// SalesColumns はPOS売上明細CSVの論理項目と列位置(0始まり)の対応表です。
// 出力元によってヘッダー名が揺れるため、列名ではなく位置で読みます。
type SalesColumns struct {
	StoreCode       int // 統括拠点コード
	StoreName       int // 統括拠点名
	SalesDate       int // 売上日付
	SalesTime       int // 売上時刻
	TicketNumber    int // 売上伝票番号
	ProductCode     int // 商品コード
	ProductName     int // POS表示商品名
	LargeCategory   int // 大分類名
	SmallCategory   int // 中分類名
	Quantity        int // 数量
	UnitPrice       int // 販売単価（税込）
	TotalPrice      int // 販売明細額（税込）
	ProcedureName   int // 手続区分名
	ProcedureName2  int // 手続区分２名
	StaffID         int // 実績ユーザーID
	StaffFamilyName int // 実績担当者姓
	StaffGivenName  int // 実績担当者名
	ContractType    int // お客様契約区分名
	GrossProfit     int // 粗利
}

// DefaultSalesColumns は現行のPOS売上明細データの列配置です。
var DefaultSalesColumns = SalesColumns{
	StoreCode:       1,
	StoreName:       2,
	SalesDate:       4,
	SalesTime:       5,
	TicketNumber:    7,
	ProductCode:     16,
	ProductName:     17,
	LargeCategory:   21,
	SmallCategory:   23,
	Quantity:        30,
	UnitPrice:       31,
	TotalPrice:      32,
	ProcedureName:   48,
	ProcedureName2:  50,
	StaffID:         57,
	StaffFamilyName: 58,
	StaffGivenName:  59,
	ContractType:    64,
	GrossProfit:     73,
}

// Width は対応表が参照する最大列数です。
func (c SalesColumns) Width() int {
	w := 0
	for _, idx := range []int{
		c.StoreCode, c.StoreName, c.SalesDate, c.SalesTime, c.TicketNumber,
		c.ProductCode, c.ProductName, c.LargeCategory, c.SmallCategory,
		c.Quantity, c.UnitPrice, c.TotalPrice, c.ProcedureName, c.ProcedureName2,
		c.StaffID, c.StaffFamilyName, c.StaffGivenName, c.ContractType, c.GrossProfit,
	} {
		if idx+1 > w {
			w = idx + 1
		}
	}
	return w
}

// TimestampLayouts は売上日付+売上時刻として受け付ける書式です。先に一致したものを使います。
// "1" "2" "15" は1桁・2桁の両方を受け付けます。
var TimestampLayouts = []string{
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"20060102 15:04:05",
	"2006-1-2 15:04:05",
}

// defaultSalesTime は時刻列が存在しない行に使う時刻です。
const defaultSalesTime = "00:00:00"

// ParseTimestamp は日付と時刻のセルを結合して解析します。
func ParseTimestamp(date, clock string) (time.Time, error) {
	combined := strings.TrimSpace(strings.TrimSpace(date) + " " + strings.TrimSpace(clock))
	for _, layout := range TimestampLayouts {
		if t, err := time.Parse(layout, combined); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("日付形式が認識できません: %q", combined)
}

// ExtractTransactions は各行を売上明細に変換します。
// 日時が読めない行は捨て、数値項目が読めない場合はその項目だけ既定値にします。
func ExtractTransactions(rows []RawRow, cols SalesColumns) ([]model.SalesTransaction, []Diagnostic) {
	var (
		txs   []model.SalesTransaction
		diags []Diagnostic
	)

	for _, row := range rows {
		clock := defaultSalesTime
		if row.Has(cols.SalesTime) {
			clock = row.Cell(cols.SalesTime)
		}
		ts, err := ParseTimestamp(row.Cell(cols.SalesDate), clock)
		if err != nil {
			diags = append(diags, Diagnostic{
				Line:   row.Line,
				Kind:   RowDropped,
				Field:  "transaction_date",
				Value:  row.Cell(cols.SalesDate) + " " + clock,
				Reason: err.Error(),
			})
			continue
		}

		tx := model.SalesTransaction{
			TransactionDate: ts,
			StoreCode:       row.Cell(cols.StoreCode),
			ProductCode:     row.Cell(cols.ProductCode),
			ProductName:     row.Cell(cols.ProductName),
			TicketNumber:    row.Cell(cols.TicketNumber),
			LargeCategory:   row.Cell(cols.LargeCategory),
			SmallCategory:   row.Cell(cols.SmallCategory),
			ProcedureName:   row.Cell(cols.ProcedureName),
			ProcedureName2:  row.Cell(cols.ProcedureName2),
			StaffID:         row.Cell(cols.StaffID),
			StaffName:       strings.TrimSpace(row.Cell(cols.StaffFamilyName) + row.Cell(cols.StaffGivenName)),
			ContractType:    row.Cell(cols.ContractType),
			Line:            row.Line,
		}

		var d *Diagnostic
		tx.Quantity, d = parseQuantity(row, cols.Quantity)
		diags = appendDiag(diags, d)
		tx.UnitPrice, d = parseMoney(row, cols.UnitPrice, "unit_price")
		diags = appendDiag(diags, d)
		tx.TotalPrice, d = parseMoney(row, cols.TotalPrice, "total_price")
		diags = appendDiag(diags, d)
		tx.GrossProfit, d = parseMoney(row, cols.GrossProfit, "gross_profit")
		diags = appendDiag(diags, d)

		txs = append(txs, tx)
	}
	return txs, diags
}

func appendDiag(diags []Diagnostic, d *Diagnostic) []Diagnostic {
	if d == nil {
		return diags
	}
	return append(diags, *d)
}

// parseQuantity は数量を整数で読みます。"2.0" のような整数値の小数表記も受け付けます。
// 空欄は黙って1、それ以外の不正値は警告付きで1にします。
func parseQuantity(row RawRow, idx int) (int, *Diagnostic) {
	s := row.Cell(idx)
	if s == "" {
		return 1, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	if d, err := decimal.NewFromString(s); err == nil && fitsInt(d) {
		return int(d.IntPart()), nil
	}
	return 1, &Diagnostic{
		Line:   row.Line,
		Kind:   FieldDefaulted,
		Field:  "quantity",
		Value:  s,
		Reason: "数量が数値ではありません (1 を使用)",
	}
}

// fitsInt は d が int に収まる整数値かを返します。IntPart は範囲外で黙って桁あふれします。
func fitsInt(d decimal.Decimal) bool {
	if !d.Equal(d.Truncate(0)) {
		return false
	}
	if d.LessThan(decimal.NewFromInt(math.MinInt)) || d.GreaterThan(decimal.NewFromInt(math.MaxInt)) {
		return false
	}
	return decimal.NewFromInt(d.IntPart()).Equal(d)
}

func parseMoney(row RawRow, idx int, field string) (decimal.Decimal, *Diagnostic) {
	s := row.Cell(idx)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &Diagnostic{
			Line:   row.Line,
			Kind:   FieldDefaulted,
			Field:  field,
			Value:  s,
			Reason: "金額が数値ではありません (0 を使用)",
		}
	}
	return d, nil
}
