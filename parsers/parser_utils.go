package parsers

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"salesperf/logger"
)

// RawRow はCSVの1行分のセルです。Line はヘッダーを1行目とした行番号です。
type RawRow struct {
	Line  int
	Cells []string
}

// Cell は idx 番目のセルを前後の空白を除いて返します。範囲外は空文字です。
func (r RawRow) Cell(idx int) string {
	if idx < 0 || idx >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[idx])
}

// Has は idx 番目のセルが存在するかを返します。
func (r RawRow) Has(idx int) bool {
	return idx >= 0 && idx < len(r.Cells)
}

// DiagnosticKind は行・項目単位の警告の種類です。
type DiagnosticKind string

const (
	// RowDropped は日時が解析できず行を捨てたことを示します。
	RowDropped DiagnosticKind = "row_dropped"
	// FieldDefaulted は数値項目が解析できず既定値を使ったことを示します。
	FieldDefaulted DiagnosticKind = "field_defaulted"
	// RowUnreadable はCSVとして読めなかった行です。
	RowUnreadable DiagnosticKind = "row_unreadable"
)

// Diagnostic は取込を止めない警告です。呼び出し側がログに出すか捨てるかを決めます。
type Diagnostic struct {
	Line   int            `json:"line"`
	Kind   DiagnosticKind `json:"kind"`
	Field  string         `json:"field,omitempty"`
	Value  string         `json:"value,omitempty"`
	Reason string         `json:"reason"`
}

// ReadRows はデコード済みのCSVテキストを行に分割します。BOM は DecodeBytes で除去済みの前提です。
// 先頭のヘッダー行は列名が信用できないため読み捨てます。
func ReadRows(text string) ([]RawRow, []Diagnostic) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	log := logger.Named("parsers")

	if _, err := reader.Read(); err != nil {
		if !errors.Is(err, io.EOF) {
			log.Warn().Err(err).Msg("CSVヘッダーの読み取りに失敗")
		}
		return nil, nil
	}

	var (
		rows  []RawRow
		diags []Diagnostic
	)
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var line int
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			diags = append(diags, Diagnostic{Line: line, Kind: RowUnreadable, Reason: err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, RawRow{Line: line, Cells: rec})
	}
	return rows, diags
}
