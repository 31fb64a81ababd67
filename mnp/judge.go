// Package mnp は売上伝票単位で明細を見てサービスカテゴリを判定します (MNP判定)。
package mnp

import (
	"strings"

	"salesperf/model"
)

// POS出力に現れる値
const (
	LargeCategoryDevice       = "移動機"
	LargeCategorySIM          = "SIM"
	LargeCategoryAuPlusOne    = "au+1 Collection"
	SmallCategoryAuSIM        = "au-SIM"
	SmallCategoryESIM         = "eSIM"
	SmallCategoryUQSIM        = "UQ-SIM"
	SmallCategoryUQSIM2       = "UQ-SIM2"
	SmallCategorySetupSupport = "店頭設定サポート"
	ProcedureMNP              = "MNP"
	ProcedureNumberTransfer   = "番号移行"
	ProcedureDeviceChange     = "機種変更"
	ContractAu                = "au"
	ContractUQ                = "UQ"
)

// phoneSmallCategories は au 端末とみなす中分類です。
var phoneSmallCategories = map[string]struct{}{
	"iPhone":  {},
	"スマートフォン": {},
}

// サービスカテゴリ
const (
	CategoryAuMNPWithDevice = "auMNP(端末あり)"
	CategoryAuMNPSIMOnly    = "auMNP(SIM単体)"
	CategoryUQMNPWithDevice = "UQMNP(端末あり)"
	CategoryUQMNPSIMOnly    = "UQMNP(SIM単体)"
	CategoryAuPlusOne       = "au+1Collection"
	CategorySetupSupport    = "au店頭設定サポート"
	CategoryDeviceChange    = "機種変更"
	CategoryAuSIMStandalone = "au-SIM単体販売"
	CategoryUQSIMStandalone = "UQ-SIM単体販売"
	CategoryOther           = "その他"
)

// ProcedureVariant は伝票内で見つかった手続区分の種類です。
type ProcedureVariant string

const (
	ProcedureNone       ProcedureVariant = ""
	ProcedureVariantMNP ProcedureVariant = "MNP"
)

// Flags は伝票全体から導いた判定材料です。値型で、作成後は変更しません。
type Flags struct {
	HasMNPProcedure  bool
	ProcedureVariant ProcedureVariant
	HasAuDevice      bool
	HasUQDevice      bool
	HasAuSIM         bool
	HasUQSIM         bool
}

// ScanTicket は伝票内の全明細を畳み込んで Flags を作ります。
func ScanTicket(rows []model.SalesTransaction) Flags {
	var f Flags
	for _, r := range rows {
		f = f.with(r)
	}
	return f
}

func (f Flags) with(r model.SalesTransaction) Flags {
	if p := r.ProcedureName; p != "" {
		hasMNP := strings.Contains(p, ProcedureMNP)
		if hasMNP || strings.Contains(p, ProcedureNumberTransfer) {
			f.HasMNPProcedure = true
		}
		// 番号移行だけではMNPとは記録しない
		if hasMNP {
			f.ProcedureVariant = ProcedureVariantMNP
		}
	}

	if r.LargeCategory == LargeCategoryDevice && r.SmallCategory != "" {
		_, isPhone := phoneSmallCategories[r.SmallCategory]
		if isPhone || strings.Contains(strings.ToLower(r.ProductName), "au") {
			f.HasAuDevice = true
		}
		if strings.Contains(strings.ToUpper(r.ProductName), "UQ") {
			f.HasUQDevice = true
		}
	}

	if r.LargeCategory == LargeCategorySIM && r.SmallCategory != "" {
		switch r.SmallCategory {
		case SmallCategoryAuSIM, SmallCategoryESIM:
			f.HasAuSIM = true
		case SmallCategoryUQSIM, SmallCategoryUQSIM2:
			f.HasUQSIM = true
		}
	}
	return f
}

// Judge は明細1行のサービスカテゴリを決めます。必ずいずれかのカテゴリを返します。
func Judge(r model.SalesTransaction, f Flags) string {
	if c := judgeMNP(r, f); c != "" {
		return c
	}

	switch {
	case r.LargeCategory == LargeCategoryAuPlusOne:
		return CategoryAuPlusOne
	case strings.Contains(r.SmallCategory, SmallCategorySetupSupport):
		return CategorySetupSupport
	case strings.Contains(r.ProcedureName, ProcedureDeviceChange):
		return CategoryDeviceChange
	case r.LargeCategory == LargeCategorySIM && r.SmallCategory == SmallCategoryAuSIM:
		return CategoryAuSIMStandalone
	case r.LargeCategory == LargeCategorySIM && r.SmallCategory == SmallCategoryUQSIM:
		return CategoryUQSIMStandalone
	case r.LargeCategory != "":
		return r.LargeCategory
	}
	return CategoryOther
}

// judgeMNP は契約区分が au / UQ の行だけをMNPカテゴリに振り分けます。
// それ以外の契約区分は通常の判定に回します。
func judgeMNP(r model.SalesTransaction, f Flags) string {
	if !f.HasMNPProcedure {
		return ""
	}
	switch r.ContractType {
	case ContractAu:
		return mnpCategory(f.HasAuDevice, f.HasAuSIM, CategoryAuMNPWithDevice, CategoryAuMNPSIMOnly)
	case ContractUQ:
		return mnpCategory(f.HasUQDevice, f.HasUQSIM, CategoryUQMNPWithDevice, CategoryUQMNPSIMOnly)
	}
	return ""
}

func mnpCategory(device, sim bool, withDevice, simOnly string) string {
	switch {
	case device && sim:
		return withDevice
	case sim:
		return simOnly
	}
	return ""
}

// Classify は全明細を伝票ごとに判定し、ServiceCategory を設定します。
func Classify(txs []model.SalesTransaction) {
	for _, t := range GroupByTicket(txs) {
		rows := make([]model.SalesTransaction, len(t.Rows))
		for i, idx := range t.Rows {
			rows[i] = txs[idx]
		}
		flags := ScanTicket(rows)
		for _, idx := range t.Rows {
			txs[idx].ServiceCategory = Judge(txs[idx], flags)
		}
	}
}
