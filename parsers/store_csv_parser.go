package parsers

import (
	"strings"

	"salesperf/model"
)

const (
	// PlaceholderStorePrefix は店舗名が不明な場合の仮名の接頭辞です。
	PlaceholderStorePrefix = "店舗 "
	// DefaultStoreLocation は所在地の初期値です。
	DefaultStoreLocation = "未設定"
)

// PlaceholderStoreName は店舗コードから仮の店舗名を作ります。
func PlaceholderStoreName(code string) string {
	return PlaceholderStorePrefix + code
}

// IsPlaceholderStoreName は自動生成された仮の店舗名かを判定します。
func IsPlaceholderStoreName(name string) bool {
	return strings.HasPrefix(name, PlaceholderStorePrefix)
}

// DiscoverStores はCSVの各行から店舗コードと店舗名を抽出します。
// 売上明細として読めない行も対象にし、店舗コードごとに最初の行を採用します。
func DiscoverStores(rows []RawRow, cols SalesColumns) []model.StoreInfo {
	var stores []model.StoreInfo
	seen := make(map[string]struct{})

	for _, row := range rows {
		code := row.Cell(cols.StoreCode)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}

		name := row.Cell(cols.StoreName)
		if name == "" {
			name = PlaceholderStoreName(code)
		}
		stores = append(stores, model.StoreInfo{
			StoreCode: code,
			StoreName: name,
			Location:  DefaultStoreLocation,
		})
	}
	return stores
}
