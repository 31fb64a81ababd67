package model

// Store は店舗マスタの1件です。
type Store struct {
	ID        int64   `db:"id" json:"id"`
	StoreCode string  `db:"store_code" json:"storeCode"`
	StoreName string  `db:"store_name" json:"storeName"`
	Location  string  `db:"location" json:"location"`
	Phone     *string `db:"phone" json:"phone,omitempty"`
}

// StoreInfo はCSVから見つかった店舗情報です。
type StoreInfo struct {
	StoreCode string
	StoreName string
	Location  string
}

const (
	StoreCreated = "created"
	StoreUpdated = "updated"
)

// StoreChange は店舗マスタへの反映結果です。
type StoreChange struct {
	StoreCode string `json:"storeCode"`
	StoreName string `json:"storeName"`
	Change    string `json:"change"`
}
