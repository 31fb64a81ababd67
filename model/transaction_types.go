package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesTransaction はPOS売上明細の1行です。
// TransactionDate はタイムゾーンを持たない壁時計時刻として UTC で保持します。
type SalesTransaction struct {
	ID              int64           `db:"id" json:"id"`
	TransactionDate time.Time       `db:"transaction_date" json:"transactionDate"`
	StoreCode       string          `db:"store_code" json:"storeCode"`
	ProductCode     string          `db:"product_code" json:"productCode"`
	ProductName     string          `db:"product_name" json:"productName"`
	Quantity        int             `db:"quantity" json:"quantity"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unitPrice"`
	TotalPrice      decimal.Decimal `db:"total_price" json:"totalPrice"`
	GrossProfit     decimal.Decimal `db:"gross_profit" json:"grossProfit"`
	StaffID         string          `db:"staff_id" json:"staffId"`
	StaffName       string          `db:"staff_name" json:"staffName"`
	TicketNumber    string          `db:"ticket_number" json:"ticketNumber"`
	LargeCategory   string          `db:"large_category" json:"largeCategory"`
	SmallCategory   string          `db:"small_category" json:"smallCategory"`
	ProcedureName   string          `db:"procedure_name" json:"procedureName"`
	ProcedureName2  string          `db:"procedure_name_2" json:"procedureName2"`
	ServiceCategory string          `db:"service_category" json:"serviceCategory"`
	Fingerprint     string          `db:"fingerprint" json:"fingerprint"`
	UploadID        string          `db:"upload_id" json:"uploadId"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`

	// 判定専用 (保存しない)
	ContractType string `db:"-" json:"-"`
	// CSV上の行番号 (診断用)
	Line int `db:"-" json:"-"`
}

// Actor はアップロードを行う利用者です。nil の場合は店舗による絞り込みを行いません。
type Actor struct {
	Role      string `json:"role"`
	StoreCode string `json:"storeCode"`
}

// ImportReport は1回のアップロードの結果です。コミット後にのみ返されます。
type ImportReport struct {
	UploadID            string        `json:"uploadId"`
	Encoding            string        `json:"encoding"`
	InsertedCount       int           `json:"insertedCount"`
	DuplicateCount      int           `json:"duplicateCount"`
	FilteredOutCount    int           `json:"filteredOutCount"`
	DroppedRowCount     int           `json:"droppedRowCount"`
	DefaultedFieldCount int           `json:"defaultedFieldCount"`
	Stores              []StoreChange `json:"stores"`
}
