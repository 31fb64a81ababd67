package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"salesperf/model"
)

const salesTransactionColumns = `
    id, transaction_date, store_code, product_code, product_name,
    quantity, unit_price, total_price, gross_profit, staff_id, staff_name,
    ticket_number, large_category, small_category, procedure_name, procedure_name_2,
    service_category, fingerprint, upload_id, created_at`

const insertSalesTransactionQuery = `
INSERT INTO sales_transactions (
    transaction_date, store_code, product_code, product_name,
    quantity, unit_price, total_price, gross_profit, staff_id, staff_name,
    ticket_number, large_category, small_category, procedure_name, procedure_name_2,
    service_category, fingerprint, upload_id, created_at
) VALUES (
    :transaction_date, :store_code, :product_code, :product_name,
    :quantity, :unit_price, :total_price, :gross_profit, :staff_id, :staff_name,
    :ticket_number, :large_category, :small_category, :procedure_name, :procedure_name_2,
    :service_category, :fingerprint, :upload_id, :created_at
)`

// insertBatchSize は1回の INSERT にまとめる行数です。
// SQLite のプレースホルダー上限 (32766) を超えないようにします。
const insertBatchSize = 500

// GetAllFingerprintsInTx は取込済み明細の指紋を全件返します。
func GetAllFingerprintsInTx(ctx context.Context, tx *sqlx.Tx) ([]string, error) {
	var fps []string
	if err := tx.SelectContext(ctx, &fps, `SELECT fingerprint FROM sales_transactions`); err != nil {
		return nil, fmt.Errorf("failed to get fingerprints: %w", err)
	}
	return fps, nil
}

// InsertSalesTransactionsInTx は明細をまとめて登録します。
// 日時は UTC の壁時計時刻として保存します。
func InsertSalesTransactionsInTx(ctx context.Context, tx *sqlx.Tx, records []model.SalesTransaction) error {
	now := time.Now().UTC()
	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := make([]model.SalesTransaction, 0, end-start)
		for _, r := range records[start:end] {
			r.TransactionDate = r.TransactionDate.UTC()
			if r.CreatedAt.IsZero() {
				r.CreatedAt = now
			}
			batch = append(batch, r)
		}
		if _, err := tx.NamedExecContext(ctx, insertSalesTransactionQuery, batch); err != nil {
			return fmt.Errorf("failed to insert sales transactions (%d-%d): %w", start, end, err)
		}
	}
	return nil
}

// GetSalesTransactions は明細を新しい順に返します。
func GetSalesTransactions(ctx context.Context, db *sqlx.DB, storeCode string, limit, offset int) ([]model.SalesTransaction, error) {
	q := `SELECT ` + salesTransactionColumns + ` FROM sales_transactions`
	args := []interface{}{}
	if storeCode != "" {
		q += ` WHERE store_code = ?`
		args = append(args, storeCode)
	}
	q += ` ORDER BY transaction_date DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var records []model.SalesTransaction
	if err := db.SelectContext(ctx, &records, q, args...); err != nil {
		return nil, fmt.Errorf("failed to get sales transactions: %w", err)
	}
	return records, nil
}

// CountSalesTransactions は明細の件数を返します。storeCode が空でなければその店舗だけを数えます。
func CountSalesTransactions(ctx context.Context, db *sqlx.DB, storeCode string) (int, error) {
	q := `SELECT COUNT(*) FROM sales_transactions`
	args := []interface{}{}
	if storeCode != "" {
		q += ` WHERE store_code = ?`
		args = append(args, storeCode)
	}
	var n int
	if err := db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, fmt.Errorf("failed to count sales transactions: %w", err)
	}
	return n, nil
}
