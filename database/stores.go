package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"salesperf/model"
)

const storeColumns = `id, store_code, store_name, location, phone`

// GetStoreByCodeInTx は店舗コードで店舗を取得します。存在しない場合は nil を返します。
func GetStoreByCodeInTx(ctx context.Context, tx *sqlx.Tx, code string) (*model.Store, error) {
	var s model.Store
	err := tx.GetContext(ctx, &s, `SELECT `+storeColumns+` FROM stores WHERE store_code = ?`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetStoreByCodeInTx (Code: %s) failed: %w", code, err)
	}
	return &s, nil
}

// CreateStoreInTx は店舗を登録します。
func CreateStoreInTx(ctx context.Context, tx *sqlx.Tx, info model.StoreInfo) error {
	const q = `INSERT INTO stores (store_code, store_name, location) VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, info.StoreCode, info.StoreName, info.Location); err != nil {
		return fmt.Errorf("CreateStoreInTx (Code: %s, Name: %s) failed: %w", info.StoreCode, info.StoreName, err)
	}
	return nil
}

// UpdateStoreNameInTx は店舗名だけを更新します。
func UpdateStoreNameInTx(ctx context.Context, tx *sqlx.Tx, code, name string) error {
	const q = `UPDATE stores SET store_name = ? WHERE store_code = ?`
	if _, err := tx.ExecContext(ctx, q, name, code); err != nil {
		return fmt.Errorf("UpdateStoreNameInTx (Code: %s, Name: %s) failed: %w", code, name, err)
	}
	return nil
}

// GetAllStores は全店舗を店舗コード順に返します。
func GetAllStores(ctx context.Context, db *sqlx.DB) ([]model.Store, error) {
	var stores []model.Store
	if err := db.SelectContext(ctx, &stores, `SELECT `+storeColumns+` FROM stores ORDER BY store_code`); err != nil {
		return nil, fmt.Errorf("failed to get all stores: %w", err)
	}
	return stores, nil
}
