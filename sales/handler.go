package sales

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jmoiron/sqlx"

	"salesperf/database"
	"salesperf/logger"
	"salesperf/model"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

func respondJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// TransactionPage は明細一覧APIのレスポンスです。
type TransactionPage struct {
	Total        int                      `json:"total"`
	Limit        int                      `json:"limit"`
	Offset       int                      `json:"offset"`
	Transactions []model.SalesTransaction `json:"transactions"`
}

// ListTransactionsHandler は取込済み明細を返します。store_code で店舗を絞り込めます。
func ListTransactionsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, err := queryInt(q.Get("limit"), defaultPageSize)
		if err != nil || limit < 1 || limit > maxPageSize {
			respondJSONError(w, "limit must be between 1 and 1000", http.StatusBadRequest)
			return
		}
		offset, err := queryInt(q.Get("offset"), 0)
		if err != nil || offset < 0 {
			respondJSONError(w, "offset must be zero or positive", http.StatusBadRequest)
			return
		}

		storeCode := q.Get("store_code")
		total, err := database.CountSalesTransactions(r.Context(), db, storeCode)
		if err != nil {
			logger.Named("sales").Error().Err(err).Msg("count failed")
			respondJSONError(w, "Failed to count transactions", http.StatusInternalServerError)
			return
		}
		records, err := database.GetSalesTransactions(r.Context(), db, storeCode, limit, offset)
		if err != nil {
			logger.Named("sales").Error().Err(err).Msg("list failed")
			respondJSONError(w, "Failed to get transactions", http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []model.SalesTransaction{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TransactionPage{
			Total:        total,
			Limit:        limit,
			Offset:       offset,
			Transactions: records,
		})
	}
}

// ListStoresHandler は店舗マスタを返します。
func ListStoresHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stores, err := database.GetAllStores(r.Context(), db)
		if err != nil {
			logger.Named("sales").Error().Err(err).Msg("store list failed")
			respondJSONError(w, "Failed to get stores", http.StatusInternalServerError)
			return
		}
		if stores == nil {
			stores = []model.Store{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stores)
	}
}

func queryInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
