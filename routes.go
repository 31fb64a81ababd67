package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"salesperf/config"
	"salesperf/ingest"
	"salesperf/logger"
	"salesperf/model"
	"salesperf/sales"
)

// NewRouter はAPIのルーティングを組み立てます。
func NewRouter(dbConn *sqlx.DB, cfg config.Config, configPath string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(actorHeaders)

	importer := ingest.NewImporter(dbConn, cfg.PrivilegedRole)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", ingest.UploadSalesHandler(importer, cfg.MaxUploadMB))
		r.Get("/transactions", sales.ListTransactionsHandler(dbConn))
		r.Get("/stores", sales.ListStoresHandler(dbConn))
		r.Get("/config", GetConfigHandler())
		r.Put("/config", SaveConfigHandler(configPath))
	})
	return r
}

// actorHeaders は前段の認証プロキシが付けるヘッダーから利用者を取り出します。
// ヘッダーが無い場合は利用者なしとして扱います。
func actorHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := r.Header.Get("X-Actor-Role")
		if role == "" {
			next.ServeHTTP(w, r)
			return
		}
		actor := &model.Actor{Role: role, StoreCode: r.Header.Get("X-Actor-Store")}
		next.ServeHTTP(w, r.WithContext(ingest.WithActor(r.Context(), actor)))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Named("http").Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
