package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"salesperf/logger"
	"salesperf/model"
	"salesperf/parsers"
)

type actorKey struct{}

// WithActor は認証済みの利用者をリクエストのコンテキストに設定します。
// 認証処理はこのパッケージの外で行います。
func WithActor(ctx context.Context, actor *model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext はコンテキストの利用者を返します。未設定の場合は nil です。
func ActorFromContext(ctx context.Context) *model.Actor {
	a, _ := ctx.Value(actorKey{}).(*model.Actor)
	return a
}

func respondJSONError(w http.ResponseWriter, message string, statusCode int) {
	logger.Named("ingest").Warn().Int("status", statusCode).Msg(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// UploadSalesHandler はブラウザからのCSVアップロードを受け付けます。
func UploadSalesHandler(im *Importer, maxUploadMB int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		limit := int64(maxUploadMB) << 20
		r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))
		if err := r.ParseMultipartForm(limit); err != nil {
			respondJSONError(w, "File upload error: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			respondJSONError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			respondJSONError(w, fmt.Sprintf("Failed to read file: %v", err), http.StatusBadRequest)
			return
		}

		report, err := im.Import(r.Context(), data, ActorFromContext(r.Context()))
		switch {
		case errors.Is(err, parsers.ErrEncoding):
			respondJSONError(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			respondJSONError(w, fmt.Sprintf("Failed to process %s: %v", header.Filename, err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": uploadMessage(report),
			"report":  report,
		})
	}
}

func uploadMessage(r *model.ImportReport) string {
	msg := fmt.Sprintf("Successfully uploaded %d new transactions", r.InsertedCount)
	if r.DuplicateCount > 0 {
		msg += fmt.Sprintf(" (skipped %d duplicates)", r.DuplicateCount)
	}
	if r.FilteredOutCount > 0 {
		msg += fmt.Sprintf(" (filtered out %d records from other stores)", r.FilteredOutCount)
	}
	return msg
}
