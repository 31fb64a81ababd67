package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"salesperf/database"
	"salesperf/dedup"
	"salesperf/logger"
	"salesperf/mnp"
	"salesperf/model"
	"salesperf/parsers"
)

// ErrPersistence は店舗反映と明細登録をまとめたトランザクションが失敗したことを示します。
// この場合アップロードの内容は何も残りません。
var ErrPersistence = errors.New("failed to persist upload")

// Importer はPOS売上明細CSVの取込を行います。
type Importer struct {
	DB             *sqlx.DB
	Columns        parsers.SalesColumns
	PrivilegedRole string
}

// NewImporter は現行の列配置で Importer を作ります。
func NewImporter(db *sqlx.DB, privilegedRole string) *Importer {
	return &Importer{
		DB:             db,
		Columns:        parsers.DefaultSalesColumns,
		PrivilegedRole: privilegedRole,
	}
}

// restricts は actor が自店舗のデータしか扱えない利用者かを返します。
func (im *Importer) restricts(actor *model.Actor) bool {
	return actor != nil && actor.Role != im.PrivilegedRole
}

// Import はファイルの内容を取り込み、コミットした内容のレポートを返します。
func (im *Importer) Import(ctx context.Context, data []byte, actor *model.Actor) (*model.ImportReport, error) {
	uploadID := uuid.NewString()
	log := logger.Named("ingest").With().Str("upload_id", uploadID).Logger()

	text, enc, err := parsers.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode upload: %w", err)
	}
	log.Info().Str("encoding", string(enc)).Int("bytes", len(data)).Msg("CSV upload decoded")

	rows, readDiags := parsers.ReadRows(text)

	var (
		candidates []model.SalesTransaction
		parseDiags []parsers.Diagnostic
		stores     []model.StoreInfo
	)
	var g errgroup.Group
	g.Go(func() error {
		candidates, parseDiags = parsers.ExtractTransactions(rows, im.Columns)
		return nil
	})
	g.Go(func() error {
		stores = parsers.DiscoverStores(rows, im.Columns)
		return nil
	})
	g.Wait()

	report := &model.ImportReport{
		UploadID: uploadID,
		Encoding: string(enc),
		Stores:   []model.StoreChange{},
	}
	for _, d := range append(readDiags, parseDiags...) {
		switch d.Kind {
		case parsers.RowDropped, parsers.RowUnreadable:
			report.DroppedRowCount++
		case parsers.FieldDefaulted:
			report.DefaultedFieldCount++
		}
		log.Warn().Int("line", d.Line).Str("kind", string(d.Kind)).Str("field", d.Field).Str("value", d.Value).Msg(d.Reason)
	}

	// 判定は店舗による絞り込みの前に、ファイル全体の伝票で行う
	mnp.Classify(candidates)

	if im.restricts(actor) {
		stores = filterStores(stores, actor.StoreCode)
		var kept []model.SalesTransaction
		for _, tx := range candidates {
			if tx.StoreCode != actor.StoreCode {
				report.FilteredOutCount++
				continue
			}
			kept = append(kept, tx)
		}
		candidates = kept
	}

	for i := range candidates {
		candidates[i].UploadID = uploadID
	}

	changes, inserted, duplicates, err := im.persist(ctx, stores, candidates)
	if err != nil {
		log.Error().Err(err).Msg("upload rolled back")
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	report.Stores = append(report.Stores, changes...)
	report.InsertedCount = inserted
	report.DuplicateCount = duplicates

	log.Info().
		Int("inserted", report.InsertedCount).
		Int("duplicates", report.DuplicateCount).
		Int("filtered_out", report.FilteredOutCount).
		Int("dropped_rows", report.DroppedRowCount).
		Int("store_changes", len(report.Stores)).
		Msg("CSV upload committed")
	return report, nil
}

// persist は店舗反映・指紋の読み込み・明細登録を1つのトランザクションで行います。
func (im *Importer) persist(ctx context.Context, stores []model.StoreInfo, candidates []model.SalesTransaction) ([]model.StoreChange, int, int, error) {
	tx, err := im.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	changes, err := ReconcileStores(ctx, tx, stores)
	if err != nil {
		return nil, 0, 0, err
	}

	fps, err := database.GetAllFingerprintsInTx(ctx, tx)
	if err != nil {
		return nil, 0, 0, err
	}
	novel, duplicates := dedup.Filter(dedup.NewSet(fps), candidates)

	if err := database.InsertSalesTransactionsInTx(ctx, tx, novel); err != nil {
		return nil, 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, 0, fmt.Errorf("commit error: %w", err)
	}
	return changes, len(novel), duplicates, nil
}

// ReconcileStores は見つかった店舗を店舗マスタに反映します。
// 未登録の店舗は登録し、仮の店舗名のままの店舗は実際の店舗名が見つかった場合だけ更新します。
func ReconcileStores(ctx context.Context, tx *sqlx.Tx, stores []model.StoreInfo) ([]model.StoreChange, error) {
	var changes []model.StoreChange
	for _, info := range stores {
		existing, err := database.GetStoreByCodeInTx(ctx, tx, info.StoreCode)
		if err != nil {
			return nil, err
		}

		if existing == nil {
			if err := database.CreateStoreInTx(ctx, tx, info); err != nil {
				return nil, err
			}
			changes = append(changes, model.StoreChange{StoreCode: info.StoreCode, StoreName: info.StoreName, Change: model.StoreCreated})
			continue
		}

		if parsers.IsPlaceholderStoreName(existing.StoreName) && !parsers.IsPlaceholderStoreName(info.StoreName) {
			if err := database.UpdateStoreNameInTx(ctx, tx, info.StoreCode, info.StoreName); err != nil {
				return nil, err
			}
			changes = append(changes, model.StoreChange{StoreCode: info.StoreCode, StoreName: info.StoreName, Change: model.StoreUpdated})
		}
	}
	return changes, nil
}

func filterStores(stores []model.StoreInfo, code string) []model.StoreInfo {
	var kept []model.StoreInfo
	for _, s := range stores {
		if s.StoreCode == code {
			kept = append(kept, s)
		}
	}
	return kept
}
