// Package dedup は売上明細の内容から指紋を作り、取込済みの明細を除外します。
//
// 売上データには主キーが無いため、(売上日時, 伝票番号, 担当者ID, 商品コード, 数量, 販売明細額)
// が一致する明細を同一とみなします。別々の取引が偶然すべて一致した場合は重複として
// 数えられ、取り込まれません。
package dedup

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"salesperf/model"
)

// timestampFormat は指紋に使う日時の書式です。秒単位で、タイムゾーンを含めません。
const timestampFormat = "2006-01-02 15:04:05"

// Set は取込済みの指紋の集合です。
type Set map[string]struct{}

// NewSet は指紋の一覧から Set を作ります。
func NewSet(fingerprints []string) Set {
	s := make(Set, len(fingerprints))
	for _, fp := range fingerprints {
		s[fp] = struct{}{}
	}
	return s
}

// Has は指紋が登録済みかを返します。
func (s Set) Has(fp string) bool {
	_, ok := s[fp]
	return ok
}

// Fingerprint は明細の指紋を返します。
func Fingerprint(tx model.SalesTransaction) string {
	key := strings.Join([]string{
		tx.TransactionDate.Format(timestampFormat),
		tx.TicketNumber,
		tx.StaffID,
		tx.ProductCode,
		strconv.Itoa(tx.Quantity),
		tx.TotalPrice.String(),
	}, "_")
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Filter は existing に無い明細だけを返し、それぞれに Fingerprint を設定します。
// 採用した指紋は existing に追加するため、同じファイル内の重複も先勝ちで除かれます。
func Filter(existing Set, candidates []model.SalesTransaction) (novel []model.SalesTransaction, duplicates int) {
	for _, tx := range candidates {
		fp := Fingerprint(tx)
		if existing.Has(fp) {
			duplicates++
			continue
		}
		existing[fp] = struct{}{}
		tx.Fingerprint = fp
		novel = append(novel, tx)
	}
	return novel, duplicates
}
