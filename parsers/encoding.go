package parsers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Encoding はアップロードされたファイルの文字コード名です。
type Encoding string

const (
	EncodingUTF8      Encoding = "UTF-8"
	EncodingShiftJIS  Encoding = "Shift_JIS"
	EncodingCP932     Encoding = "CP932"
	EncodingEUCJP     Encoding = "EUC-JP"
	EncodingISO2022JP Encoding = "ISO-2022-JP"
	EncodingLatin1    Encoding = "ISO-8859-1"
)

// ErrEncoding はどの文字コードでもデコードできなかった場合のエラーです。
var ErrEncoding = errors.New("サポートされているエンコーディングでファイルをデコードできません")

// fallbackEncodings は検出に失敗した場合に順に試す文字コードです。
var fallbackEncodings = []Encoding{
	EncodingUTF8,
	EncodingShiftJIS,
	EncodingCP932,
	EncodingEUCJP,
	EncodingLatin1,
}

var replacementChar = []byte("\uFFFD")

// DecodeBytes は文字コードを自動判定してUTF-8文字列に変換します。
// 判定結果で失敗した場合はフォールバック一覧の先頭から試します。
func DecodeBytes(b []byte) (string, Encoding, error) {
	if enc, ok := DetectEncoding(b); ok {
		if s, err := decodeAs(b, enc); err == nil {
			return trimBOM(s), enc, nil
		}
	}

	for _, enc := range fallbackEncodings {
		s, err := decodeAs(b, enc)
		if err != nil {
			continue
		}
		return trimBOM(s), enc, nil
	}
	return "", "", ErrEncoding
}

// DetectEncoding は統計的判定の結果を既知の文字コードに正規化します。
// 既知でない場合は false を返します。
func DetectEncoding(b []byte) (Encoding, bool) {
	if len(b) == 0 {
		return "", false
	}
	res, err := chardet.NewTextDetector().DetectBest(b)
	if err != nil || res == nil {
		return "", false
	}
	return NormalizeEncoding(res.Charset)
}

// NormalizeEncoding は文字コード名の表記揺れを吸収します。
func NormalizeEncoding(name string) (Encoding, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	switch key {
	case "utf_8", "utf8":
		return EncodingUTF8, true
	case "shift_jis", "shiftjis", "sjis", "s_jis":
		return EncodingShiftJIS, true
	case "cp932", "windows_31j", "ms932":
		return EncodingCP932, true
	case "euc_jp", "eucjp":
		return EncodingEUCJP, true
	case "iso_2022_jp":
		return EncodingISO2022JP, true
	}
	return "", false
}

func decoderFor(enc Encoding) encoding.Encoding {
	switch enc {
	case EncodingShiftJIS, EncodingCP932:
		// x/text の ShiftJIS は Windows-31J (CP932) の拡張を含む
		return japanese.ShiftJIS
	case EncodingEUCJP:
		return japanese.EUCJP
	case EncodingISO2022JP:
		return japanese.ISO2022JP
	case EncodingLatin1:
		return charmap.ISO8859_1
	}
	return nil
}

// decodeAs は厳密にデコードします。x/text のデコーダーは不正なバイトを U+FFFD に
// 置き換えるため、入力に無かった U+FFFD が現れた場合を失敗として扱います。
func decodeAs(b []byte, enc Encoding) (string, error) {
	if enc == EncodingUTF8 {
		if !utf8.Valid(b) {
			return "", fmt.Errorf("invalid %s byte sequence", enc)
		}
		return string(b), nil
	}

	dec := decoderFor(enc)
	if dec == nil {
		return "", fmt.Errorf("unknown encoding %q", enc)
	}
	out, _, err := transform.Bytes(dec.NewDecoder(), b)
	if err != nil {
		return "", fmt.Errorf("decode as %s: %w", enc, err)
	}
	if enc != EncodingLatin1 && bytes.Count(out, replacementChar) > bytes.Count(b, replacementChar) {
		return "", fmt.Errorf("invalid %s byte sequence", enc)
	}
	return string(out), nil
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
