package usecase

import (
	"strconv"
	"strings"

	"banknote_backend/internal/feature/catalog/domain/entity"
)

// currencyToCountry は通貨コードから発行国・地域への対応表です。
var currencyToCountry = map[string]string{
	"USD": "USA",
	"EUR": "EUROPE",
	"RUB": "RUSSIA",
	"GBP": "UK",
	"JPY": "JAPAN",
	"CNY": "CHINA",
}

// ExtractMetadata はファイル名のstem（拡張子を除いた部分）から紙幣メタデータを推測します。
// 想定する命名は "USD_100_2020_AB12345678" のような
// 通貨_額面_年_シリアル のアンダースコア区切りで、
//   - 4トークン以上: 通貨・額面・年（数字の場合のみ）を取り込む
//   - 2〜3トークン: 額面のみを取り込む
//   - 1トークン以下: 属性は取り込まない
//
// どの形式でもSerialNumberにはstem全体が入ります。解析は失敗せず、
// 判別できない項目は空のまま返します。
func ExtractMetadata(stem string) entity.BanknoteMetadata {
	meta := entity.BanknoteMetadata{SerialNumber: stem}

	parts := strings.Split(stem, "_")
	switch {
	case len(parts) >= 4:
		meta.Currency = parts[0]
		meta.Denomination = parts[1]
		// 符号付きはそのまま年として扱わない
		if year, err := strconv.Atoi(parts[2]); err == nil && isDigits(parts[2]) {
			meta.Year = &year
		}
	case len(parts) >= 2:
		meta.Denomination = parts[1]
	}

	if country, ok := currencyToCountry[meta.Currency]; ok {
		meta.Country = country
	}
	return meta
}

// isDigits はsが数字のみで構成される非空文字列かどうかを返します。
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DefaultRegions は新規画像に割り当てる既定のスキャンリージョンを返します。
// 横向きスキャンの上端に2つのシリアル番号が並ぶ、一般的な紙幣のレイアウトを想定しています。
func DefaultRegions() []entity.ScanRegion {
	return []entity.ScanRegion{
		{Name: "serial_number_1", X: 0.1, Y: 0.1, Width: 0.4, Height: 0.1},
		{Name: "serial_number_2", X: 0.5, Y: 0.1, Width: 0.4, Height: 0.1},
	}
}
