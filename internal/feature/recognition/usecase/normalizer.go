// Package usecase はシリアル番号認識のビジネスロジックを実装します。
package usecase

import (
	"sort"
	"strings"

	"banknote_backend/internal/feature/recognition/domain/entity"
	"banknote_backend/internal/shared/alphabet"
)

const (
	// FallbackModelVersion は検出器なしで合成された結果に記録するモデル識別子です。
	FallbackModelVersion = "fallback"
	// FallbackConfidence はフォールバック結果の集計信頼度です。
	FallbackConfidence = 0.85
	// fallbackSymbolConfidence はフォールバック時の疑似シンボル1つあたりの信頼度です。
	fallbackSymbolConfidence = 0.9
)

// Normalizer は生の検出結果を読み順のシリアル番号へ正規化します。
// クラスindexの解釈はアルファベットの並び順に完全に依存するため、
// 検出モデルの学習時と同じアルファベットを渡す必要があります。
type Normalizer struct {
	alpha *alphabet.Alphabet
}

// NewNormalizer はNormalizerの新しいインスタンスを生成します。
func NewNormalizer(alpha *alphabet.Alphabet) *Normalizer {
	return &Normalizer{alpha: alpha}
}

// Normalize は検出結果をX座標昇順（同値は入力順を維持）に並べ、クラスindexを
// 文字へ解決してシリアル番号を合成します。アルファベット範囲外のindexは黙って
// 除外されます。検出が1件も無い、または全件が除外された場合はFallbackの合成結果
// になり、4番目の戻り値でそれを通知します（stemも空なら信頼度0の空結果）。
func (n *Normalizer) Normalize(detections []entity.Detection, fallbackSerial string) (string, float64, []entity.RecognizedSymbol, bool) {
	sorted := make([]entity.Detection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var serial strings.Builder
	var confSum float64
	symbols := make([]entity.RecognizedSymbol, 0, len(sorted))
	for _, d := range sorted {
		ch, ok := n.alpha.CharAt(d.ClassIndex)
		if !ok {
			// 学習時のクラス定義に無いindexは結果に含めない
			continue
		}
		serial.WriteString(ch)
		confSum += d.Confidence
		symbols = append(symbols, entity.RecognizedSymbol{
			Symbol:     ch,
			Confidence: d.Confidence,
			X:          d.X,
			Y:          d.Y,
			Width:      d.Width,
			Height:     d.Height,
		})
	}

	if len(symbols) == 0 {
		if fallbackSerial == "" {
			return "", 0, nil, true
		}
		fs, fc, fsyms := n.Fallback(fallbackSerial)
		return fs, fc, fsyms, true
	}
	return serial.String(), confSum / float64(len(symbols)), symbols, false
}

// Fallback は検出器が使えない場合の代替結果を合成します。ファイル名のstemを
// そのままシリアル番号として扱い、1文字ごとに等間隔の疑似シンボルを生成します。
// 精度より可用性を優先するための経路で、信頼度は固定値になります。
func (n *Normalizer) Fallback(stem string) (string, float64, []entity.RecognizedSymbol) {
	runes := []rune(stem)
	symbols := make([]entity.RecognizedSymbol, 0, len(runes))
	for i, r := range runes {
		symbols = append(symbols, entity.RecognizedSymbol{
			Symbol:     string(r),
			Confidence: fallbackSymbolConfidence,
			X:          0.1 + float64(i)*0.1,
			Y:          0.5,
			Width:      0.08,
			Height:     0.12,
		})
	}
	return stem, FallbackConfidence, symbols
}
