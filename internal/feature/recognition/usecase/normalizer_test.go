package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banknote_backend/internal/feature/recognition/domain/entity"
	"banknote_backend/internal/shared/alphabet"
)

func TestNormalizer_Normalize(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(alphabet.New("ABC"))

	t.Run("success: symbols are ordered by ascending x-coordinate", func(t *testing.T) {
		t.Parallel()
		// クラス 2='C' が最も右、0='A' が最も左
		detections := []entity.Detection{
			{X: 0.8, ClassIndex: 2, Confidence: 0.9},
			{X: 0.1, ClassIndex: 0, Confidence: 0.8},
			{X: 0.5, ClassIndex: 1, Confidence: 0.7},
		}

		serial, conf, symbols, fellBack := n.Normalize(detections, "stem")

		assert.False(t, fellBack)
		assert.Equal(t, "ABC", serial)
		assert.InDelta(t, (0.8+0.7+0.9)/3, conf, 1e-9)
		require.Len(t, symbols, 3)
		assert.Equal(t, "A", symbols[0].Symbol)
		assert.Equal(t, "B", symbols[1].Symbol)
		assert.Equal(t, "C", symbols[2].Symbol)
	})

	t.Run("success: ties keep the input order", func(t *testing.T) {
		t.Parallel()
		detections := []entity.Detection{
			{X: 0.3, ClassIndex: 1, Confidence: 0.9},
			{X: 0.3, ClassIndex: 0, Confidence: 0.9},
			{X: 0.3, ClassIndex: 2, Confidence: 0.9},
		}

		serial, _, _, _ := n.Normalize(detections, "stem")
		assert.Equal(t, "BAC", serial)
	})

	t.Run("success: input slice is not mutated", func(t *testing.T) {
		t.Parallel()
		detections := []entity.Detection{
			{X: 0.9, ClassIndex: 2, Confidence: 0.9},
			{X: 0.1, ClassIndex: 0, Confidence: 0.9},
		}

		_, _, _, _ = n.Normalize(detections, "stem")
		assert.Equal(t, 0.9, detections[0].X)
	})

	t.Run("success: out-of-range class indices are dropped silently", func(t *testing.T) {
		t.Parallel()
		detections := []entity.Detection{
			{X: 0.1, ClassIndex: 0, Confidence: 0.8},
			{X: 0.2, ClassIndex: 99, Confidence: 0.9},
			{X: 0.3, ClassIndex: -1, Confidence: 0.9},
			{X: 0.4, ClassIndex: 1, Confidence: 0.6},
		}

		serial, conf, symbols, fellBack := n.Normalize(detections, "stem")

		assert.False(t, fellBack)
		assert.Equal(t, "AB", serial)
		assert.InDelta(t, 0.7, conf, 1e-9)
		assert.Len(t, symbols, 2)
	})

	t.Run("success: all indices dropped yields the synthesized fallback", func(t *testing.T) {
		t.Parallel()
		detections := []entity.Detection{
			{X: 0.1, ClassIndex: 50, Confidence: 0.9},
			{X: 0.2, ClassIndex: 60, Confidence: 0.9},
		}

		serial, conf, symbols, fellBack := n.Normalize(detections, "RUB_5000")

		assert.True(t, fellBack)
		assert.Equal(t, "RUB_5000", serial)
		assert.Equal(t, FallbackConfidence, conf)
		assert.Len(t, symbols, 8)
	})

	t.Run("success: all dropped with an empty stem yields zero confidence", func(t *testing.T) {
		t.Parallel()
		detections := []entity.Detection{
			{X: 0.1, ClassIndex: 50, Confidence: 0.9},
		}

		serial, conf, symbols, fellBack := n.Normalize(detections, "")

		assert.True(t, fellBack)
		assert.Empty(t, serial)
		assert.Zero(t, conf)
		assert.Empty(t, symbols)
	})

	t.Run("success: empty input produces the synthesized fallback", func(t *testing.T) {
		t.Parallel()
		serial, conf, symbols, fellBack := n.Normalize(nil, "AB12")

		assert.True(t, fellBack)
		assert.Equal(t, "AB12", serial)
		assert.Equal(t, FallbackConfidence, conf)
		assert.Len(t, symbols, 4)
	})
}

func TestNormalizer_Fallback(t *testing.T) {
	t.Parallel()
	n := NewNormalizer(alphabet.Default())

	t.Run("success: one pseudo-symbol per character at fixed positions", func(t *testing.T) {
		t.Parallel()
		serial, conf, symbols := n.Fallback("АБ12")

		assert.Equal(t, "АБ12", serial)
		assert.Equal(t, 0.85, conf)
		require.Len(t, symbols, 4)

		for i, s := range symbols {
			assert.Equal(t, 0.9, s.Confidence)
			assert.InDelta(t, 0.1+float64(i)*0.1, s.X, 1e-9)
			assert.Equal(t, 0.5, s.Y)
			assert.Equal(t, 0.08, s.Width)
			assert.Equal(t, 0.12, s.Height)
		}
		// キリル文字が1runeずつ分割されていること
		assert.Equal(t, "А", symbols[0].Symbol)
		assert.Equal(t, "Б", symbols[1].Symbol)
	})

	t.Run("success: empty stem keeps the fixed aggregate confidence", func(t *testing.T) {
		t.Parallel()
		serial, conf, symbols := n.Fallback("")

		assert.Empty(t, serial)
		assert.Equal(t, 0.85, conf)
		assert.Empty(t, symbols)
	})
}
