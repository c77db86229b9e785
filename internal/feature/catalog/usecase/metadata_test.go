package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMetadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		stem             string
		wantCurrency     string
		wantDenomination string
		wantYear         *int
		wantCountry      string
	}{
		{
			name:             "success: full convention with currency, denomination, year and serial",
			stem:             "USD_100_2020_AB12345678",
			wantCurrency:     "USD",
			wantDenomination: "100",
			wantYear:         intPtr(2020),
			wantCountry:      "USA",
		},
		{
			name:             "success: two tokens keep only the denomination",
			stem:             "RUB_5000",
			wantDenomination: "5000",
		},
		{
			name:             "success: three tokens keep only the denomination",
			stem:             "EUR_50_specimen",
			wantDenomination: "50",
		},
		{
			name: "success: single token extracts nothing structured",
			stem: "x",
		},
		{
			name:             "success: non-numeric year token leaves year unset",
			stem:             "USD_100_20xx_AB12345678",
			wantCurrency:     "USD",
			wantDenomination: "100",
			wantCountry:      "USA",
		},
		{
			name:             "success: signed year token leaves year unset",
			stem:             "USD_100_+2020_AB12345678",
			wantCurrency:     "USD",
			wantDenomination: "100",
			wantCountry:      "USA",
		},
		{
			name:             "success: unmapped currency leaves country unset",
			stem:             "AUD_50_1999_XY00001111",
			wantCurrency:     "AUD",
			wantDenomination: "50",
			wantYear:         intPtr(1999),
		},
		{
			name: "success: empty stem extracts nothing structured",
			stem: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			meta := ExtractMetadata(tt.stem)

			assert.Equal(t, tt.wantCurrency, meta.Currency)
			assert.Equal(t, tt.wantDenomination, meta.Denomination)
			assert.Equal(t, tt.wantCountry, meta.Country)
			// シリアル番号は常にstem全体
			assert.Equal(t, tt.stem, meta.SerialNumber)
			if tt.wantYear == nil {
				assert.Nil(t, meta.Year)
			} else {
				require.NotNil(t, meta.Year)
				assert.Equal(t, *tt.wantYear, *meta.Year)
			}
		})
	}
}

func TestDefaultRegions(t *testing.T) {
	t.Parallel()

	regions := DefaultRegions()

	require.Len(t, regions, 2)
	assert.Equal(t, "serial_number_1", regions[0].Name)
	assert.Equal(t, 0.1, regions[0].X)
	assert.Equal(t, "serial_number_2", regions[1].Name)
	assert.Equal(t, 0.5, regions[1].X)
	for _, r := range regions {
		assert.Equal(t, 0.1, r.Y)
		assert.Equal(t, 0.4, r.Width)
		assert.Equal(t, 0.1, r.Height)
	}
}

func intPtr(v int) *int {
	return &v
}
