package company

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeed(t *testing.T) {
	seed := DefaultSeed()
	require.Len(t, seed, 16)
	assert.Equal(t, "Visa (V)", seed[0].Label)
	assert.Equal(t, "NVidia (NVDA)", seed[15].Label)
	assert.InDelta(t, 69.2, seed[15].Margin, 1e-9)
	mc, ok := seed[11].Cap()
	require.True(t, ok)
	assert.InDelta(t, 3966.0, mc, 1e-9)

	// fresh copy every call
	seed[0].Label = "changed"
	assert.Equal(t, "Visa (V)", DefaultSeed()[0].Label)
}

func TestDraftBuild(t *testing.T) {
	cases := []struct {
		name  string
		draft Draft
		err   error
	}{
		{"valid", Draft{Label: "TEST", Margin: Float(50), Growth: Float(10), MarketCap: Float(100)}, nil},
		{"negative margin ok", Draft{Label: "X", Margin: Float(-12.5), Growth: Float(-3)}, nil},
		{"blank label", Draft{Label: "   ", Margin: Float(1), Growth: Float(1)}, ErrEmptyLabel},
		{"missing margin", Draft{Label: "X", Growth: Float(1)}, ErrMissingMargin},
		{"missing growth", Draft{Label: "X", Margin: Float(1)}, ErrMissingGrowth},
		{"nan margin", Draft{Label: "X", Margin: Float(math.NaN()), Growth: Float(1)}, ErrMissingMargin},
		{"negative cap", Draft{Label: "X", Margin: Float(1), Growth: Float(1), MarketCap: Float(-1)}, ErrInvalidMarketCap},
		{"inf cap", Draft{Label: "X", Margin: Float(1), Growth: Float(1), MarketCap: Float(math.Inf(1))}, ErrInvalidMarketCap},
		{"huge margin", Draft{Label: "X", Margin: Float(1e16), Growth: Float(1)}, ErrInvalidMargin},
		{"margin at bound", Draft{Label: "X", Margin: Float(-MaxAbsPercent), Growth: Float(MaxAbsPercent)}, nil},
		{"huge negative growth", Draft{Label: "X", Margin: Float(1), Growth: Float(-1e6)}, ErrInvalidGrowth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := tc.draft.Build()
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, *tc.draft.Margin, rec.Margin)
			assert.Equal(t, *tc.draft.Growth, rec.Growth)
		})
	}
}

func TestDraftBuildKeepsAbsentCap(t *testing.T) {
	rec, err := Draft{Label: " ACME ", Margin: Float(5), Growth: Float(6)}.Build()
	require.NoError(t, err)
	assert.Equal(t, "ACME", rec.Label)
	_, ok := rec.Cap()
	assert.False(t, ok)
}

func TestCloneIsDeep(t *testing.T) {
	in := []Record{{Label: "A", Margin: 1, Growth: 2, MarketCap: Float(3)}}
	out := Clone(in)
	*out[0].MarketCap = 99
	assert.Equal(t, 3.0, *in[0].MarketCap)
}

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(p, []byte("companies:\n  - {label: ONE, margin: 1, growth: 2}\n"), 0o644))

	recs, err := LoadSeed(p)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].MarketCap)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("companies:\n  - {label: ONE, margin: 1, growth: 2, ceo: x}\n"), 0o644))
	_, err = LoadSeed(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("companies: []\n"), 0o644))
	_, err = LoadSeed(empty)
	assert.Error(t, err)

	recs, err = LoadSeed("")
	require.NoError(t, err)
	assert.Len(t, recs, 16)
}
