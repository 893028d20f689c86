package geo

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sirene/pkg/domain-errors"
)

func TestToWGS84(t *testing.T) {
	t.Run("known Paris pair lands in Paris", func(t *testing.T) {
		p, err := ToWGS84(652345.12, 6862275.45, false)
		require.NoError(t, err)
		require.NotNil(t, p)

		assert.GreaterOrEqual(t, p.Longitude, 2.0)
		assert.LessOrEqual(t, p.Longitude, 3.0)
		assert.GreaterOrEqual(t, p.Latitude, 48.0)
		assert.LessOrEqual(t, p.Latitude, 49.0)
		assert.InDelta(t, 2.3508, p.Longitude, 0.01)
		assert.InDelta(t, 48.8566, p.Latitude, 0.01)
	})

	t.Run("projection origin maps to the central meridian", func(t *testing.T) {
		p, err := ToWGS84(700000, 6600000, true)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.InDelta(t, 3.0, p.Longitude, 1e-9)
		assert.InDelta(t, 46.5, p.Latitude, 0.001)
	})

	t.Run("repeated calls are deterministic", func(t *testing.T) {
		first, err := ToWGS84(652345.12, 6862275.45, false)
		require.NoError(t, err)
		for range 10 {
			again, err := ToWGS84(652345.12, 6862275.45, false)
			require.NoError(t, err)
			assert.Equal(t, *first, *again)
		}
	})

	t.Run("strict range check rejects out of range input", func(t *testing.T) {
		_, err := ToWGS84(999999999, 999999999, true)
		require.Error(t, err)
		assert.True(t, errors.Is(err, dErrors.ErrCoordinateConversion))
	})

	t.Run("lax range check does not fail on range", func(t *testing.T) {
		p, err := ToWGS84(999999999, 999999999, false)
		require.NoError(t, err)
		if p != nil {
			assert.True(t, p.Valid())
		}
	})

	t.Run("concurrent calls agree", func(t *testing.T) {
		want, err := ToWGS84(843000, 6519000, false)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := ToWGS84(843000, 6519000, false)
				assert.NoError(t, err)
				assert.Equal(t, *want, *got)
			}()
		}
		wg.Wait()
	})
}

func TestParseToWGS84(t *testing.T) {
	tests := []struct {
		name     string
		x, y     string
		wantNil  bool
		wantCode dErrors.Code
	}{
		{name: "empty input is absent", x: "", y: "", wantNil: true},
		{name: "blank component is absent", x: "652345.12", y: "   ", wantNil: true},
		{name: "numeric strings convert", x: "652345.12", y: "6862275.45"},
		{name: "non numeric x fails", x: "[ND]", y: "6862275.45", wantCode: dErrors.CodeCoordinateConversion},
		{name: "non numeric y fails", x: "652345.12", y: "abc", wantCode: dErrors.CodeCoordinateConversion},
		{name: "NaN is absent", x: "NaN", y: "6862275.45", wantNil: true},
		{name: "infinity is absent", x: "652345.12", y: "Inf", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseToWGS84(tt.x, tt.y, false)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, tt.wantCode))
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)
			assert.True(t, p.Valid())
		})
	}
}

func TestNonFiniteInputFailsOnlyWhenStrict(t *testing.T) {
	for _, x := range []string{"NaN", "Inf", "-Inf"} {
		t.Run(x, func(t *testing.T) {
			p, err := ParseToWGS84(x, "6862275.45", false)
			require.NoError(t, err)
			assert.Nil(t, p)

			_, err = ParseToWGS84(x, "6862275.45", true)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeCoordinateConversion))
		})
	}
}

func TestInLambert93Range(t *testing.T) {
	assert.True(t, InLambert93Range(0, 6_000_000))
	assert.True(t, InLambert93Range(1_200_000, 7_200_000))
	assert.False(t, InLambert93Range(-1, 6_500_000))
	assert.False(t, InLambert93Range(600_000, 5_999_999))
}
