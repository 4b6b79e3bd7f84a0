package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrueStanding(t *testing.T) {
	tests := []struct {
		name           string
		above, pop     int64
		wantRank       int64
		wantPop        int64
		wantPercentile int
	}{
		{"leader of ten", 0, 10, 1, 10, 90},
		{"second of ten", 1, 10, 2, 10, 80},
		{"last of ten", 9, 10, 10, 10, 1},
		{"only user", 0, 1, 1, 1, 1},
		{"leader of thousand", 0, 1000, 1, 1000, 99},
		{"stale population", 12, 10, 13, 13, 1},
		{"negative above", -1, 5, 1, 5, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := TrueStanding(7, 100, tt.above, tt.pop)
			assert.Equal(t, tt.wantRank, s.Rank)
			assert.Equal(t, tt.wantPop, s.Population)
			assert.Equal(t, tt.wantPercentile, s.Percentile)
			assert.False(t, s.Scaled)
			assert.LessOrEqual(t, s.Rank, s.Population)
		})
	}
}

func TestPercentileBounds(t *testing.T) {
	for pop := int64(1); pop <= 300; pop++ {
		for rank := int64(1); rank <= pop; rank++ {
			p := Percentile(rank, pop)
			require.GreaterOrEqual(t, p, MinPercentile)
			require.LessOrEqual(t, p, MaxPercentile)
		}
	}
	assert.Equal(t, MinPercentile, Percentile(1, 0))
}

func TestInflatedTransform(t *testing.T) {
	truth := TrueStanding(7, 90, 1, 10)

	shown, err := InflatedTransform(7, 25000).Apply(truth)
	require.NoError(t, err)
	assert.Equal(t, int64(14), shown.Rank)
	assert.Equal(t, int64(25000), shown.Population)
	assert.Equal(t, 99, shown.Percentile)
	assert.True(t, shown.Scaled)

	// Исходная позиция не изменилась
	assert.Equal(t, int64(2), truth.Rank)
	assert.False(t, truth.Scaled)
}

func TestInflatedTransformPopulationNotBelowRank(t *testing.T) {
	shown, err := InflatedTransform(100, 50).Apply(TrueStanding(1, 0, 9, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), shown.Rank)
	assert.Equal(t, int64(1000), shown.Population)
	assert.Equal(t, MinPercentile, shown.Percentile)
}

func TestInflatedTransformRejectsBadParams(t *testing.T) {
	truth := TrueStanding(1, 0, 0, 5)

	_, err := InflatedTransform(0, 100).Apply(truth)
	assert.ErrorIs(t, err, errInvalidScaling)

	_, err = InflatedTransform(3, -1).Apply(truth)
	assert.ErrorIs(t, err, errInvalidScaling)

	huge := truth
	huge.Rank = 1 << 62
	_, err = InflatedTransform(4, 100).Apply(huge)
	assert.ErrorIs(t, err, errInvalidScaling)
}

func TestIdentityTransform(t *testing.T) {
	truth := TrueStanding(1, 10, 3, 40)
	shown, err := IdentityTransform.Apply(truth)
	require.NoError(t, err)
	assert.Equal(t, truth, shown)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "топ 1%", Label(99))
	assert.Equal(t, "топ 10%", Label(90))
	assert.Equal(t, "верхняя половина", Label(50))
	assert.Equal(t, "есть куда расти", Label(1))
}
