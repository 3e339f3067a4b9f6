package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

func TestProfitTierBoundaries(t *testing.T) {
	cases := []struct {
		in   float64
		want Tier
	}{
		{2001, TierHigh},
		{2000, TierMedium},
		{1001, TierMedium},
		{1000, TierLow},
		{0, TierLow},
		{-50, TierLow},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ProfitTier(c.in), "profit %v", c.in)
	}
}

func TestSpreadTierBoundaries(t *testing.T) {
	cases := []struct {
		in   float64
		want Tier
	}{
		{6.01, TierHigh},
		{6.0, TierMedium},
		{4.01, TierMedium},
		{4.0, TierLow},
		{1.5, TierLow},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SpreadTier(c.in), "spread %v", c.in)
	}
}

func TestPairSpreadTier(t *testing.T) {
	assert.Equal(t, TierHigh, PairSpreadTier(3.2))
	assert.Equal(t, TierLow, PairSpreadTier(3.0))
}

func TestDepthTier(t *testing.T) {
	assert.Equal(t, TierHigh, DepthTier(domain.DepthVeryDeep))
	assert.Equal(t, TierMedium, DepthTier(domain.DepthDeep))
	assert.Equal(t, TierLow, DepthTier(domain.DepthMedium))
	assert.Equal(t, TierThin, DepthTier(domain.DepthShallow))
	assert.Equal(t, TierLow, DepthTier("Bottomless"))
}

func TestLinkCritical(t *testing.T) {
	assert.True(t, LinkCritical("Critical"))
	assert.False(t, LinkCritical("High"))
}

func TestClassifyAndCount(t *testing.T) {
	got := Classify(sample())
	assert.Len(t, got, 5)
	assert.Equal(t, TierHigh, got[0].ProfitTier)
	assert.Equal(t, TierHigh, got[0].SpreadTier)
	assert.Equal(t, TierLow, got[3].ProfitTier)
	assert.Equal(t, TierMedium, got[3].SpreadTier)

	counts := CountByTier(sample())
	assert.Equal(t, map[Tier]int{TierHigh: 1, TierMedium: 3, TierLow: 1}, counts)
}
