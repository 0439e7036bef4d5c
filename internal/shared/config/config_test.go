package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRefundTiers(t *testing.T) {
	tiers := parseRefundTiers("5:75, 10:25 ,0:90")

	require.Len(t, tiers, 3)
	// Sorted furthest cutoff first regardless of input order.
	assert.Equal(t, RefundTier{DaysBefore: 10, DeductionPercent: 25}, tiers[0])
	assert.Equal(t, RefundTier{DaysBefore: 5, DeductionPercent: 75}, tiers[1])
	assert.Equal(t, RefundTier{DaysBefore: 0, DeductionPercent: 90}, tiers[2])
}

func TestParseRefundTiersSkipsMalformed(t *testing.T) {
	tiers := parseRefundTiers("10:25,garbage,5:150,-1:10,7:50")

	require.Len(t, tiers, 2)
	assert.Equal(t, 10, tiers[0].DaysBefore)
	assert.Equal(t, 7, tiers[1].DaysBefore)
}

func TestParseRefundTiersFallsBackToDefault(t *testing.T) {
	for _, raw := range []string{"", "nonsense", ":::"} {
		tiers := parseRefundTiers(raw)
		require.Len(t, tiers, 3, "input %q", raw)
		assert.Equal(t, 10, tiers[0].DaysBefore)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{Holds: HoldConfig{TTL: 300 * time.Second, SweepInterval: 5 * time.Second}}
	assert.NoError(t, cfg.Validate())

	cfg.Holds.TTL = 0
	assert.Error(t, cfg.Validate())

	cfg.Holds.TTL = 300 * time.Second
	cfg.Holds.SweepInterval = 301 * time.Second
	assert.Error(t, cfg.Validate())
}
