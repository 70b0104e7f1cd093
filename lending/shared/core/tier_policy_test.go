package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrcrpro/panaguas/lending/shared/core"
)

func Test_AllowedDuration(t *testing.T) {
	tests := []struct {
		tier     core.DonationTier
		expected time.Duration
	}{
		{tier: core.TierFree, expected: 20 * time.Minute},
		{tier: core.TierDonorLow, expected: 35 * time.Minute},
		{tier: core.TierDonorMedium, expected: 55 * time.Minute},
		{tier: core.TierDonorHigh, expected: 80 * time.Minute},
		{tier: core.DonationTier("Platinum"), expected: 20 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			assert.Equal(t, tt.expected, core.AllowedDuration(tt.tier))
		})
	}
}

//nolint:funlen
func Test_ComputeFine(t *testing.T) {
	start := time.Date(2025, 5, 12, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		elapsed  time.Duration
		tier     core.DonationTier
		expected core.Amount
	}{
		{name: "returned early", elapsed: 5 * time.Minute, tier: core.TierFree, expected: 0},
		{name: "returned exactly on time", elapsed: 20 * time.Minute, tier: core.TierFree, expected: 0},
		{name: "within grace period", elapsed: 21 * time.Minute, tier: core.TierFree, expected: 0},
		{name: "one second past grace", elapsed: 21*time.Minute + time.Second, tier: core.TierFree, expected: 2000},
		{name: "exactly one block past grace", elapsed: 36 * time.Minute, tier: core.TierFree, expected: 2000},
		{name: "free tier 20 minutes late", elapsed: 40 * time.Minute, tier: core.TierFree, expected: 4000},
		{name: "donor high on time", elapsed: 80 * time.Minute, tier: core.TierDonorHigh, expected: 0},
		{name: "donor medium 31 minutes late", elapsed: 86 * time.Minute, tier: core.TierDonorMedium, expected: 4000},
		{name: "unknown tier uses free window", elapsed: 40 * time.Minute, tier: core.DonationTier("x"), expected: 4000},
		{name: "no cap", elapsed: 24 * time.Hour, tier: core.TierFree, expected: 95 * 2000},
		{name: "clock skew", elapsed: -10 * time.Minute, tier: core.TierFree, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, core.ComputeFine(start, start.Add(tt.elapsed), tt.tier))
		})
	}
}

func Test_ParseDonationTier(t *testing.T) {
	assert.Equal(t, core.TierDonorLow, core.ParseDonationTier("DonorLow"))
	assert.Equal(t, core.TierDonorMedium, core.ParseDonationTier("Donador Medio"))
	assert.Equal(t, core.TierDonorHigh, core.ParseDonationTier(" donador alto "))
	assert.Equal(t, core.TierFree, core.ParseDonationTier("Gratuito"))
	assert.Equal(t, core.TierFree, core.ParseDonationTier("gold"))
}

func Test_DueAt_And_FineStartsAt(t *testing.T) {
	start := time.Date(2025, 5, 12, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, start.Add(35*time.Minute), core.DueAt(start, core.TierDonorLow))
	assert.Equal(t, start.Add(36*time.Minute), core.FineStartsAt(start, core.TierDonorLow))
}
