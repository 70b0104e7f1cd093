package core

import (
	"strings"
	"time"
)

// DonationTier grants longer loan windows to donors.
type DonationTier string

const (
	TierFree        DonationTier = "Free"
	TierDonorLow    DonationTier = "DonorLow"
	TierDonorMedium DonationTier = "DonorMedium"
	TierDonorHigh   DonationTier = "DonorHigh"
)

const (
	baseLoanDuration = 20 * time.Minute

	// GracePeriod is subtracted from the overdue time before fining.
	GracePeriod = 1 * time.Minute

	// FineBlock is the overdue interval charged with one UnitFine, started blocks count fully.
	FineBlock = 15 * time.Minute

	UnitFine Amount = 2000
)

var tierExtensions = map[DonationTier]time.Duration{
	TierFree:        0,
	TierDonorLow:    15 * time.Minute,
	TierDonorMedium: 35 * time.Minute,
	TierDonorHigh:   60 * time.Minute,
}

// tierLabels also accepts the Spanish labels of the account page.
var tierLabels = map[string]DonationTier{
	"free":          TierFree,
	"gratuito":      TierFree,
	"donorlow":      TierDonorLow,
	"donador bajo":  TierDonorLow,
	"donormedium":   TierDonorMedium,
	"donador medio": TierDonorMedium,
	"donorhigh":     TierDonorHigh,
	"donador alto":  TierDonorHigh,
}

// ParseDonationTier maps a canonical name or a display label to a tier. Unknown values are Free.
func ParseDonationTier(value string) DonationTier {
	if tier, ok := tierLabels[strings.ToLower(strings.TrimSpace(value))]; ok {
		return tier
	}

	return TierFree
}

// IsKnown reports whether t is one of the defined tiers.
func (t DonationTier) IsKnown() bool {
	_, ok := tierExtensions[t]

	return ok
}

// AllowedDuration returns the loan window of tier. Unknown tiers are treated as Free.
func AllowedDuration(tier DonationTier) time.Duration {
	return baseLoanDuration + tierExtensions[tier]
}

// DueAt returns when a loan started at loanStart under tier must be returned.
func DueAt(loanStart time.Time, tier DonationTier) time.Time {
	return loanStart.Add(AllowedDuration(tier))
}

// FineStartsAt returns the first instant at which a return is fined.
func FineStartsAt(loanStart time.Time, tier DonationTier) time.Time {
	return DueAt(loanStart, tier).Add(GracePeriod)
}

// ComputeFine charges UnitFine per started FineBlock of overdue time beyond the GracePeriod.
// There is no upper cap. A returnTime before loanStart yields 0.
func ComputeFine(loanStart, returnTime time.Time, tier DonationTier) Amount {
	elapsed := returnTime.Sub(loanStart)
	if elapsed <= 0 {
		return 0
	}

	overdue := elapsed - AllowedDuration(tier)
	if overdue <= GracePeriod {
		return 0
	}

	fined := overdue - GracePeriod
	blocks := int64(fined / FineBlock)
	if fined%FineBlock != 0 {
		blocks++
	}

	return blocks * UnitFine
}
