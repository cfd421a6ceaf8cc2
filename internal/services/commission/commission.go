// Package commission holds the marketplace fee rules: how much of an artwork
// sale the platform keeps, depending on the seller's membership tier.
package commission

import "math"

const (
	TierStarter      = "starter"
	TierProfessional = "professional"
	TierFeatured     = "featured"
)

var rates = map[string]float64{
	TierStarter:      0.25,
	TierProfessional: 0.20,
	TierFeatured:     0.15,
}

// Split is the breakdown of one sale in minor currency units (cents).
type Split struct {
	PriceMinor   int64
	PlatformFee  int64
	ArtistAmount int64
	Rate         float64
}

// Rate returns the platform's share for a tier. Unknown or empty tiers are
// charged the starter rate.
func Rate(tier string) float64 {
	if r, ok := rates[tier]; ok {
		return r
	}
	return rates[TierStarter]
}

// ToMinor converts a price in major units to minor units, rounding half away
// from zero so 19.99 becomes 1999 and not 1998.
func ToMinor(price float64) int64 {
	return int64(math.Round(price * 100))
}

func ToMajor(minor int64) float64 {
	return float64(minor) / 100
}

func PlatformFee(priceMinor int64, tier string) int64 {
	return int64(math.Round(float64(priceMinor) * Rate(tier)))
}

// Compute splits a price in major units between the platform and the artist.
func Compute(price float64, tier string) Split {
	minor := ToMinor(price)
	fee := PlatformFee(minor, tier)
	return Split{
		PriceMinor:   minor,
		PlatformFee:  fee,
		ArtistAmount: minor - fee,
		Rate:         Rate(tier),
	}
}
