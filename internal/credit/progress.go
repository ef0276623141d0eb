// Package credit computes credit-limit usage and the dashboard aggregates.
package credit

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidLimit is returned for a credit limit that is not strictly positive.
var ErrInvalidLimit = errors.New("credit limit must be greater than zero")

// Tier is the severity of credit usage.
type Tier int

// Tiers in increasing severity.
const (
	Nominal Tier = iota
	Caution
	Critical
)

// Tier boundaries, inclusive upper bounds in percent.
const (
	NominalMax = 50.0
	CautionMax = 85.0
)

func (t Tier) String() string {
	switch t {
	case Caution:
		return "caution"
	case Critical:
		return "critical"
	default:
		return "nominal"
	}
}

// TierFor maps a usage percentage to its tier.
func TierFor(percent float64) Tier {
	switch {
	case percent <= NominalMax:
		return Nominal
	case percent <= CautionMax:
		return Caution
	default:
		return Critical
	}
}

// Progress is the credit usage of one client.
// Percent is unbounded; BarPercent is clamped to [0, 100] for drawing.
type Progress struct {
	Current    float64
	Max        float64
	Percent    float64
	BarPercent float64
	Tier       Tier
	OverLimit  bool
}

// Compute derives usage from the balance and the limit. A non-positive limit yields 0%.
func Compute(current, maxAmount float64) Progress {
	var percent float64
	if maxAmount > 0 {
		percent = current / maxAmount * 100
	}

	return Progress{
		Current:    current,
		Max:        maxAmount,
		Percent:    percent,
		BarPercent: math.Min(math.Max(percent, 0), 100),
		Tier:       TierFor(percent),
		OverLimit:  maxAmount > 0 && current > maxAmount,
	}
}

// Available is the remaining credit. It is negative when over the limit.
func (p Progress) Available() float64 {
	return p.Max - p.Current
}

// Ratio is BarPercent as a fraction, the form progress bars expect.
func (p Progress) Ratio() float64 {
	return p.BarPercent / 100
}

// String renders "45.0% of 200 (nominal)".
func (p Progress) String() string {
	return fmt.Sprintf("%.1f%% of %.2f (%s)", p.Percent, p.Max, p.Tier)
}

// ValidateLimit checks a new credit limit entered by an admin.
func ValidateLimit(amount float64) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidLimit, amount)
	}
	return nil
}
