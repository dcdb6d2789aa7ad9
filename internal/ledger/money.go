package ledger

import "math"

// Amount is a money value in integer cents. Wallet-style BIGINT amounts keep
// escrow arithmetic exact; floats only appear at the rate-times-hours
// boundary and are rounded half-up immediately.
type Amount int64

// FromFloat converts a decimal currency value (e.g. 1250.50) to cents.
func FromFloat(v float64) Amount {
	return Amount(math.Round(v * 100))
}

// Float returns the decimal currency value of a.
func (a Amount) Float() float64 {
	return float64(a) / 100
}

// BillableAmount computes hours x hourly rate, rounded to the nearest cent.
// The rate is whatever was in effect when the entry was logged; callers must
// not re-derive it later.
func BillableAmount(hours float64, rate Amount) Amount {
	return Amount(math.Round(hours * float64(rate)))
}

// PlatformFee computes the platform's cut of a released amount at the given
// fee rate (percent).
func PlatformFee(released Amount, feeRate float64) Amount {
	return Amount(math.Round(float64(released) * feeRate / 100))
}

// ClampFeeRate bounds a platform fee rate to the allowed [15,40] percent band.
func ClampFeeRate(rate float64) float64 {
	if rate < 15 {
		return 15
	}
	if rate > 40 {
		return 40
	}
	return rate
}

// SubFloor subtracts b from a, never going below zero. Escrow pending amounts
// are clamped rather than allowed negative.
func SubFloor(a, b Amount) Amount {
	if b >= a {
		return 0
	}
	return a - b
}
