package ledger

import "math"

// Percentage returns part/total as a whole percentage, 0 when total is 0.
func Percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// Average folds values into a mean, skipping nils. Optional numeric fields
// that were never populated must not drag the mean toward zero.
func Average(values []*float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Round2 rounds to two decimal places, for rating averages in responses.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
