package review

import "math"

// impact score weights per rating dimension
const (
	weightOverall         = 0.30
	weightQuality         = 0.20
	weightTechnicalSkills = 0.20
	weightCommunication   = 0.15
	weightTimeline        = 0.15

	// weighted 1-5 sum scaled to a 0-100 score
	impactScale = 20
)

// CalculateImpactScore reduces the rating dimensions to a 0-100 score.
// Unrated dimensions (zero) are excluded from the weighted sum rather than
// counted as zero-penalty.
func CalculateImpactScore(r Ratings) int {
	var sum float64
	if r.Overall > 0 {
		sum += weightOverall * r.Overall
	}
	if r.Quality > 0 {
		sum += weightQuality * r.Quality
	}
	if r.TechnicalSkills > 0 {
		sum += weightTechnicalSkills * r.TechnicalSkills
	}
	if r.Communication > 0 {
		sum += weightCommunication * r.Communication
	}
	if r.Timeline > 0 {
		sum += weightTimeline * r.Timeline
	}
	return int(math.Round(sum * impactScale))
}
