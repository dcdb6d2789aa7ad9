package review

import "time"

// Review statuses. A resolved dispute returns the review to verified; there
// is deliberately no separate resolved state.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusVerified  = "verified"
	StatusPublished = "published"
	StatusDisputed  = "disputed"
)

// Ratings are the five scored dimensions, 1-5 each. Zero means the dimension
// was not rated and is excluded from impact scoring.
type Ratings struct {
	Overall         float64 `json:"overall"`
	Quality         float64 `json:"quality"`
	TechnicalSkills float64 `json:"technical_skills"`
	Communication   float64 `json:"communication"`
	Timeline        float64 `json:"timeline"`
}

// Dispute is the review's dispute sub-record.
type Dispute struct {
	IsDisputed   bool       `json:"is_disputed"`
	Reason       string     `json:"reason,omitempty"`
	DisputedBy   string     `json:"disputed_by,omitempty"`
	DisputedAt   *time.Time `json:"disputed_at,omitempty"`
	Resolution   string     `json:"resolution,omitempty"`
	ResolvedBy   string     `json:"resolved_by,omitempty"`
	ResolvedDate *time.Time `json:"resolved_date,omitempty"`
}

// QualityCheck records an admin's quality assessment at verification.
type QualityCheck struct {
	Score     float64   `json:"score"`
	CheckedBy string    `json:"checked_by"`
	CheckedAt time.Time `json:"checked_at"`
	Notes     string    `json:"notes,omitempty"`
}

// Review is a rated evaluation of one assignment/project pair.
type Review struct {
	ID           string        `json:"id"`
	AssignmentID string        `json:"assignment_id"`
	ProjectID    string        `json:"project_id"`
	ReviewerID   string        `json:"reviewer_id"`
	ConsultantID string        `json:"consultant_id"`
	Ratings      Ratings       `json:"ratings"`
	Feedback     string        `json:"feedback,omitempty"`
	Status       string        `json:"status"`
	IsVerified   bool          `json:"is_verified"`
	VerifiedBy   string        `json:"verified_by,omitempty"`
	VerifiedAt   *time.Time    `json:"verified_at,omitempty"`
	Dispute      Dispute       `json:"dispute"`
	QualityCheck *QualityCheck `json:"quality_check,omitempty"`
	ImpactScore  int           `json:"impact_score"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
