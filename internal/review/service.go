package review

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
	"github.com/sudo-init-do/consulthub/internal/ledger"
	"github.com/sudo-init-do/consulthub/internal/store"
)

// Service owns review verification, the dispute cycle and impact scoring.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// CreateInput is the payload for writing a review.
type CreateInput struct {
	AssignmentID string  `json:"assignment_id"`
	ProjectID    string  `json:"project_id"`
	ReviewerID   string  `json:"reviewer_id"`
	ConsultantID string  `json:"consultant_id"`
	Ratings      Ratings `json:"ratings"`
	Feedback     string  `json:"feedback"`
	Submit       bool    `json:"submit"`
}

var reviewNamespace = uuid.MustParse("f3b1c7e2-8d4a-4c9b-9f2e-5a6d7c8b9e0f")

// ReviewID derives the review document id from its assignment. One review per
// assignment becomes structural: two racing creates for the same assignment
// land on the same document instead of inserting a second one.
func ReviewID(assignmentID string) string {
	return uuid.NewSHA1(reviewNamespace, []byte(assignmentID)).String()
}

func validRatings(r Ratings) bool {
	for _, v := range []float64{r.Overall, r.Quality, r.TechnicalSkills, r.Communication, r.Timeline} {
		if v != 0 && (v < 1 || v > 5) {
			return false
		}
	}
	return true
}

// Create stores a review against a completed assignment. One review per
// assignment; the overall rating is required.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Review, error) {
	if in.AssignmentID == "" || in.ReviewerID == "" {
		return nil, apperrors.ValidationFailed("assignment and reviewer required")
	}
	if in.Ratings.Overall < 1 || in.Ratings.Overall > 5 {
		return nil, apperrors.ValidationFailed("overall rating must be between 1 and 5")
	}
	if !validRatings(in.Ratings) {
		return nil, apperrors.ValidationFailed("ratings must be between 1 and 5")
	}

	n, err := s.store.Count(ctx, store.KindAssignment, store.Filter{"id": in.AssignmentID})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperrors.NotFound("assignment not found")
	}
	n, err = s.store.Count(ctx, store.KindAssignment, store.Filter{"id": in.AssignmentID, "status": "completed"})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperrors.InvalidState("only completed assignments can be reviewed")
	}
	n, err = s.store.Count(ctx, store.KindReview, store.Filter{"assignment_id": in.AssignmentID})
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, apperrors.InvalidState("review already exists for this assignment")
	}

	status := StatusDraft
	if in.Submit {
		status = StatusSubmitted
	}
	now := ledger.Now()
	r := &Review{
		ID:           ReviewID(in.AssignmentID),
		AssignmentID: in.AssignmentID,
		ProjectID:    in.ProjectID,
		ReviewerID:   in.ReviewerID,
		ConsultantID: in.ConsultantID,
		Ratings:      in.Ratings,
		Feedback:     in.Feedback,
		Status:       status,
		ImpactScore:  CalculateImpactScore(in.Ratings),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Put(ctx, store.KindReview, r.ID, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Get loads a review by id.
func (s *Service) Get(ctx context.Context, id string) (*Review, error) {
	var r Review
	if err := s.store.Get(ctx, store.KindReview, id, &r); err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NotFound("review not found")
		}
		return nil, err
	}
	return &r, nil
}

// ListByConsultant returns all reviews written about a consultant.
func (s *Service) ListByConsultant(ctx context.Context, consultantID string) ([]Review, error) {
	var out []Review
	err := s.store.Query(ctx, store.KindReview, store.Filter{"consultant_id": consultantID}, &out)
	return out, err
}

// Submit finalizes a draft. Ratings are immutable from here on.
func (s *Service) Submit(ctx context.Context, id string) (*Review, error) {
	return s.update(ctx, id, func(r *Review) error {
		if r.Status != StatusDraft {
			return apperrors.IllegalTransition("only draft reviews can be submitted")
		}
		r.Status = StatusSubmitted
		return nil
	})
}

// Verify marks a submitted review as checked by an admin, optionally
// recording a quality score.
func (s *Service) Verify(ctx context.Context, id, verifiedBy string, qualityScore *float64, notes string) (*Review, error) {
	return s.update(ctx, id, func(r *Review) error {
		if r.Status != StatusSubmitted {
			return apperrors.IllegalTransition("only submitted reviews can be verified")
		}
		now := ledger.Now()
		r.Status = StatusVerified
		r.IsVerified = true
		r.VerifiedBy = verifiedBy
		r.VerifiedAt = &now
		if qualityScore != nil {
			r.QualityCheck = &QualityCheck{
				Score:     *qualityScore,
				CheckedBy: verifiedBy,
				CheckedAt: now,
				Notes:     notes,
			}
		}
		return nil
	})
}

// Publish makes a verified review publicly visible.
func (s *Service) Publish(ctx context.Context, id string) (*Review, error) {
	return s.update(ctx, id, func(r *Review) error {
		if r.Status != StatusVerified {
			return apperrors.IllegalTransition("only verified reviews can be published")
		}
		r.Status = StatusPublished
		return nil
	})
}

// DisputeReview opens a dispute. Draft reviews cannot be disputed; there is
// nothing visible to contest yet.
func (s *Service) DisputeReview(ctx context.Context, id, reason, disputedBy string) (*Review, error) {
	if reason == "" {
		return nil, apperrors.ValidationFailed("dispute reason required")
	}
	return s.update(ctx, id, func(r *Review) error {
		switch r.Status {
		case StatusSubmitted, StatusVerified, StatusPublished:
		default:
			return apperrors.IllegalTransition("review is " + r.Status + " and cannot be disputed")
		}
		now := ledger.Now()
		r.Status = StatusDisputed
		r.Dispute.IsDisputed = true
		r.Dispute.Reason = reason
		r.Dispute.DisputedBy = disputedBy
		r.Dispute.DisputedAt = &now
		return nil
	})
}

// ResolveDispute settles a disputed review. The review lands in verified, not
// a dedicated resolved state, and the dispute record keeps the history. A
// review disputed before it was ever verified is verified here by the
// resolving admin, so is_verified always comes with verifier and timestamp.
func (s *Service) ResolveDispute(ctx context.Context, id, resolution, resolvedBy string) (*Review, error) {
	if resolution == "" {
		return nil, apperrors.ValidationFailed("resolution required")
	}
	return s.update(ctx, id, func(r *Review) error {
		if r.Status != StatusDisputed {
			return apperrors.InvalidState("review is not disputed")
		}
		now := ledger.Now()
		r.Status = StatusVerified
		if !r.IsVerified {
			r.IsVerified = true
			r.VerifiedBy = resolvedBy
			r.VerifiedAt = &now
		}
		r.Dispute.Resolution = resolution
		r.Dispute.ResolvedBy = resolvedBy
		r.Dispute.ResolvedDate = &now
		return nil
	})
}

// update runs fn against the stored review as one atomic read-modify-write,
// refreshing the derived impact score alongside.
func (s *Service) update(ctx context.Context, id string, fn func(*Review) error) (*Review, error) {
	var out *Review
	err := s.store.Update(ctx, store.KindReview, id, func(raw []byte) (any, error) {
		var r Review
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		if err := fn(&r); err != nil {
			return nil, err
		}
		r.ImpactScore = CalculateImpactScore(r.Ratings)
		r.UpdatedAt = ledger.Now()
		out = &r
		return &r, nil
	})
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NotFound("review not found")
		}
		return nil, err
	}
	return out, nil
}
