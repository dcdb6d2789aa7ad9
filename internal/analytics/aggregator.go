package analytics

import (
	"context"
	"time"

	"github.com/sudo-init-do/consulthub/internal/assignment"
	"github.com/sudo-init-do/consulthub/internal/ledger"
	"github.com/sudo-init-do/consulthub/internal/review"
	"github.com/sudo-init-do/consulthub/internal/store"
)

// Window bounds a report to assignments created inside [From, To). Zero
// values leave the corresponding side unbounded.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !t.Before(w.To) {
		return false
	}
	return true
}

// Service computes read-only summaries over assignments and reviews. It never
// mutates entities and tolerates eventual consistency of derived aggregates.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// ConsultantReport summarizes one consultant's engagement history.
type ConsultantReport struct {
	ConsultantID               string        `json:"consultant_id"`
	TotalAssignments           int           `json:"total_assignments"`
	ActiveAssignments          int           `json:"active_assignments"`
	CompletedAssignments       int           `json:"completed_assignments"`
	DisputedAssignments        int           `json:"disputed_assignments"`
	TotalReleased              ledger.Amount `json:"total_released"`
	TotalPlatformEarnings      ledger.Amount `json:"total_platform_earnings"`
	AvgMilestoneCompletionRate float64       `json:"avg_milestone_completion_rate"`
	AvgClientSatisfaction      float64       `json:"avg_client_satisfaction"`
	AvgImpactScore             float64       `json:"avg_impact_score"`
	ReviewCount                int           `json:"review_count"`
}

// Consultant folds a consultant's assignments and reviews into a report.
// Optional metrics that were never populated are excluded from the averages
// rather than coerced to zero.
func (s *Service) Consultant(ctx context.Context, consultantID string, w Window) (*ConsultantReport, error) {
	var assignments []assignment.Assignment
	if err := s.store.Query(ctx, store.KindAssignment, store.Filter{"consultant_id": consultantID}, &assignments); err != nil {
		return nil, err
	}
	var reviews []review.Review
	if err := s.store.Query(ctx, store.KindReview, store.Filter{"consultant_id": consultantID}, &reviews); err != nil {
		return nil, err
	}

	report := &ConsultantReport{ConsultantID: consultantID}
	var completionRates []*float64
	for i := range assignments {
		a := &assignments[i]
		if !w.contains(a.CreatedAt) {
			continue
		}
		report.TotalAssignments++
		switch a.Status {
		case assignment.StatusActive, assignment.StatusPaused, assignment.StatusPendingStart:
			report.ActiveAssignments++
		case assignment.StatusCompleted:
			report.CompletedAssignments++
		case assignment.StatusDisputed:
			report.DisputedAssignments++
		}
		report.TotalReleased += a.Escrow.ReleasedAmount
		report.TotalPlatformEarnings += ledger.PlatformFee(a.Escrow.ReleasedAmount, a.ContractTerms.FeeRate)
		completionRates = append(completionRates, a.Metrics.MilestoneCompletionRate)
	}
	report.AvgMilestoneCompletionRate = ledger.Round2(ledger.Average(completionRates))

	var satisfaction []*float64
	var impact []*float64
	for i := range reviews {
		r := &reviews[i]
		if !w.contains(r.CreatedAt) {
			continue
		}
		report.ReviewCount++
		if r.Ratings.Overall > 0 {
			v := r.Ratings.Overall
			satisfaction = append(satisfaction, &v)
		}
		score := float64(r.ImpactScore)
		impact = append(impact, &score)
	}
	report.AvgClientSatisfaction = ledger.Round2(ledger.Average(satisfaction))
	report.AvgImpactScore = ledger.Round2(ledger.Average(impact))

	return report, nil
}

// OpenIssueRef is one unresolved issue flattened out of its assignment for
// the admin triage queue.
type OpenIssueRef struct {
	AssignmentID string           `json:"assignment_id"`
	ClientID     string           `json:"client_id"`
	ConsultantID string           `json:"consultant_id"`
	Issue        assignment.Issue `json:"issue"`
}

// OpenIssues collects every unresolved issue across all assignments.
func (s *Service) OpenIssues(ctx context.Context) ([]OpenIssueRef, error) {
	var assignments []assignment.Assignment
	if err := s.store.Query(ctx, store.KindAssignment, store.Filter{}, &assignments); err != nil {
		return nil, err
	}
	out := []OpenIssueRef{}
	for i := range assignments {
		a := &assignments[i]
		for _, iss := range a.Issues {
			if iss.Status == assignment.IssueResolved {
				continue
			}
			out = append(out, OpenIssueRef{
				AssignmentID: a.ID,
				ClientID:     a.ClientID,
				ConsultantID: a.ConsultantID,
				Issue:        iss,
			})
		}
	}
	return out, nil
}

// DisputedReviews lists reviews currently under dispute.
func (s *Service) DisputedReviews(ctx context.Context) ([]review.Review, error) {
	var out []review.Review
	err := s.store.Query(ctx, store.KindReview, store.Filter{"status": review.StatusDisputed}, &out)
	return out, err
}

// PlatformStats are the admin dashboard counters.
type PlatformStats struct {
	Projects             int `json:"projects"`
	Assignments          int `json:"assignments"`
	ActiveAssignments    int `json:"active_assignments"`
	CompletedAssignments int `json:"completed_assignments"`
	DisputedAssignments  int `json:"disputed_assignments"`
	Reviews              int `json:"reviews"`
	DisputedReviews      int `json:"disputed_reviews"`
}

// Platform counts documents per kind and per hot status.
func (s *Service) Platform(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{}
	counts := []struct {
		kind   store.Kind
		filter store.Filter
		dst    *int
	}{
		{store.KindProject, store.Filter{}, &stats.Projects},
		{store.KindAssignment, store.Filter{}, &stats.Assignments},
		{store.KindAssignment, store.Filter{"status": assignment.StatusActive}, &stats.ActiveAssignments},
		{store.KindAssignment, store.Filter{"status": assignment.StatusCompleted}, &stats.CompletedAssignments},
		{store.KindAssignment, store.Filter{"status": assignment.StatusDisputed}, &stats.DisputedAssignments},
		{store.KindReview, store.Filter{}, &stats.Reviews},
		{store.KindReview, store.Filter{"status": review.StatusDisputed}, &stats.DisputedReviews},
	}
	for _, c := range counts {
		n, err := s.store.Count(ctx, c.kind, c.filter)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return stats, nil
}
