package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/sudo-init-do/consulthub/internal/assignment"
	"github.com/sudo-init-do/consulthub/internal/review"
	"github.com/sudo-init-do/consulthub/internal/store"
)

func seed(t *testing.T, st store.Store, kind store.Kind, id string, doc any) {
	t.Helper()
	if err := st.Put(context.Background(), kind, id, doc); err != nil {
		t.Fatalf("seed %s/%s: %v", kind, id, err)
	}
}

func fptr(v float64) *float64 { return &v }

func TestConsultantReport(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	seed(t, st, store.KindAssignment, "asg-1", assignment.Assignment{
		ID: "asg-1", ConsultantID: "cons-1", Status: assignment.StatusCompleted,
		ContractTerms: assignment.ContractTerms{FeeRate: 20},
		Escrow:        assignment.Escrow{TotalAmount: 100000, ReleasedAmount: 100000},
		Metrics:       assignment.PerformanceMetrics{MilestoneCompletionRate: fptr(75)},
		CreatedAt:     base,
	})
	seed(t, st, store.KindAssignment, "asg-2", assignment.Assignment{
		ID: "asg-2", ConsultantID: "cons-1", Status: assignment.StatusActive,
		ContractTerms: assignment.ContractTerms{FeeRate: 15},
		Escrow:        assignment.Escrow{TotalAmount: 50000, ReleasedAmount: 20000},
		CreatedAt:     base.AddDate(0, 1, 0),
	})
	// someone else's assignment never leaks into the report
	seed(t, st, store.KindAssignment, "asg-3", assignment.Assignment{
		ID: "asg-3", ConsultantID: "cons-2", Status: assignment.StatusDisputed,
		Escrow:    assignment.Escrow{ReleasedAmount: 999999},
		CreatedAt: base,
	})
	seed(t, st, store.KindReview, "rev-1", review.Review{
		ID: "rev-1", AssignmentID: "asg-1", ConsultantID: "cons-1",
		Ratings: review.Ratings{Overall: 4}, ImpactScore: 86,
		Status: review.StatusPublished, CreatedAt: base,
	})

	report, err := svc.Consultant(ctx, "cons-1", Window{})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.TotalAssignments != 2 || report.ActiveAssignments != 1 || report.CompletedAssignments != 1 {
		t.Errorf("assignment counts off: %+v", report)
	}
	if report.TotalReleased != 120000 {
		t.Errorf("expected 120000 released, got %d", report.TotalReleased)
	}
	// 20% of 100000 plus 15% of 20000
	if report.TotalPlatformEarnings != 23000 {
		t.Errorf("expected 23000 platform earnings, got %d", report.TotalPlatformEarnings)
	}
	// the unmeasured assignment is excluded, not counted as zero
	if report.AvgMilestoneCompletionRate != 75 {
		t.Errorf("expected 75, got %v", report.AvgMilestoneCompletionRate)
	}
	if report.AvgClientSatisfaction != 4 || report.AvgImpactScore != 86 || report.ReviewCount != 1 {
		t.Errorf("review aggregates off: %+v", report)
	}
}

func TestConsultantReportWindow(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	seed(t, st, store.KindAssignment, "asg-1", assignment.Assignment{
		ID: "asg-1", ConsultantID: "cons-1", Status: assignment.StatusCompleted,
		CreatedAt: base,
	})
	seed(t, st, store.KindAssignment, "asg-2", assignment.Assignment{
		ID: "asg-2", ConsultantID: "cons-1", Status: assignment.StatusCompleted,
		CreatedAt: base.AddDate(0, 2, 0),
	})

	report, err := svc.Consultant(context.Background(), "cons-1", Window{
		From: base,
		To:   base.AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.TotalAssignments != 1 {
		t.Errorf("expected 1 assignment in window, got %d", report.TotalAssignments)
	}
}

func TestOpenIssuesFlattened(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st)

	seed(t, st, store.KindAssignment, "asg-1", assignment.Assignment{
		ID: "asg-1", ClientID: "client-1", ConsultantID: "cons-1",
		Status: assignment.StatusActive,
		Issues: []assignment.Issue{
			{ID: "iss-1", Status: assignment.IssueOpen, Description: "scope creep"},
			{ID: "iss-2", Status: assignment.IssueResolved, Description: "late standup"},
			{ID: "iss-3", Status: assignment.IssueEscalated, Description: "payment question"},
		},
	})

	items, err := svc.OpenIssues(context.Background())
	if err != nil {
		t.Fatalf("open issues: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 unresolved issues, got %d", len(items))
	}
	for _, ref := range items {
		if ref.Issue.Status == assignment.IssueResolved {
			t.Errorf("resolved issue leaked into triage queue: %+v", ref.Issue)
		}
		if ref.AssignmentID != "asg-1" || ref.ClientID != "client-1" {
			t.Errorf("issue ref missing assignment context: %+v", ref)
		}
	}
}

func TestPlatformStats(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st)

	seed(t, st, store.KindProject, "proj-1", map[string]any{"id": "proj-1", "status": "posted"})
	seed(t, st, store.KindAssignment, "asg-1", assignment.Assignment{ID: "asg-1", Status: assignment.StatusActive})
	seed(t, st, store.KindAssignment, "asg-2", assignment.Assignment{ID: "asg-2", Status: assignment.StatusDisputed})
	seed(t, st, store.KindReview, "rev-1", review.Review{ID: "rev-1", Status: review.StatusDisputed})

	stats, err := svc.Platform(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Projects != 1 || stats.Assignments != 2 || stats.ActiveAssignments != 1 {
		t.Errorf("counts off: %+v", stats)
	}
	if stats.DisputedAssignments != 1 || stats.Reviews != 1 || stats.DisputedReviews != 1 {
		t.Errorf("disputed counts off: %+v", stats)
	}
}
