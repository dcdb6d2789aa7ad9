package assignment

import (
	"context"
	"testing"

	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
	"github.com/sudo-init-do/consulthub/internal/project"
	"github.com/sudo-init-do/consulthub/internal/store"
)

func newTestAssignment(t *testing.T) (*Service, string) {
	t.Helper()
	svc := NewService(store.NewMemory())
	n := project.NewAssignment{
		ID:           "asg-1",
		ProjectID:    "proj-1",
		ClientID:     "client-1",
		ConsultantID: "cons-1",
		PaymentType:  "hourly",
		Rate:         8500,
		TotalBudget:  100000,
		FeeRate:      20,
	}
	if err := svc.Create(context.Background(), n); err != nil {
		t.Fatalf("create: %v", err)
	}
	return svc, n.ID
}

func activate(t *testing.T, svc *Service, id string) {
	t.Helper()
	if _, _, err := svc.Transition(context.Background(), id, StatusActive, "client-1", ""); err != nil {
		t.Fatalf("activate: %v", err)
	}
}

func TestCreateDefaults(t *testing.T) {
	svc, id := newTestAssignment(t)
	a, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.Status != StatusPendingStart {
		t.Errorf("expected pending_start, got %s", a.Status)
	}
	if a.Escrow.TotalAmount != 100000 || a.Escrow.ReleasedAmount != 0 || a.Escrow.PendingAmount != 0 {
		t.Errorf("unexpected escrow: %+v", a.Escrow)
	}
	if a.StartDate.IsZero() {
		t.Error("start date should default to now")
	}
}

func TestTransitionGraph(t *testing.T) {
	svc, id := newTestAssignment(t)
	ctx := context.Background()

	if _, _, err := svc.Transition(ctx, id, StatusCompleted, "client-1", ""); !apperrors.Is(err, "illegal_transition") {
		t.Fatalf("expected illegal_transition pending_start->completed, got %v", err)
	}

	activate(t, svc, id)
	if _, from, err := svc.Transition(ctx, id, StatusPaused, "client-1", "vacation"); err != nil {
		t.Fatalf("pause: %v", err)
	} else if from != StatusActive {
		t.Errorf("expected from-status active, got %s", from)
	}
	a, from, err := svc.Transition(ctx, id, StatusActive, "client-1", "")
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if from != StatusPaused {
		t.Errorf("expected from-status paused, got %s", from)
	}
	if len(a.AdminNotes) != 1 || a.AdminNotes[0].Note != "vacation" {
		t.Errorf("reason should land in admin notes: %+v", a.AdminNotes)
	}
}

func TestCompletionFreezesHours(t *testing.T) {
	svc, id := newTestAssignment(t)
	ctx := context.Background()
	activate(t, svc, id)

	if _, err := svc.LogTime(ctx, id, TimeEntryInput{HoursWorked: 3, Description: "schema design"}); err != nil {
		t.Fatalf("log: %v", err)
	}

	a, _, err := svc.Transition(ctx, id, StatusCompleted, "client-1", "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if a.CompletionDetails.CompletedDate == nil || a.EndDate == nil {
		t.Fatal("completion dates not set")
	}
	if a.CompletionDetails.TotalHoursWorked != 3 {
		t.Errorf("expected 3 frozen hours, got %v", a.CompletionDetails.TotalHoursWorked)
	}

	// terminal: nothing moves, nothing logs
	if _, _, err := svc.Transition(ctx, id, StatusActive, "client-1", ""); !apperrors.Is(err, "illegal_transition") {
		t.Fatalf("expected illegal_transition from completed, got %v", err)
	}
	if _, err := svc.LogTime(ctx, id, TimeEntryInput{HoursWorked: 1, Description: "x"}); !apperrors.Is(err, "invalid_state") {
		t.Fatalf("expected invalid_state logging on completed, got %v", err)
	}
}

func TestMilestonePaymentReleasedExactlyOnce(t *testing.T) {
	svc, id := newTestAssignment(t)
	ctx := context.Background()
	activate(t, svc, id)

	a, err := svc.AddMilestone(ctx, id, MilestoneInput{Title: "Phase 1", Amount: 40000})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	mid := a.Milestones[0].ID

	if _, err := svc.ApproveMilestone(ctx, id, mid, "client-1", ""); !apperrors.Is(err, "invalid_state") {
		t.Fatalf("expected invalid_state approving a pending milestone, got %v", err)
	}

	if _, err := svc.StartMilestone(ctx, id, mid); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.CompleteMilestone(ctx, id, mid); err != nil {
		t.Fatalf("complete: %v", err)
	}
	a, err = svc.ApproveMilestone(ctx, id, mid, "client-1", "solid work")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if a.Escrow.PendingAmount != 40000 {
		t.Errorf("expected 40000 pending, got %d", a.Escrow.PendingAmount)
	}
	if a.Metrics.MilestoneCompletionRate == nil || *a.Metrics.MilestoneCompletionRate != 100 {
		t.Errorf("expected 100%% completion rate, got %v", a.Metrics.MilestoneCompletionRate)
	}

	a, err = svc.ReleaseMilestonePayment(ctx, id, mid)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	m := a.Milestones[0]
	if m.Status != MilestonePaid || !m.PaymentReleased || m.PaidAt == nil {
		t.Errorf("milestone not paid out: %+v", m)
	}
	if a.Escrow.ReleasedAmount != 40000 || a.Escrow.PendingAmount != 0 {
		t.Errorf("escrow off after release: %+v", a.Escrow)
	}

	// a second release sees paid and must not touch the ledger
	if _, err := svc.ReleaseMilestonePayment(ctx, id, mid); !apperrors.Is(err, "invalid_state") {
		t.Fatalf("expected invalid_state on double release, got %v", err)
	}
	a, _ = svc.Get(ctx, id)
	if a.Escrow.ReleasedAmount != 40000 || a.Escrow.PendingAmount != 0 {
		t.Errorf("double release mutated escrow: %+v", a.Escrow)
	}
}

func TestMilestoneCompletionRate(t *testing.T) {
	svc, id := newTestAssignment(t)
	ctx := context.Background()
	activate(t, svc, id)

	var a *Assignment
	var err error
	for _, title := range []string{"A", "B", "C", "D"} {
		if a, err = svc.AddMilestone(ctx, id, MilestoneInput{Title: title, Amount: 25000}); err != nil {
			t.Fatalf("add %s: %v", title, err)
		}
	}
	// deliver and approve three of the four
	for _, m := range a.Milestones[:3] {
		if _, err := svc.StartMilestone(ctx, id, m.ID); err != nil {
			t.Fatalf("start: %v", err)
		}
		if _, err := svc.CompleteMilestone(ctx, id, m.ID); err != nil {
			t.Fatalf("complete: %v", err)
		}
		if a, err = svc.ApproveMilestone(ctx, id, m.ID, "client-1", ""); err != nil {
			t.Fatalf("approve: %v", err)
		}
	}

	if a.Metrics.MilestoneCompletionRate == nil || *a.Metrics.MilestoneCompletionRate != 75 {
		t.Errorf("expected 75, got %v", a.Metrics.MilestoneCompletionRate)
	}
	// paid milestones still count as delivered
	if a, err = svc.ReleaseMilestonePayment(ctx, id, a.Milestones[0].ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if *a.Metrics.MilestoneCompletionRate != 75 {
		t.Errorf("rate must not change on payout, got %v", *a.Metrics.MilestoneCompletionRate)
	}
}

func TestMilestonesBoundedByBudget(t *testing.T) {
	svc, id := newTestAssignment(t)
	ctx := context.Background()

	if _, err := svc.AddMilestone(ctx, id, MilestoneInput{Title: "A", Amount: 70000}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.AddMilestone(ctx, id, MilestoneInput{Title: "B", Amount: 40000}); !apperrors.Is(err, "invalid_state") {
		t.Fatalf("expected invalid_state over budget, got %v", err)
	}
	if _, err := svc.AddMilestone(ctx, id, MilestoneInput{Title: "B", Amount: 30000}); err != nil {
		t.Fatalf("add within budget: %v", err)
	}
}

func TestRefundEscrow(t *testing.T) {
	svc, id := newTestAssignment(t)
	ctx := context.Background()

	a, err := svc.RefundEscrow(ctx, id, 30000, "reduced scope", "admin-1")
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if a.Escrow.TotalAmount != 70000 {
		t.Errorf("expected 70000 after refund, got %d", a.Escrow.TotalAmount)
	}
	if _, err := svc.RefundEscrow(ctx, id, 80000, "too much", "admin-1"); !apperrors.Is(err, "invalid_state") {
		t.Fatalf("expected invalid_state refunding more than undisbursed, got %v", err)
	}
}

func TestTimesheetTotalsAreAFold(t *testing.T) {
	svc, id := newTestAssignment(t)
	ctx := context.Background()
	activate(t, svc, id)

	a, err := svc.LogTime(ctx, id, TimeEntryInput{HoursWorked: 2, Description: "api work"})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if _, err := svc.LogTime(ctx, id, TimeEntryInput{HoursWorked: 1.5, Description: "review", Submit: true}); err != nil {
		t.Fatalf("log submitted: %v", err)
	}
	a, _ = svc.Get(ctx, id)
	if a.TimeTracking.TotalHoursLogged != 3.5 {
		t.Errorf("expected 3.5 logged, got %v", a.TimeTracking.TotalHoursLogged)
	}
	if a.TimeTracking.TotalHoursBilled != 0 {
		t.Errorf("nothing approved yet, billed should be 0, got %v", a.TimeTracking.TotalHoursBilled)
	}
	// billable amount locked to the contract rate at log time
	if got := a.TimeTracking.Entries[0].BillableAmount; got != 17000 {
		t.Errorf("expected billable 17000, got %d", got)
	}

	draftID := a.TimeTracking.Entries[0].ID
	submittedID := a.TimeTracking.Entries[1].ID

	// approving a draft is silently skipped; only the submitted entry flips
	a, err = svc.ApproveTimeEntries(ctx, id, []string{draftID, submittedID, "missing"}, "client-1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if a.TimeTracking.Entries[0].Status != EntryDraft {
		t.Errorf("draft entry must not be approved directly, got %s", a.TimeTracking.Entries[0].Status)
	}
	if a.TimeTracking.Entries[1].Status != EntryApproved || a.TimeTracking.Entries[1].ApprovedBy != "client-1" {
		t.Errorf("submitted entry not approved: %+v", a.TimeTracking.Entries[1])
	}
	if a.TimeTracking.TotalHoursBilled != 1.5 {
		t.Errorf("expected 1.5 billed, got %v", a.TimeTracking.TotalHoursBilled)
	}

	// submit then dispute the draft entry; disputed hours stay unbilled
	if _, err := svc.SubmitTimeEntries(ctx, id, []string{draftID}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	a, err = svc.DisputeTimeEntries(ctx, id, []string{draftID})
	if err != nil {
		t.Fatalf("dispute: %v", err)
	}
	if a.TimeTracking.Entries[0].Status != EntryDisputed {
		t.Errorf("expected disputed, got %s", a.TimeTracking.Entries[0].Status)
	}
	if a.TimeTracking.TotalHoursBilled != 1.5 || a.TimeTracking.TotalHoursLogged != 3.5 {
		t.Errorf("totals off after dispute: %+v", a.TimeTracking)
	}
}

func TestLogTimeBounds(t *testing.T) {
	svc, id := newTestAssignment(t)
	ctx := context.Background()
	activate(t, svc, id)

	if _, err := svc.LogTime(ctx, id, TimeEntryInput{HoursWorked: 0.1, Description: "x"}); !apperrors.Is(err, "validation_failed") {
		t.Fatalf("expected validation_failed below minimum, got %v", err)
	}
	if _, err := svc.LogTime(ctx, id, TimeEntryInput{HoursWorked: 25, Description: "x"}); !apperrors.Is(err, "validation_failed") {
		t.Fatalf("expected validation_failed above maximum, got %v", err)
	}
	if _, err := svc.LogTime(ctx, id, TimeEntryInput{HoursWorked: 4, Description: ""}); !apperrors.Is(err, "validation_failed") {
		t.Fatalf("expected validation_failed for empty description, got %v", err)
	}
}

func TestIssueWorkflow(t *testing.T) {
	svc, id := newTestAssignment(t)
	ctx := context.Background()

	if _, err := svc.CreateIssue(ctx, id, IssueInput{Description: "x", ReportedBy: "u", ReporterRole: "admin"}); !apperrors.Is(err, "validation_failed") {
		t.Fatalf("expected validation_failed for bad reporter role, got %v", err)
	}

	a, err := svc.CreateIssue(ctx, id, IssueInput{
		Type: "quality", Severity: "high",
		Description: "deliverable missing tests",
		ReportedBy:  "client-1", ReporterRole: "client",
	})
	if err != nil {
		t.Fatalf("create issue: %v", err)
	}
	iid := a.Issues[0].ID

	if _, err := svc.StartIssue(ctx, id, iid); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.EscalateIssue(ctx, id, iid); err != nil {
		t.Fatalf("escalate: %v", err)
	}

	a, err = svc.ResolveIssue(ctx, id, iid, "consultant added tests", "admin-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	iss := a.Issues[0]
	if iss.Status != IssueResolved || iss.ResolvedBy != "admin-1" || iss.ResolvedAt == nil {
		t.Errorf("issue not resolved cleanly: %+v", iss)
	}

	// resolution is terminal
	if _, err := svc.ResolveIssue(ctx, id, iid, "again", "admin-1"); !apperrors.Is(err, "invalid_state") {
		t.Fatalf("expected invalid_state on double resolve, got %v", err)
	}
	if _, err := svc.EscalateIssue(ctx, id, iid); !apperrors.Is(err, "invalid_state") {
		t.Fatalf("expected invalid_state escalating resolved issue, got %v", err)
	}

	// notes are still allowed afterwards
	a, err = svc.AddIssueNote(ctx, id, iid, "client confirmed fix", "admin-1")
	if err != nil {
		t.Fatalf("note: %v", err)
	}
	if len(a.Issues[0].AdminNotes) != 1 {
		t.Errorf("expected one note, got %d", len(a.Issues[0].AdminNotes))
	}
}
