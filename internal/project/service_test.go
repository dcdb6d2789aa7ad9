package project

import (
	"context"
	"testing"

	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
	"github.com/sudo-init-do/consulthub/internal/ledger"
	"github.com/sudo-init-do/consulthub/internal/store"
)

type creatorSpy struct {
	created []NewAssignment
}

func (c *creatorSpy) Create(ctx context.Context, n NewAssignment) error {
	c.created = append(c.created, n)
	return nil
}

func newTestService() (*Service, *creatorSpy) {
	spy := &creatorSpy{}
	return NewService(store.NewMemory(), spy), spy
}

func postProject(t *testing.T, svc *Service, budgetType string, amount int64) *Project {
	t.Helper()
	ctx := context.Background()
	p, err := svc.Create(ctx, "client-1", CreateInput{
		Title:        "Data pipeline overhaul",
		BudgetType:   budgetType,
		BudgetAmount: ledger.Amount(amount),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p, err = svc.UpdateStatus(ctx, p.ID, StatusPosted, "client-1", ""); err != nil {
		t.Fatalf("post: %v", err)
	}
	return p
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "client-1", CreateInput{Title: "x", BudgetType: "retainer", BudgetAmount: 100})
	if !apperrors.Is(err, "validation_failed") {
		t.Fatalf("expected validation_failed for bad budget type, got %v", err)
	}
	_, err = svc.Create(ctx, "", CreateInput{Title: "x", BudgetType: "fixed", BudgetAmount: 100})
	if !apperrors.Is(err, "validation_failed") {
		t.Fatalf("expected validation_failed for empty client, got %v", err)
	}
}

func TestLifecycleForwardOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p := postProject(t, svc, "fixed", 100000)

	if _, err := svc.UpdateStatus(ctx, p.ID, StatusDraft, "client-1", ""); !apperrors.Is(err, "illegal_transition") {
		t.Fatalf("expected illegal_transition going backwards, got %v", err)
	}

	// dispute is legal from any non-terminal state, and a settled dispute may
	// complete the project
	if _, err := svc.UpdateStatus(ctx, p.ID, StatusDisputed, "admin-1", "client complaint"); err != nil {
		t.Fatalf("dispute: %v", err)
	}
	p2, err := svc.UpdateStatus(ctx, p.ID, StatusCompleted, "admin-1", "settled")
	if err != nil {
		t.Fatalf("complete after dispute: %v", err)
	}
	if len(p2.AdminNotes) != 2 {
		t.Errorf("expected 2 admin notes, got %d", len(p2.AdminNotes))
	}

	if _, err := svc.UpdateStatus(ctx, p.ID, StatusCancelled, "admin-1", ""); !apperrors.Is(err, "illegal_transition") {
		t.Fatalf("expected illegal_transition from terminal state, got %v", err)
	}
}

func TestSubmitProposal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p := postProject(t, svc, "fixed", 100000)

	p, err := svc.SubmitProposal(ctx, p.ID, ProposalInput{ConsultantID: "cons-1", Amount: 90000})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if p.Status != StatusProposalsReceived {
		t.Errorf("expected proposals_received, got %s", p.Status)
	}
	if p.ProposalsCount != 1 || len(p.Proposals) != 1 {
		t.Errorf("proposals count out of sync: count=%d len=%d", p.ProposalsCount, len(p.Proposals))
	}

	// one proposal per consultant
	if _, err := svc.SubmitProposal(ctx, p.ID, ProposalInput{ConsultantID: "cons-1", Amount: 80000}); !apperrors.Is(err, "validation_failed") {
		t.Fatalf("expected validation_failed on duplicate proposal, got %v", err)
	}

	// fixed projects need an amount
	if _, err := svc.SubmitProposal(ctx, p.ID, ProposalInput{ConsultantID: "cons-2", Rate: 9500}); !apperrors.Is(err, "validation_failed") {
		t.Fatalf("expected validation_failed for fixed proposal without amount, got %v", err)
	}
}

func TestAssignConsultantFanout(t *testing.T) {
	svc, spy := newTestService()
	ctx := context.Background()
	p := postProject(t, svc, "fixed", 100000)

	for _, cons := range []string{"cons-1", "cons-2", "cons-3"} {
		if _, err := svc.SubmitProposal(ctx, p.ID, ProposalInput{ConsultantID: cons, Amount: 90000}); err != nil {
			t.Fatalf("submit %s: %v", cons, err)
		}
	}
	if _, err := svc.ReviewProposal(ctx, p.ID, mustProposalID(t, svc, p.ID, "cons-2"), ProposalShortlisted, ""); err != nil {
		t.Fatalf("shortlist: %v", err)
	}

	p2, err := svc.AssignConsultant(ctx, p.ID, "cons-2", AssignInput{FeeRate: 10}, "client-1")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if p2.Status != StatusConsultantAssigned {
		t.Errorf("expected consultant_assigned, got %s", p2.Status)
	}
	if p2.AssignedConsultant == nil || p2.AssignedConsultant.ConsultantID != "cons-2" {
		t.Fatal("assigned consultant not recorded")
	}

	// every other open proposal was rejected in the same update
	for _, prop := range p2.Proposals {
		switch prop.ConsultantID {
		case "cons-2":
			if prop.Status != ProposalAccepted {
				t.Errorf("winner should be accepted, got %s", prop.Status)
			}
		default:
			if prop.Status != ProposalRejected {
				t.Errorf("%s should be rejected, got %s", prop.ConsultantID, prop.Status)
			}
			if prop.RejectionReason == "" || prop.DecidedAt == nil {
				t.Errorf("%s rejection missing reason or decision time", prop.ConsultantID)
			}
		}
	}

	if len(spy.created) != 1 {
		t.Fatalf("expected one assignment created, got %d", len(spy.created))
	}
	n := spy.created[0]
	if n.ConsultantID != "cons-2" || n.ProjectID != p.ID {
		t.Errorf("assignment wired to wrong parties: %+v", n)
	}
	if n.TotalBudget != 90000 {
		t.Errorf("expected accepted amount 90000 as budget, got %d", n.TotalBudget)
	}
	if n.FeeRate != 15 {
		t.Errorf("expected fee rate clamped to 15, got %v", n.FeeRate)
	}
	if n.ID != p2.AssignedConsultant.AssignmentID {
		t.Error("assignment id mismatch between project and created record")
	}

	// a second assignment is refused
	if _, err := svc.AssignConsultant(ctx, p.ID, "cons-1", AssignInput{}, "client-1"); !apperrors.Is(err, "invalid_state") {
		t.Fatalf("expected invalid_state on second assign, got %v", err)
	}
}

func TestAssignConsultantWithoutProposal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p := postProject(t, svc, "fixed", 100000)

	if _, err := svc.AssignConsultant(ctx, p.ID, "cons-9", AssignInput{}, "client-1"); !apperrors.Is(err, "not_found") {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestEscrowAndPayments(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p, err := svc.Create(ctx, "client-1", CreateInput{Title: "x", BudgetType: "fixed", BudgetAmount: 50000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if p, err = svc.FundEscrow(ctx, p.ID, 50000); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if p.EscrowAmount != 50000 {
		t.Errorf("expected escrow 50000, got %d", p.EscrowAmount)
	}

	if p, err = svc.RecordPayment(ctx, p.ID, 30000); err != nil {
		t.Fatalf("payment: %v", err)
	}
	if p.TotalPaid != 30000 || p.EscrowAmount != 20000 {
		t.Errorf("ledger off after payment: paid=%d escrow=%d", p.TotalPaid, p.EscrowAmount)
	}

	// total paid can never exceed the posted budget
	if _, err := svc.RecordPayment(ctx, p.ID, 30000); !apperrors.Is(err, "invalid_state") {
		t.Fatalf("expected invalid_state over budget, got %v", err)
	}
}

func TestProjectMilestonesStayPlanningOnly(t *testing.T) {
	svc, spy := newTestService()
	ctx := context.Background()
	p := postProject(t, svc, "fixed", 100000)

	p, err := svc.AddMilestone(ctx, p.ID, "Discovery", 20000, ledger.Now())
	if err != nil {
		t.Fatalf("milestone: %v", err)
	}
	if len(p.Milestones) != 1 || p.Milestones[0].Status != "pending" {
		t.Fatalf("unexpected milestone state: %+v", p.Milestones)
	}
	// planning milestones never touch the assignment side
	if len(spy.created) != 0 {
		t.Error("adding a project milestone must not create assignments")
	}
}

func mustProposalID(t *testing.T, svc *Service, projectID, consultantID string) string {
	t.Helper()
	p, err := svc.Get(context.Background(), projectID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	i := p.ProposalByConsultant(consultantID)
	if i < 0 {
		t.Fatalf("no proposal from %s", consultantID)
	}
	return p.Proposals[i].ID
}
