package assignment

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
	"github.com/sudo-init-do/consulthub/internal/ledger"
)

// MilestoneInput is the payload for adding a milestone to an assignment.
type MilestoneInput struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Amount      ledger.Amount `json:"amount"`
	DueDate     time.Time     `json:"due_date"`
}

// AddMilestone appends a pending milestone. The combined milestone value may
// not exceed the contract budget, which keeps the escrow invariant inductive.
func (s *Service) AddMilestone(ctx context.Context, id string, in MilestoneInput) (*Assignment, error) {
	if in.Title == "" {
		return nil, apperrors.ValidationFailed("milestone title required")
	}
	if in.Amount <= 0 {
		return nil, apperrors.ValidationFailed("milestone amount must be positive")
	}
	return s.update(ctx, id, func(a *Assignment) error {
		if IsTerminal(a.Status) {
			return apperrors.InvalidState("assignment is closed")
		}
		var committed ledger.Amount
		for _, m := range a.Milestones {
			committed += m.Amount
		}
		if committed+in.Amount > a.ContractTerms.TotalBudget {
			return apperrors.InvalidState("milestones would exceed the contract budget")
		}
		a.Milestones = append(a.Milestones, Milestone{
			ID:          uuid.New().String(),
			Title:       in.Title,
			Description: in.Description,
			Amount:      in.Amount,
			DueDate:     in.DueDate,
			Status:      MilestonePending,
		})
		a.recomputeMilestoneMetrics()
		return nil
	})
}

// StartMilestone moves a milestone from pending to in_progress.
func (s *Service) StartMilestone(ctx context.Context, id, milestoneID string) (*Assignment, error) {
	return s.moveMilestone(ctx, id, milestoneID, MilestonePending, MilestoneInProgress)
}

// CompleteMilestone marks an in-progress milestone as delivered by the
// consultant, ready for client approval.
func (s *Service) CompleteMilestone(ctx context.Context, id, milestoneID string) (*Assignment, error) {
	return s.moveMilestone(ctx, id, milestoneID, MilestoneInProgress, MilestoneCompleted)
}

func (s *Service) moveMilestone(ctx context.Context, id, milestoneID, from, to string) (*Assignment, error) {
	return s.update(ctx, id, func(a *Assignment) error {
		i := a.MilestoneByID(milestoneID)
		if i < 0 {
			return apperrors.NotFound("milestone not found")
		}
		if a.Milestones[i].Status != from {
			return apperrors.InvalidState("milestone is " + a.Milestones[i].Status + ", expected " + from)
		}
		a.Milestones[i].Status = to
		return nil
	})
}

// ApproveMilestone accepts a completed milestone and earmarks its amount in
// escrow pending. Approval requires the milestone to be completed.
func (s *Service) ApproveMilestone(ctx context.Context, id, milestoneID, approver, feedback string) (*Assignment, error) {
	return s.update(ctx, id, func(a *Assignment) error {
		i := a.MilestoneByID(milestoneID)
		if i < 0 {
			return apperrors.NotFound("milestone not found")
		}
		m := &a.Milestones[i]
		if m.Status != MilestoneCompleted {
			return apperrors.InvalidState("milestone is " + m.Status + ", only completed milestones can be approved")
		}
		if a.Escrow.ReleasedAmount+a.Escrow.PendingAmount+m.Amount > a.ContractTerms.TotalBudget {
			return apperrors.InvalidState("approval would exceed the contract budget")
		}

		now := ledger.Now()
		m.Status = MilestoneApproved
		m.ApprovedBy = approver
		m.ApprovedAt = &now
		m.Feedback = feedback
		a.Escrow.PendingAmount += m.Amount
		a.recomputeMilestoneMetrics()
		return nil
	})
}

// ReleaseMilestonePayment pays out an approved milestone. The approved
// precondition is the idempotence guard: a second release observes paid and
// fails with invalid_state, leaving the escrow ledger untouched.
func (s *Service) ReleaseMilestonePayment(ctx context.Context, id, milestoneID string) (*Assignment, error) {
	return s.update(ctx, id, func(a *Assignment) error {
		i := a.MilestoneByID(milestoneID)
		if i < 0 {
			return apperrors.NotFound("milestone not found")
		}
		m := &a.Milestones[i]
		if m.Status != MilestoneApproved || m.PaymentReleased {
			return apperrors.InvalidState("milestone is " + m.Status + ", payment can only be released once from approved")
		}

		now := ledger.Now()
		m.Status = MilestonePaid
		m.PaymentReleased = true
		m.PaidAt = &now
		a.Escrow.ReleasedAmount += m.Amount
		a.Escrow.PendingAmount = ledger.SubFloor(a.Escrow.PendingAmount, m.Amount)
		a.recomputeMilestoneMetrics()
		return nil
	})
}

// RefundEscrow returns undisbursed funds to the client, shrinking the
// notional total. Released funds are never clawed back here.
func (s *Service) RefundEscrow(ctx context.Context, id string, amount ledger.Amount, reason, actorID string) (*Assignment, error) {
	if amount <= 0 {
		return nil, apperrors.ValidationFailed("refund amount must be positive")
	}
	return s.update(ctx, id, func(a *Assignment) error {
		undisbursed := a.Escrow.TotalAmount - a.Escrow.ReleasedAmount
		if amount > undisbursed {
			return apperrors.InvalidState("refund exceeds undisbursed escrow")
		}
		a.Escrow.TotalAmount -= amount
		a.Escrow.PendingAmount = ledger.SubFloor(a.Escrow.PendingAmount, amount)
		a.AdminNotes = append(a.AdminNotes, AdminNote{
			Note:    "escrow refund: " + reason,
			AddedBy: actorID,
			AddedAt: ledger.Now(),
		})
		return nil
	})
}
