package project

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
	"github.com/sudo-init-do/consulthub/internal/ledger"
	"github.com/sudo-init-do/consulthub/internal/store"
)

// NewAssignment is the engagement record created when matching succeeds.
type NewAssignment struct {
	ID           string
	ProjectID    string
	ClientID     string
	ConsultantID string
	PaymentType  string // hourly | fixed
	Rate         ledger.Amount
	TotalBudget  ledger.Amount
	FeeRate      float64
	StartDate    time.Time
}

// AssignmentCreator creates the Assignment document for an accepted proposal.
// Wired to the assignment service in main; kept as an interface so matching
// stays testable without the assignment package.
type AssignmentCreator interface {
	Create(ctx context.Context, n NewAssignment) error
}

// Service owns project lifecycle and proposal matching. All mutations go
// through a single atomic document update.
type Service struct {
	store       store.Store
	assignments AssignmentCreator
}

func NewService(st store.Store, assignments AssignmentCreator) *Service {
	return &Service{store: st, assignments: assignments}
}

// CreateInput is the payload for posting a new draft project.
type CreateInput struct {
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	RequiredExpertise []string      `json:"required_expertise"`
	BudgetType        string        `json:"budget_type"`
	BudgetAmount      ledger.Amount `json:"budget_amount"`
}

// Create stores a new draft project for the client.
func (s *Service) Create(ctx context.Context, clientID string, in CreateInput) (*Project, error) {
	if clientID == "" {
		return nil, apperrors.ValidationFailed("client id required")
	}
	if in.Title == "" {
		return nil, apperrors.ValidationFailed("title required")
	}
	if in.BudgetType != "hourly" && in.BudgetType != "fixed" {
		return nil, apperrors.ValidationFailed("budget type must be hourly or fixed")
	}
	if in.BudgetAmount <= 0 {
		return nil, apperrors.ValidationFailed("budget amount must be positive")
	}

	now := ledger.Now()
	p := &Project{
		ID:                uuid.New().String(),
		ClientID:          clientID,
		Title:             in.Title,
		Description:       in.Description,
		RequiredExpertise: in.RequiredExpertise,
		Budget:            Budget{Type: in.BudgetType, Amount: in.BudgetAmount},
		Status:            StatusDraft,
		Proposals:         []Proposal{},
		Milestones:        []Milestone{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Put(ctx, store.KindProject, p.ID, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get loads a project by id.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	var p Project
	if err := s.store.Get(ctx, store.KindProject, id, &p); err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NotFound("project not found")
		}
		return nil, err
	}
	return &p, nil
}

// ListByClient returns all projects posted by a client.
func (s *Service) ListByClient(ctx context.Context, clientID string) ([]Project, error) {
	var out []Project
	err := s.store.Query(ctx, store.KindProject, store.Filter{"client_id": clientID}, &out)
	return out, err
}

// UpdateStatus moves a project along its lifecycle graph. A reason, when
// supplied, is appended to the immutable admin-note trail.
func (s *Service) UpdateStatus(ctx context.Context, id, newStatus, actorID, reason string) (*Project, error) {
	return s.update(ctx, id, func(p *Project) error {
		if !CanTransition(p.Status, newStatus) {
			return apperrors.IllegalTransition("cannot move project from " + p.Status + " to " + newStatus)
		}
		p.Status = newStatus
		if reason != "" {
			p.AdminNotes = append(p.AdminNotes, AdminNote{Note: reason, AddedBy: actorID, AddedAt: ledger.Now()})
		}
		return nil
	})
}

// ProposalInput is a consultant's bid payload.
type ProposalInput struct {
	ConsultantID string        `json:"consultant_id"`
	Amount       ledger.Amount `json:"amount"`
	Rate         ledger.Amount `json:"rate"`
	CoverLetter  string        `json:"cover_letter"`
}

// SubmitProposal appends a consultant's bid. The derived proposals count is
// recomputed inside the same atomic update as the list mutation.
func (s *Service) SubmitProposal(ctx context.Context, projectID string, in ProposalInput) (*Project, error) {
	if in.ConsultantID == "" {
		return nil, apperrors.ValidationFailed("consultant id required")
	}
	return s.update(ctx, projectID, func(p *Project) error {
		switch p.Status {
		case StatusPosted, StatusMatching, StatusProposalsReceived:
		default:
			return apperrors.InvalidState("project is not accepting proposals")
		}
		if p.ProposalByConsultant(in.ConsultantID) >= 0 {
			return apperrors.ValidationFailed("consultant already submitted a proposal")
		}
		if p.Budget.Type == "hourly" && in.Rate <= 0 {
			return apperrors.ValidationFailed("hourly proposals require a positive rate")
		}
		if p.Budget.Type == "fixed" && in.Amount <= 0 {
			return apperrors.ValidationFailed("fixed proposals require a positive amount")
		}

		p.Proposals = append(p.Proposals, Proposal{
			ID:           uuid.New().String(),
			ConsultantID: in.ConsultantID,
			Amount:       in.Amount,
			Rate:         in.Rate,
			CoverLetter:  in.CoverLetter,
			Status:       ProposalSubmitted,
			SubmittedAt:  ledger.Now(),
		})
		p.ProposalsCount = len(p.Proposals)
		if p.Status != StatusProposalsReceived {
			p.Status = StatusProposalsReceived
		}
		return nil
	})
}

// legal proposal moves short of acceptance, which only AssignConsultant does
var proposalMoves = map[string][]string{
	ProposalSubmitted:   {ProposalUnderReview, ProposalShortlisted, ProposalRejected},
	ProposalUnderReview: {ProposalShortlisted, ProposalRejected},
	ProposalShortlisted: {ProposalRejected},
}

// ReviewProposal advances one proposal through review.
func (s *Service) ReviewProposal(ctx context.Context, projectID, proposalID, newStatus, reason string) (*Project, error) {
	return s.update(ctx, projectID, func(p *Project) error {
		i := p.ProposalByID(proposalID)
		if i < 0 {
			return apperrors.NotFound("proposal not found")
		}
		prop := &p.Proposals[i]
		legal := false
		for _, next := range proposalMoves[prop.Status] {
			if next == newStatus {
				legal = true
				break
			}
		}
		if !legal {
			return apperrors.IllegalTransition("cannot move proposal from " + prop.Status + " to " + newStatus)
		}
		prop.Status = newStatus
		if newStatus == ProposalRejected {
			prop.RejectionReason = reason
			now := ledger.Now()
			prop.DecidedAt = &now
		}
		return nil
	})
}

// AssignInput carries negotiated contract terms for matching.
type AssignInput struct {
	NegotiatedRate   ledger.Amount `json:"negotiated_rate"`
	NegotiatedBudget ledger.Amount `json:"negotiated_budget"`
	FeeRate          float64       `json:"fee_rate"`
	StartDate        time.Time     `json:"start_date"`
}

// AssignConsultant accepts the consultant's proposal, rejects every other
// open proposal, and creates the Assignment. The fan-out rejection is part of
// the same atomic project update as the acceptance.
func (s *Service) AssignConsultant(ctx context.Context, projectID, consultantID string, in AssignInput, updatedBy string) (*Project, error) {
	assignmentID := uuid.New().String()
	var created NewAssignment

	p, err := s.update(ctx, projectID, func(p *Project) error {
		i := p.ProposalByConsultant(consultantID)
		if i < 0 {
			return apperrors.NotFound("no proposal from this consultant")
		}
		if p.AcceptedProposal() >= 0 || p.AssignedConsultant != nil {
			return apperrors.InvalidState("project already has an assigned consultant")
		}
		if !CanTransition(p.Status, StatusConsultantAssigned) {
			return apperrors.IllegalTransition("cannot assign a consultant while project is " + p.Status)
		}

		now := ledger.Now()
		accepted := &p.Proposals[i]
		accepted.Status = ProposalAccepted
		accepted.DecidedAt = &now

		for j := range p.Proposals {
			if j == i {
				continue
			}
			switch p.Proposals[j].Status {
			case ProposalSubmitted, ProposalUnderReview, ProposalShortlisted:
				p.Proposals[j].Status = ProposalRejected
				p.Proposals[j].RejectionReason = "another consultant was selected"
				decided := ledger.Now()
				p.Proposals[j].DecidedAt = &decided
			}
		}

		rate := in.NegotiatedRate
		if rate == 0 {
			rate = accepted.Rate
		}
		totalBudget := in.NegotiatedBudget
		if totalBudget == 0 {
			if p.Budget.Type == "fixed" && accepted.Amount > 0 {
				totalBudget = accepted.Amount
			} else {
				totalBudget = p.Budget.Amount
			}
		}

		p.AssignedConsultant = &AssignedConsultant{
			ConsultantID: consultantID,
			Rate:         rate,
			AssignmentID: assignmentID,
			AssignedBy:   updatedBy,
			AssignedAt:   now,
		}
		p.Status = StatusConsultantAssigned
		p.AdminNotes = append(p.AdminNotes, AdminNote{
			Note:    "consultant " + consultantID + " assigned",
			AddedBy: updatedBy,
			AddedAt: now,
		})

		created = NewAssignment{
			ID:           assignmentID,
			ProjectID:    p.ID,
			ClientID:     p.ClientID,
			ConsultantID: consultantID,
			PaymentType:  p.Budget.Type,
			Rate:         rate,
			TotalBudget:  totalBudget,
			FeeRate:      ledger.ClampFeeRate(in.FeeRate),
			StartDate:    in.StartDate,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.assignments != nil {
		if err := s.assignments.Create(ctx, created); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddMilestone appends a planning milestone to the project's own list. This
// list is independent of the assignment's milestone ledger.
func (s *Service) AddMilestone(ctx context.Context, projectID, title string, amount ledger.Amount, dueDate time.Time) (*Project, error) {
	if title == "" {
		return nil, apperrors.ValidationFailed("milestone title required")
	}
	if amount <= 0 {
		return nil, apperrors.ValidationFailed("milestone amount must be positive")
	}
	return s.update(ctx, projectID, func(p *Project) error {
		if isTerminal(p.Status) {
			return apperrors.InvalidState("project is closed")
		}
		p.Milestones = append(p.Milestones, Milestone{
			ID:      uuid.New().String(),
			Title:   title,
			Amount:  amount,
			DueDate: dueDate,
			Status:  "pending",
		})
		return nil
	})
}

// FundEscrow records funds the client has placed against the project.
func (s *Service) FundEscrow(ctx context.Context, projectID string, amount ledger.Amount) (*Project, error) {
	if amount <= 0 {
		return nil, apperrors.ValidationFailed("escrow amount must be positive")
	}
	return s.update(ctx, projectID, func(p *Project) error {
		p.EscrowAmount += amount
		return nil
	})
}

// RecordPayment bumps the project's paid total after a milestone release.
// Total paid can never exceed the posted budget.
func (s *Service) RecordPayment(ctx context.Context, projectID string, amount ledger.Amount) (*Project, error) {
	if amount <= 0 {
		return nil, apperrors.ValidationFailed("payment amount must be positive")
	}
	return s.update(ctx, projectID, func(p *Project) error {
		if p.TotalPaid+amount > p.Budget.Amount {
			return apperrors.InvalidState("payment would exceed project budget")
		}
		p.TotalPaid += amount
		p.EscrowAmount = ledger.SubFloor(p.EscrowAmount, amount)
		return nil
	})
}

// update runs fn against the stored project as one atomic read-modify-write.
func (s *Service) update(ctx context.Context, id string, fn func(*Project) error) (*Project, error) {
	var out *Project
	err := s.store.Update(ctx, store.KindProject, id, func(raw []byte) (any, error) {
		var p Project
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		if err := fn(&p); err != nil {
			return nil, err
		}
		p.UpdatedAt = ledger.Now()
		out = &p
		return &p, nil
	})
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NotFound("project not found")
		}
		return nil, err
	}
	return out, nil
}
