package project

import (
	"time"

	"github.com/sudo-init-do/consulthub/internal/ledger"
)

// Project statuses. The lifecycle only advances forward except for the
// explicit cancellation/dispute branches.
const (
	StatusDraft              = "draft"
	StatusPosted             = "posted"
	StatusMatching           = "matching"
	StatusProposalsReceived  = "proposals_received"
	StatusConsultantAssigned = "consultant_assigned"
	StatusInProgress         = "in_progress"
	StatusCompleted          = "completed"
	StatusCancelled          = "cancelled"
	StatusDisputed           = "disputed"
)

// Proposal statuses
const (
	ProposalSubmitted   = "submitted"
	ProposalUnderReview = "under_review"
	ProposalShortlisted = "shortlisted"
	ProposalAccepted    = "accepted"
	ProposalRejected    = "rejected"
)

// Budget is the client's posted budget, hourly or fixed.
type Budget struct {
	Type   string        `json:"type"` // hourly | fixed
	Amount ledger.Amount `json:"amount"`
}

// Proposal is a consultant's bid, embedded in its Project.
type Proposal struct {
	ID              string        `json:"id"`
	ConsultantID    string        `json:"consultant_id"`
	Amount          ledger.Amount `json:"amount"`
	Rate            ledger.Amount `json:"rate"`
	CoverLetter     string        `json:"cover_letter,omitempty"`
	Status          string        `json:"status"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	SubmittedAt     time.Time     `json:"submitted_at"`
	DecidedAt       *time.Time    `json:"decided_at,omitempty"`
}

// Milestone is a project-side planning milestone. Assignments keep their own
// milestone list with payment state; the two lists are intentionally
// independent and never aliased.
type Milestone struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Amount  ledger.Amount `json:"amount"`
	DueDate time.Time     `json:"due_date"`
	Status  string        `json:"status"`
}

// AssignedConsultant records the outcome of matching.
type AssignedConsultant struct {
	ConsultantID string        `json:"consultant_id"`
	Rate         ledger.Amount `json:"rate"`
	AssignmentID string        `json:"assignment_id,omitempty"`
	AssignedBy   string        `json:"assigned_by"`
	AssignedAt   time.Time     `json:"assigned_at"`
}

// AdminNote is an append-only audit record attached on status changes.
type AdminNote struct {
	Note    string    `json:"note"`
	AddedBy string    `json:"added_by"`
	AddedAt time.Time `json:"added_at"`
}

// Project is a client's posted work request.
type Project struct {
	ID                 string              `json:"id"`
	ClientID           string              `json:"client_id"`
	Title              string              `json:"title"`
	Description        string              `json:"description,omitempty"`
	RequiredExpertise  []string            `json:"required_expertise,omitempty"`
	Budget             Budget              `json:"budget"`
	Status             string              `json:"status"`
	Proposals          []Proposal          `json:"proposals"`
	ProposalsCount     int                 `json:"proposals_count"`
	Milestones         []Milestone         `json:"milestones"`
	EscrowAmount       ledger.Amount       `json:"escrow_amount"`
	TotalPaid          ledger.Amount       `json:"total_paid"`
	AssignedConsultant *AssignedConsultant `json:"assigned_consultant,omitempty"`
	AdminNotes         []AdminNote         `json:"admin_notes,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// forward ordering of the main lifecycle; cancelled/disputed are branches
var statusOrder = map[string]int{
	StatusDraft:              0,
	StatusPosted:             1,
	StatusMatching:           2,
	StatusProposalsReceived:  3,
	StatusConsultantAssigned: 4,
	StatusInProgress:         5,
	StatusCompleted:          6,
}

func isTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// CanTransition reports whether a project may move from to next. Forward
// moves along the main lifecycle are legal; cancellation and dispute are
// legal from any non-terminal state; a disputed project may complete or be
// cancelled once the dispute settles.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	if to == StatusCancelled || to == StatusDisputed {
		return !isTerminal(from)
	}
	if from == StatusDisputed {
		return to == StatusCompleted || to == StatusCancelled
	}
	fromOrd, okFrom := statusOrder[from]
	toOrd, okTo := statusOrder[to]
	return okFrom && okTo && toOrd > fromOrd
}

// ProposalByID returns the index of a proposal, or -1.
func (p *Project) ProposalByID(id string) int {
	for i := range p.Proposals {
		if p.Proposals[i].ID == id {
			return i
		}
	}
	return -1
}

// ProposalByConsultant returns the index of a consultant's proposal, or -1.
func (p *Project) ProposalByConsultant(consultantID string) int {
	for i := range p.Proposals {
		if p.Proposals[i].ConsultantID == consultantID {
			return i
		}
	}
	return -1
}

// AcceptedProposal returns the index of the accepted proposal, or -1.
func (p *Project) AcceptedProposal() int {
	for i := range p.Proposals {
		if p.Proposals[i].Status == ProposalAccepted {
			return i
		}
	}
	return -1
}
