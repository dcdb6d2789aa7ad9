package alerts

import (
	"time"

	"github.com/sudo-init-do/consulthub/internal/ledger"
)

// Task type constants
const (
	TaskAssignmentStatus  = "notify:assignment_status"
	TaskMilestoneReleased = "notify:milestone_released"
	TaskProposalDecided   = "notify:proposal_decided"
	TaskDisputeOpened     = "notify:dispute_opened"
	TaskDisputeResolved   = "notify:dispute_resolved"
	TaskAdminAlert        = "notify:admin_alert"
)

// AssignmentStatusPayload announces a state-machine transition to both
// parties of the engagement.
type AssignmentStatusPayload struct {
	AssignmentID string    `json:"assignment_id"`
	ClientID     string    `json:"client_id"`
	ConsultantID string    `json:"consultant_id"`
	FromStatus   string    `json:"from_status"`
	ToStatus     string    `json:"to_status"`
	Reason       string    `json:"reason,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}

// MilestoneReleasedPayload announces an escrow payout to the consultant.
type MilestoneReleasedPayload struct {
	AssignmentID string        `json:"assignment_id"`
	MilestoneID  string        `json:"milestone_id"`
	ConsultantID string        `json:"consultant_id"`
	Amount       ledger.Amount `json:"amount"`
	SentAt       time.Time     `json:"sent_at"`
}

// ProposalDecidedPayload tells a consultant their bid was accepted or
// rejected.
type ProposalDecidedPayload struct {
	ProjectID    string    `json:"project_id"`
	ConsultantID string    `json:"consultant_id"`
	Decision     string    `json:"decision"` // accepted | rejected
	Reason       string    `json:"reason,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}

// DisputePayload covers review-dispute open and resolve events.
type DisputePayload struct {
	ReviewID   string    `json:"review_id"`
	ActorID    string    `json:"actor_id"`
	Reason     string    `json:"reason,omitempty"`
	Resolution string    `json:"resolution,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}

// AdminAlertPayload is an operational heads-up delivered to the admin inbox.
type AdminAlertPayload struct {
	AdminID  string    `json:"admin_id"`
	Severity string    `json:"severity"` // info|warning|critical
	Message  string    `json:"message"`
	SentAt   time.Time `json:"sent_at"`
}
