package assignment

import (
	"time"

	"github.com/sudo-init-do/consulthub/internal/ledger"
)

// Assignment statuses
const (
	StatusPendingStart           = "pending_start"
	StatusActive                 = "active"
	StatusPaused                 = "paused"
	StatusCompleted              = "completed"
	StatusTerminatedByClient     = "terminated_by_client"
	StatusTerminatedByConsultant = "terminated_by_consultant"
	StatusDisputed               = "disputed"
	StatusCancelled              = "cancelled"
)

// Milestone statuses. paid is terminal and reachable only from approved.
const (
	MilestonePending    = "pending"
	MilestoneInProgress = "in_progress"
	MilestoneCompleted  = "completed"
	MilestoneApproved   = "approved"
	MilestonePaid       = "paid"
)

// Time entry statuses
const (
	EntryDraft     = "draft"
	EntrySubmitted = "submitted"
	EntryApproved  = "approved"
	EntryDisputed  = "disputed"
)

// Issue statuses
const (
	IssueOpen       = "open"
	IssueInProgress = "in_progress"
	IssueResolved   = "resolved"
	IssueEscalated  = "escalated"
)

// ContractTerms are fixed at matching time.
type ContractTerms struct {
	PaymentType string        `json:"payment_type"` // hourly | fixed
	Rate        ledger.Amount `json:"rate"`
	FeeRate     float64       `json:"fee_rate"` // platform cut, percent in [15,40]
	TotalBudget ledger.Amount `json:"total_budget"`
}

// Escrow is the assignment's payment ledger. It is owned exclusively by the
// assignment and mutated only through milestone release and refund.
type Escrow struct {
	TotalAmount    ledger.Amount `json:"total_amount"`
	ReleasedAmount ledger.Amount `json:"released_amount"`
	PendingAmount  ledger.Amount `json:"pending_amount"`
}

// Milestone is a separately payable unit of work.
type Milestone struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	Amount          ledger.Amount `json:"amount"`
	DueDate         time.Time     `json:"due_date"`
	Status          string        `json:"status"`
	PaymentReleased bool          `json:"payment_released"`
	ApprovedBy      string        `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time    `json:"approved_at,omitempty"`
	Feedback        string        `json:"feedback,omitempty"`
	PaidAt          *time.Time    `json:"paid_at,omitempty"`
}

// TimeEntry is one logged block of billable work. BillableAmount is computed
// from the contract rate in effect when the entry was logged and never
// re-derived.
type TimeEntry struct {
	ID             string        `json:"id"`
	Date           time.Time     `json:"date"`
	HoursWorked    float64       `json:"hours_worked"`
	Description    string        `json:"description"`
	Status         string        `json:"status"`
	BillableAmount ledger.Amount `json:"billable_amount"`
	ApprovedBy     string        `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time    `json:"approved_at,omitempty"`
}

// TimeTracking holds the entries plus derived totals. The totals are a pure
// fold over the entries, recomputed on every mutation, never incremented.
type TimeTracking struct {
	Entries          []TimeEntry `json:"entries"`
	TotalHoursLogged float64     `json:"total_hours_logged"`
	TotalHoursBilled float64     `json:"total_hours_billed"`
}

// Issue is a problem raised by either party; only admins resolve.
type Issue struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	Severity     string      `json:"severity"`
	Description  string      `json:"description"`
	Status       string      `json:"status"`
	ReportedBy   string      `json:"reported_by"`
	ReporterRole string      `json:"reporter_role"` // client | consultant
	Resolution   string      `json:"resolution,omitempty"`
	ResolvedBy   string      `json:"resolved_by,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	ResolvedAt   *time.Time  `json:"resolved_at,omitempty"`
	AdminNotes   []AdminNote `json:"admin_notes,omitempty"`
}

// AdminNote is an append-only audit record.
type AdminNote struct {
	Note    string    `json:"note"`
	AddedBy string    `json:"added_by"`
	AddedAt time.Time `json:"added_at"`
}

// CompletionDetails are frozen when the assignment completes.
type CompletionDetails struct {
	CompletedDate    *time.Time `json:"completed_date,omitempty"`
	TotalHoursWorked float64    `json:"total_hours_worked,omitempty"`
}

// PerformanceMetrics are derived; nil fields mean "not yet measurable" and
// are excluded from analytics averages.
type PerformanceMetrics struct {
	MilestoneCompletionRate *float64 `json:"milestone_completion_rate,omitempty"`
	ClientSatisfaction      *float64 `json:"client_satisfaction,omitempty"`
}

// Assignment is the contractual engagement created from an accepted proposal.
type Assignment struct {
	ID                string             `json:"id"`
	ProjectID         string             `json:"project_id"`
	ClientID          string             `json:"client_id"`
	ConsultantID      string             `json:"consultant_id"`
	Status            string             `json:"status"`
	ContractTerms     ContractTerms      `json:"contract_terms"`
	Escrow            Escrow             `json:"escrow"`
	TimeTracking      TimeTracking       `json:"time_tracking"`
	Milestones        []Milestone        `json:"milestones"`
	Issues            []Issue            `json:"issues"`
	Metrics           PerformanceMetrics `json:"metrics"`
	CompletionDetails CompletionDetails  `json:"completion_details"`
	AdminNotes        []AdminNote        `json:"admin_notes,omitempty"`
	StartDate         time.Time          `json:"start_date"`
	EndDate           *time.Time         `json:"end_date,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// IsTerminal reports whether no further status transitions are legal.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusTerminatedByClient, StatusTerminatedByConsultant, StatusCancelled:
		return true
	}
	return false
}

// MilestoneByID returns the index of a milestone, or -1.
func (a *Assignment) MilestoneByID(id string) int {
	for i := range a.Milestones {
		if a.Milestones[i].ID == id {
			return i
		}
	}
	return -1
}

// IssueByID returns the index of an issue, or -1.
func (a *Assignment) IssueByID(id string) int {
	for i := range a.Issues {
		if a.Issues[i].ID == id {
			return i
		}
	}
	return -1
}

// recomputeTimeTotals folds the entry list into the derived totals.
func (a *Assignment) recomputeTimeTotals() {
	var logged, billed float64
	for _, e := range a.TimeTracking.Entries {
		logged += e.HoursWorked
		if e.Status == EntryApproved {
			billed += e.HoursWorked
		}
	}
	a.TimeTracking.TotalHoursLogged = logged
	a.TimeTracking.TotalHoursBilled = billed
}

// recomputeMilestoneMetrics refreshes the derived completion rate. Approved
// and paid milestones both count as delivered.
func (a *Assignment) recomputeMilestoneMetrics() {
	if len(a.Milestones) == 0 {
		a.Metrics.MilestoneCompletionRate = nil
		return
	}
	done := 0
	for _, m := range a.Milestones {
		if m.Status == MilestoneApproved || m.Status == MilestonePaid {
			done++
		}
	}
	rate := float64(ledger.Percentage(done, len(a.Milestones)))
	a.Metrics.MilestoneCompletionRate = &rate
}
