package alerts

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sudo-init-do/consulthub/internal/ledger"
)

// ensureClient returns a usable client instance
func ensureClient() *asynq.Client {
	if client == nil {
		Init()
	}
	return client
}

func enqueue(taskType string, payload any, queue string) error {
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(taskType, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue(queue))
	return err
}

// EnqueueAssignmentStatus notifies both parties after a transition.
func EnqueueAssignmentStatus(assignmentID, clientID, consultantID, from, to, reason string) error {
	return enqueue(TaskAssignmentStatus, AssignmentStatusPayload{
		AssignmentID: assignmentID,
		ClientID:     clientID,
		ConsultantID: consultantID,
		FromStatus:   from,
		ToStatus:     to,
		Reason:       reason,
		SentAt:       time.Now(),
	}, "notifications")
}

// EnqueueMilestoneReleased notifies the consultant of an escrow payout.
func EnqueueMilestoneReleased(assignmentID, milestoneID, consultantID string, amount ledger.Amount) error {
	return enqueue(TaskMilestoneReleased, MilestoneReleasedPayload{
		AssignmentID: assignmentID,
		MilestoneID:  milestoneID,
		ConsultantID: consultantID,
		Amount:       amount,
		SentAt:       time.Now(),
	}, "notifications")
}

// EnqueueProposalDecided tells a consultant the outcome of their bid.
func EnqueueProposalDecided(projectID, consultantID, decision, reason string) error {
	return enqueue(TaskProposalDecided, ProposalDecidedPayload{
		ProjectID:    projectID,
		ConsultantID: consultantID,
		Decision:     decision,
		Reason:       reason,
		SentAt:       time.Now(),
	}, "notifications")
}

// EnqueueDisputeOpened flags a new review dispute for admin triage.
func EnqueueDisputeOpened(reviewID, actorID, reason string) error {
	return enqueue(TaskDisputeOpened, DisputePayload{
		ReviewID: reviewID,
		ActorID:  actorID,
		Reason:   reason,
		SentAt:   time.Now(),
	}, "alerts")
}

// EnqueueDisputeResolved announces a dispute settlement.
func EnqueueDisputeResolved(reviewID, actorID, resolution string) error {
	return enqueue(TaskDisputeResolved, DisputePayload{
		ReviewID:   reviewID,
		ActorID:    actorID,
		Resolution: resolution,
		SentAt:     time.Now(),
	}, "alerts")
}

// EnqueueAdminAlert sends an alert to admins
func EnqueueAdminAlert(adminID, severity, message string) error {
	return enqueue(TaskAdminAlert, AdminAlertPayload{
		AdminID:  adminID,
		Severity: severity,
		Message:  message,
		SentAt:   time.Now(),
	}, "alerts")
}
