package assignment

import (
	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
	"github.com/sudo-init-do/consulthub/internal/ledger"
)

// transitions is the legal status adjacency set. completed is reachable from
// active, paused and disputed only; disputed from any non-terminal state.
var transitions = map[string][]string{
	StatusPendingStart: {StatusActive, StatusCancelled, StatusDisputed},
	StatusActive:       {StatusPaused, StatusCompleted, StatusTerminatedByClient, StatusTerminatedByConsultant, StatusDisputed},
	StatusPaused:       {StatusActive, StatusCompleted, StatusTerminatedByClient, StatusTerminatedByConsultant, StatusDisputed},
	StatusDisputed:     {StatusActive, StatusCompleted, StatusTerminatedByClient, StatusTerminatedByConsultant, StatusCancelled},
}

// CanTransition reports whether the move is in the adjacency set.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// applyTransition moves the assignment to newStatus or fails with an
// IllegalTransition, leaving it untouched. Entering completed freezes the
// completion details from the time-tracking aggregate. A supplied reason is
// appended to the immutable admin-note trail.
func applyTransition(a *Assignment, newStatus, actorID, reason string) error {
	if !CanTransition(a.Status, newStatus) {
		return apperrors.IllegalTransition("cannot move assignment from " + a.Status + " to " + newStatus)
	}

	now := ledger.Now()
	a.Status = newStatus

	if newStatus == StatusCompleted {
		a.CompletionDetails.CompletedDate = &now
		a.CompletionDetails.TotalHoursWorked = a.TimeTracking.TotalHoursLogged
		a.EndDate = &now
	}
	if reason != "" {
		a.AdminNotes = append(a.AdminNotes, AdminNote{Note: reason, AddedBy: actorID, AddedAt: now})
	}
	return nil
}
