package assignment

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
	"github.com/sudo-init-do/consulthub/internal/ledger"
)

const (
	minHoursPerEntry = 0.25
	maxHoursPerEntry = 24
)

// TimeEntryInput is the payload for logging work.
type TimeEntryInput struct {
	Date        time.Time `json:"date"`
	HoursWorked float64   `json:"hours_worked"`
	Description string    `json:"description"`
	Submit      bool      `json:"submit"` // log straight to submitted
}

// LogTime appends a time entry. The billable amount is locked to the contract
// rate in effect now; later rate changes never touch logged entries. The
// derived hour totals are refolded inside the same atomic update.
func (s *Service) LogTime(ctx context.Context, id string, in TimeEntryInput) (*Assignment, error) {
	if in.HoursWorked < minHoursPerEntry || in.HoursWorked > maxHoursPerEntry {
		return nil, apperrors.ValidationFailed("hours worked must be between 0.25 and 24")
	}
	if in.Description == "" {
		return nil, apperrors.ValidationFailed("description required")
	}
	return s.update(ctx, id, func(a *Assignment) error {
		if a.Status != StatusActive && a.Status != StatusPendingStart {
			return apperrors.InvalidState("time can only be logged on active assignments")
		}
		status := EntryDraft
		if in.Submit {
			status = EntrySubmitted
		}
		date := in.Date
		if date.IsZero() {
			date = ledger.Now()
		}
		a.TimeTracking.Entries = append(a.TimeTracking.Entries, TimeEntry{
			ID:             uuid.New().String(),
			Date:           date,
			HoursWorked:    in.HoursWorked,
			Description:    in.Description,
			Status:         status,
			BillableAmount: ledger.BillableAmount(in.HoursWorked, a.ContractTerms.Rate),
		})
		a.recomputeTimeTotals()
		return nil
	})
}

// SubmitTimeEntries flips draft entries to submitted. Entries not found or in
// another status are silently skipped.
func (s *Service) SubmitTimeEntries(ctx context.Context, id string, entryIDs []string) (*Assignment, error) {
	return s.update(ctx, id, func(a *Assignment) error {
		for _, entryID := range entryIDs {
			for i := range a.TimeTracking.Entries {
				e := &a.TimeTracking.Entries[i]
				if e.ID == entryID && e.Status == EntryDraft {
					e.Status = EntrySubmitted
				}
			}
		}
		a.recomputeTimeTotals()
		return nil
	})
}

// ApproveTimeEntries approves submitted entries so they count toward billed
// hours. Only entries currently submitted flip; everything else is skipped
// without error.
func (s *Service) ApproveTimeEntries(ctx context.Context, id string, entryIDs []string, approver string) (*Assignment, error) {
	return s.update(ctx, id, func(a *Assignment) error {
		now := ledger.Now()
		for _, entryID := range entryIDs {
			for i := range a.TimeTracking.Entries {
				e := &a.TimeTracking.Entries[i]
				if e.ID == entryID && e.Status == EntrySubmitted {
					e.Status = EntryApproved
					e.ApprovedBy = approver
					e.ApprovedAt = &now
				}
			}
		}
		a.recomputeTimeTotals()
		return nil
	})
}

// DisputeTimeEntries marks submitted entries as disputed, keeping them out of
// billed hours until settled through the issue workflow.
func (s *Service) DisputeTimeEntries(ctx context.Context, id string, entryIDs []string) (*Assignment, error) {
	return s.update(ctx, id, func(a *Assignment) error {
		for _, entryID := range entryIDs {
			for i := range a.TimeTracking.Entries {
				e := &a.TimeTracking.Entries[i]
				if e.ID == entryID && e.Status == EntrySubmitted {
					e.Status = EntryDisputed
				}
			}
		}
		a.recomputeTimeTotals()
		return nil
	})
}
