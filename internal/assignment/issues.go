package assignment

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
	"github.com/sudo-init-do/consulthub/internal/ledger"
)

// IssueInput is the payload for raising an issue on an assignment.
type IssueInput struct {
	Type         string `json:"type"`
	Severity     string `json:"severity"`
	Description  string `json:"description"`
	ReportedBy   string `json:"reported_by"`
	ReporterRole string `json:"reporter_role"`
}

// CreateIssue appends an open issue raised by either party.
func (s *Service) CreateIssue(ctx context.Context, id string, in IssueInput) (*Assignment, error) {
	if in.Description == "" {
		return nil, apperrors.ValidationFailed("issue description required")
	}
	if in.ReporterRole != "client" && in.ReporterRole != "consultant" {
		return nil, apperrors.ValidationFailed("reporter role must be client or consultant")
	}
	return s.update(ctx, id, func(a *Assignment) error {
		a.Issues = append(a.Issues, Issue{
			ID:           uuid.New().String(),
			Type:         in.Type,
			Severity:     in.Severity,
			Description:  in.Description,
			Status:       IssueOpen,
			ReportedBy:   in.ReportedBy,
			ReporterRole: in.ReporterRole,
			CreatedAt:    ledger.Now(),
		})
		return nil
	})
}

// StartIssue moves an open issue to in_progress.
func (s *Service) StartIssue(ctx context.Context, id, issueID string) (*Assignment, error) {
	return s.moveIssue(ctx, id, issueID, IssueOpen, IssueInProgress)
}

// EscalateIssue flags an issue for senior attention. Escalated issues remain
// resolvable by an admin.
func (s *Service) EscalateIssue(ctx context.Context, id, issueID string) (*Assignment, error) {
	return s.update(ctx, id, func(a *Assignment) error {
		i := a.IssueByID(issueID)
		if i < 0 {
			return apperrors.NotFound("issue not found")
		}
		iss := &a.Issues[i]
		if iss.Status != IssueOpen && iss.Status != IssueInProgress {
			return apperrors.InvalidState("issue is " + iss.Status + " and cannot be escalated")
		}
		iss.Status = IssueEscalated
		return nil
	})
}

// ResolveIssue closes an issue. Resolution is terminal: once resolved, the
// only permitted change is appending admin notes.
func (s *Service) ResolveIssue(ctx context.Context, id, issueID, resolution, resolvedBy string) (*Assignment, error) {
	if resolution == "" {
		return nil, apperrors.ValidationFailed("resolution required")
	}
	return s.update(ctx, id, func(a *Assignment) error {
		i := a.IssueByID(issueID)
		if i < 0 {
			return apperrors.NotFound("issue not found")
		}
		iss := &a.Issues[i]
		if iss.Status == IssueResolved {
			return apperrors.InvalidState("issue already resolved")
		}
		now := ledger.Now()
		iss.Status = IssueResolved
		iss.Resolution = resolution
		iss.ResolvedBy = resolvedBy
		iss.ResolvedAt = &now
		return nil
	})
}

// AddIssueNote appends an admin note; allowed even after resolution.
func (s *Service) AddIssueNote(ctx context.Context, id, issueID, note, addedBy string) (*Assignment, error) {
	if note == "" {
		return nil, apperrors.ValidationFailed("note required")
	}
	return s.update(ctx, id, func(a *Assignment) error {
		i := a.IssueByID(issueID)
		if i < 0 {
			return apperrors.NotFound("issue not found")
		}
		a.Issues[i].AdminNotes = append(a.Issues[i].AdminNotes, AdminNote{
			Note:    note,
			AddedBy: addedBy,
			AddedAt: ledger.Now(),
		})
		return nil
	})
}

func (s *Service) moveIssue(ctx context.Context, id, issueID, from, to string) (*Assignment, error) {
	return s.update(ctx, id, func(a *Assignment) error {
		i := a.IssueByID(issueID)
		if i < 0 {
			return apperrors.NotFound("issue not found")
		}
		if a.Issues[i].Status != from {
			return apperrors.InvalidState("issue is " + a.Issues[i].Status + ", expected " + from)
		}
		a.Issues[i].Status = to
		return nil
	})
}
