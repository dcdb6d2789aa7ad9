package assignment

import (
	"context"
	"encoding/json"

	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
	"github.com/sudo-init-do/consulthub/internal/ledger"
	"github.com/sudo-init-do/consulthub/internal/project"
	"github.com/sudo-init-do/consulthub/internal/store"
)

// Service owns the assignment state machine, the escrow ledger, time tracking
// and the issue workflow. Every mutation is a single atomic document update;
// all precondition checks happen before any persisted change.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Create builds the engagement record for an accepted proposal. Satisfies
// project.AssignmentCreator.
func (s *Service) Create(ctx context.Context, n project.NewAssignment) error {
	now := ledger.Now()
	start := n.StartDate
	if start.IsZero() {
		start = now
	}
	a := &Assignment{
		ID:           n.ID,
		ProjectID:    n.ProjectID,
		ClientID:     n.ClientID,
		ConsultantID: n.ConsultantID,
		Status:       StatusPendingStart,
		ContractTerms: ContractTerms{
			PaymentType: n.PaymentType,
			Rate:        n.Rate,
			FeeRate:     ledger.ClampFeeRate(n.FeeRate),
			TotalBudget: n.TotalBudget,
		},
		Escrow:       Escrow{TotalAmount: n.TotalBudget},
		TimeTracking: TimeTracking{Entries: []TimeEntry{}},
		Milestones:   []Milestone{},
		Issues:       []Issue{},
		StartDate:    start,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.store.Put(ctx, store.KindAssignment, a.ID, a)
}

// Get loads an assignment by id.
func (s *Service) Get(ctx context.Context, id string) (*Assignment, error) {
	var a Assignment
	if err := s.store.Get(ctx, store.KindAssignment, id, &a); err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NotFound("assignment not found")
		}
		return nil, err
	}
	return &a, nil
}

// ListByConsultant returns a consultant's assignments.
func (s *Service) ListByConsultant(ctx context.Context, consultantID string) ([]Assignment, error) {
	var out []Assignment
	err := s.store.Query(ctx, store.KindAssignment, store.Filter{"consultant_id": consultantID}, &out)
	return out, err
}

// ListByClient returns a client's assignments.
func (s *Service) ListByClient(ctx context.Context, clientID string) ([]Assignment, error) {
	var out []Assignment
	err := s.store.Query(ctx, store.KindAssignment, store.Filter{"client_id": clientID}, &out)
	return out, err
}

// Transition moves the assignment through its status graph. The returned
// from-status is captured inside the atomic update, so it is the state the
// transition actually left, not a stale read.
func (s *Service) Transition(ctx context.Context, id, newStatus, actorID, reason string) (*Assignment, string, error) {
	var from string
	a, err := s.update(ctx, id, func(a *Assignment) error {
		from = a.Status
		return applyTransition(a, newStatus, actorID, reason)
	})
	return a, from, err
}

// update runs fn against the stored assignment as one atomic
// read-modify-write. fn errors abort with no write.
func (s *Service) update(ctx context.Context, id string, fn func(*Assignment) error) (*Assignment, error) {
	var out *Assignment
	err := s.store.Update(ctx, store.KindAssignment, id, func(raw []byte) (any, error) {
		var a Assignment
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		if err := fn(&a); err != nil {
			return nil, err
		}
		a.UpdatedAt = ledger.Now()
		out = &a
		return &a, nil
	})
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NotFound("assignment not found")
		}
		return nil, err
	}
	return out, nil
}
