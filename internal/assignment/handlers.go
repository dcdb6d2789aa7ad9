package assignment

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/consulthub/internal/alerts"
	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
	"github.com/sudo-init-do/consulthub/internal/ledger"
	"github.com/sudo-init-do/consulthub/internal/payments"
	"github.com/sudo-init-do/consulthub/internal/project"
)

// ProjectLedger mirrors released milestone amounts onto the parent project's
// paid total. Wired to the project service in main.
type ProjectLedger interface {
	RecordPayment(ctx context.Context, projectID string, amount ledger.Amount) (*project.Project, error)
}

// Handler exposes the assignment state machine over HTTP.
type Handler struct {
	svc      *Service
	gateway  payments.Gateway
	projects ProjectLedger
}

func NewHandler(svc *Service, gateway payments.Gateway, projects ProjectLedger) *Handler {
	return &Handler{svc: svc, gateway: gateway, projects: projects}
}

// GetAssignment returns one assignment
func (h *Handler) GetAssignment(c echo.Context) error {
	a, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "assignment": a})
}

// ListMyAssignments returns the requester's assignments, by role
func (h *Handler) ListMyAssignments(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)

	var items []Assignment
	var err error
	if role == "consultant" {
		items, err = h.svc.ListByConsultant(c.Request().Context(), userID)
	} else {
		items, err = h.svc.ListByClient(c.Request().Context(), userID)
	}
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "assignments": items})
}

// Transition - move the assignment through its status graph
func (h *Handler) Transition(c echo.Context) error {
	actorID, ok := c.Get("user_id").(string)
	if !ok || actorID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}

	a, from, err := h.svc.Transition(c.Request().Context(), c.Param("id"), req.Status, actorID, req.Reason)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	_ = alerts.EnqueueAssignmentStatus(a.ID, a.ClientID, a.ConsultantID, from, a.Status, req.Reason)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "assignment": a})
}

// AddMilestone - client defines a payable milestone
func (h *Handler) AddMilestone(c echo.Context) error {
	var req MilestoneInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	a, err := h.svc.AddMilestone(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "assignment": a})
}

// StartMilestone - consultant begins work on a milestone
func (h *Handler) StartMilestone(c echo.Context) error {
	a, err := h.svc.StartMilestone(c.Request().Context(), c.Param("id"), c.Param("mid"))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "assignment": a})
}

// CompleteMilestone - consultant delivers a milestone
func (h *Handler) CompleteMilestone(c echo.Context) error {
	a, err := h.svc.CompleteMilestone(c.Request().Context(), c.Param("id"), c.Param("mid"))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "assignment": a})
}

// ApproveMilestone - client accepts the delivered milestone
func (h *Handler) ApproveMilestone(c echo.Context) error {
	approver, ok := c.Get("user_id").(string)
	if !ok || approver == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		Feedback string `json:"feedback"`
	}
	_ = c.Bind(&req)

	a, err := h.svc.ApproveMilestone(c.Request().Context(), c.Param("id"), c.Param("mid"), approver, req.Feedback)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "assignment": a})
}

// ReleaseMilestonePayment - admin releases escrowed funds for an approved
// milestone. The escrow ledger is the source of truth; a gateway intent is
// raised best-effort for settlement reconciliation.
func (h *Handler) ReleaseMilestonePayment(c echo.Context) error {
	adminID, ok := c.Get("user_id").(string)
	if !ok || adminID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	a, err := h.svc.ReleaseMilestonePayment(c.Request().Context(), c.Param("id"), c.Param("mid"))
	if err != nil {
		return apperrors.Respond(c, err)
	}

	i := a.MilestoneByID(c.Param("mid"))
	m := a.Milestones[i]
	if _, err := h.gateway.CreateIntent(c.Request().Context(), m.Amount, "", map[string]string{
		"assignment_id": a.ID,
		"milestone_id":  m.ID,
		"consultant_id": a.ConsultantID,
		"purpose":       "milestone_payout",
	}); err != nil {
		log.Printf("payout intent failed for assignment %s milestone %s: %v", a.ID, m.ID, err)
	}

	// The escrow ledger is authoritative; the project's paid total mirrors it
	// best-effort and is reconciled by admins if this write is lost.
	if h.projects != nil {
		if _, err := h.projects.RecordPayment(c.Request().Context(), a.ProjectID, m.Amount); err != nil {
			log.Printf("project ledger update failed for project %s: %v", a.ProjectID, err)
		}
	}

	_ = alerts.EnqueueMilestoneReleased(a.ID, m.ID, a.ConsultantID, m.Amount)
	_ = alerts.EnqueueAdminAlert(adminID, "info", "Milestone payment released: "+m.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"status":     "success",
		"assignment": a,
		"released":   m.Amount,
	})
}

// RefundEscrow - admin returns undisbursed funds to the client
func (h *Handler) RefundEscrow(c echo.Context) error {
	adminID, ok := c.Get("user_id").(string)
	if !ok || adminID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		Amount float64 `json:"amount"`
		Reason string  `json:"reason"`
	}
	if err := c.Bind(&req); err != nil || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}

	a, err := h.svc.RefundEscrow(c.Request().Context(), c.Param("id"), amountFromFloat(req.Amount), req.Reason, adminID)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "assignment": a})
}
