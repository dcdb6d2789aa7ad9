package project

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/consulthub/internal/alerts"
	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
	"github.com/sudo-init-do/consulthub/internal/payments"
)

// Handler exposes project lifecycle and matching over HTTP.
type Handler struct {
	svc     *Service
	gateway payments.Gateway
}

func NewHandler(svc *Service, gateway payments.Gateway) *Handler {
	return &Handler{svc: svc, gateway: gateway}
}

// CreateProject - client posts a new draft project
func (h *Handler) CreateProject(c echo.Context) error {
	clientID, ok := c.Get("user_id").(string)
	if !ok || clientID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req CreateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	p, err := h.svc.Create(c.Request().Context(), clientID, req)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "project": p})
}

// GetProject returns one project
func (h *Handler) GetProject(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "project": p})
}

// ListMyProjects returns the requester's projects
func (h *Handler) ListMyProjects(c echo.Context) error {
	clientID, ok := c.Get("user_id").(string)
	if !ok || clientID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.svc.ListByClient(c.Request().Context(), clientID)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "projects": items})
}

// UpdateStatus - move a project along its lifecycle
func (h *Handler) UpdateStatus(c echo.Context) error {
	actorID, _ := c.Get("user_id").(string)

	var req struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}

	p, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status, actorID, req.Reason)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "project": p})
}

// SubmitProposal - consultant bids on a posted project
func (h *Handler) SubmitProposal(c echo.Context) error {
	consultantID, ok := c.Get("user_id").(string)
	if !ok || consultantID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req ProposalInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.ConsultantID = consultantID

	p, err := h.svc.SubmitProposal(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "project": p})
}

// ReviewProposal - client moves a proposal through review
func (h *Handler) ReviewProposal(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}

	p, err := h.svc.ReviewProposal(c.Request().Context(), c.Param("id"), c.Param("pid"), req.Status, req.Reason)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "project": p})
}

// AssignConsultant - client accepts one proposal; every other open proposal
// is rejected and notified
func (h *Handler) AssignConsultant(c echo.Context) error {
	updatedBy, ok := c.Get("user_id").(string)
	if !ok || updatedBy == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		ConsultantID string `json:"consultant_id"`
		AssignInput
	}
	if err := c.Bind(&req); err != nil || req.ConsultantID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "consultant_id required"})
	}

	p, err := h.svc.AssignConsultant(c.Request().Context(), c.Param("id"), req.ConsultantID, req.AssignInput, updatedBy)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	// Notify every decided proposal (best-effort)
	for _, prop := range p.Proposals {
		switch prop.Status {
		case ProposalAccepted:
			_ = alerts.EnqueueProposalDecided(p.ID, prop.ConsultantID, "accepted", "")
		case ProposalRejected:
			_ = alerts.EnqueueProposalDecided(p.ID, prop.ConsultantID, "rejected", prop.RejectionReason)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":        "success",
		"project":       p,
		"assignment_id": p.AssignedConsultant.AssignmentID,
	})
}

// AddMilestone - client adds a planning milestone
func (h *Handler) AddMilestone(c echo.Context) error {
	var req struct {
		Title   string  `json:"title"`
		Amount  float64 `json:"amount"`
		DueDate string  `json:"due_date"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	due, err := parseDate(req.DueDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid due_date"})
	}

	p, err := h.svc.AddMilestone(c.Request().Context(), c.Param("id"), req.Title, amountFromFloat(req.Amount), due)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "project": p})
}
