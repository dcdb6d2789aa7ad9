package assignment

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
	"github.com/sudo-init-do/consulthub/internal/ledger"
)

func amountFromFloat(v float64) ledger.Amount {
	return ledger.FromFloat(v)
}

// LogTime - consultant logs a block of work
func (h *Handler) LogTime(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req TimeEntryInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	a, err := h.svc.LogTime(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "assignment": a})
}

type entryIDsRequest struct {
	EntryIDs []string `json:"entry_ids"`
}

// SubmitTimeEntries - consultant submits drafts for approval
func (h *Handler) SubmitTimeEntries(c echo.Context) error {
	var req entryIDsRequest
	if err := c.Bind(&req); err != nil || len(req.EntryIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "entry_ids required"})
	}
	a, err := h.svc.SubmitTimeEntries(c.Request().Context(), c.Param("id"), req.EntryIDs)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "assignment": a})
}

// ApproveTimeEntries - client approves submitted entries
func (h *Handler) ApproveTimeEntries(c echo.Context) error {
	approver, ok := c.Get("user_id").(string)
	if !ok || approver == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req entryIDsRequest
	if err := c.Bind(&req); err != nil || len(req.EntryIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "entry_ids required"})
	}
	a, err := h.svc.ApproveTimeEntries(c.Request().Context(), c.Param("id"), req.EntryIDs, approver)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "assignment": a})
}

// DisputeTimeEntries - client contests submitted entries
func (h *Handler) DisputeTimeEntries(c echo.Context) error {
	var req entryIDsRequest
	if err := c.Bind(&req); err != nil || len(req.EntryIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "entry_ids required"})
	}
	a, err := h.svc.DisputeTimeEntries(c.Request().Context(), c.Param("id"), req.EntryIDs)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "assignment": a})
}

// CreateIssue - either party raises an issue
func (h *Handler) CreateIssue(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)

	var req IssueInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.ReportedBy = userID
	req.ReporterRole = role

	a, err := h.svc.CreateIssue(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "assignment": a})
}

// StartIssue - admin takes an issue into progress
func (h *Handler) StartIssue(c echo.Context) error {
	a, err := h.svc.StartIssue(c.Request().Context(), c.Param("id"), c.Param("iid"))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "assignment": a})
}

// EscalateIssue - flag an issue for senior attention
func (h *Handler) EscalateIssue(c echo.Context) error {
	a, err := h.svc.EscalateIssue(c.Request().Context(), c.Param("id"), c.Param("iid"))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "assignment": a})
}

// ResolveIssue - admin closes an issue, terminal
func (h *Handler) ResolveIssue(c echo.Context) error {
	adminID, ok := c.Get("user_id").(string)
	if !ok || adminID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		Resolution string `json:"resolution"`
	}
	if err := c.Bind(&req); err != nil || req.Resolution == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "resolution required"})
	}

	a, err := h.svc.ResolveIssue(c.Request().Context(), c.Param("id"), c.Param("iid"), req.Resolution, adminID)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "assignment": a})
}

// AddIssueNote - admin appends a note, allowed after resolution
func (h *Handler) AddIssueNote(c echo.Context) error {
	adminID, ok := c.Get("user_id").(string)
	if !ok || adminID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&req); err != nil || req.Note == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "note required"})
	}

	a, err := h.svc.AddIssueNote(c.Request().Context(), c.Param("id"), c.Param("iid"), req.Note, adminID)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "assignment": a})
}
