package analytics

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
)

// Handler exposes read-only reporting endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GET /admin/stats
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.svc.Platform(c.Request().Context())
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// GET /admin/issues
func (h *Handler) OpenIssues(c echo.Context) error {
	items, err := h.svc.OpenIssues(c.Request().Context())
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "issues": items})
}

// GET /admin/reviews/disputed
func (h *Handler) DisputedReviews(c echo.Context) error {
	items, err := h.svc.DisputedReviews(c.Request().Context())
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "reviews": items})
}

// GET /admin/consultants/:id/report?from=&to=
func (h *Handler) ConsultantReport(c echo.Context) error {
	var w Window
	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from"})
		}
		w.From = t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to"})
		}
		w.To = t
	}

	report, err := h.svc.Consultant(c.Request().Context(), c.Param("id"), w)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "report": report})
}
