package review

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/consulthub/internal/alerts"
	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
)

// Handler exposes review verification and the dispute cycle over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreateReview - client reviews a completed assignment
func (h *Handler) CreateReview(c echo.Context) error {
	reviewerID, ok := c.Get("user_id").(string)
	if !ok || reviewerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req CreateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.ReviewerID = reviewerID

	r, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "review": r})
}

// GetReview returns one review
func (h *Handler) GetReview(c echo.Context) error {
	r, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "review": r})
}

// GetConsultantReviews returns all reviews about a consultant
func (h *Handler) GetConsultantReviews(c echo.Context) error {
	items, err := h.svc.ListByConsultant(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "reviews": items})
}

// SubmitReview - reviewer finalizes a draft
func (h *Handler) SubmitReview(c echo.Context) error {
	r, err := h.svc.Submit(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "review": r})
}

// VerifyReview - admin verifies a submitted review, optionally recording a
// quality score
func (h *Handler) VerifyReview(c echo.Context) error {
	adminID, ok := c.Get("user_id").(string)
	if !ok || adminID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		QualityScore *float64 `json:"quality_score"`
		Notes        string   `json:"notes"`
	}
	_ = c.Bind(&req)

	r, err := h.svc.Verify(c.Request().Context(), c.Param("id"), adminID, req.QualityScore, req.Notes)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "review": r})
}

// PublishReview - admin publishes a verified review
func (h *Handler) PublishReview(c echo.Context) error {
	r, err := h.svc.Publish(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "review": r})
}

// DisputeReview - a party contests a review
func (h *Handler) DisputeReview(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil || req.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason required"})
	}

	r, err := h.svc.DisputeReview(c.Request().Context(), c.Param("id"), req.Reason, userID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	_ = alerts.EnqueueDisputeOpened(r.ID, userID, req.Reason)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "review": r})
}

// ResolveDispute - admin settles a disputed review; it returns to verified
func (h *Handler) ResolveDispute(c echo.Context) error {
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

	r, err := h.svc.ResolveDispute(c.Request().Context(), c.Param("id"), req.Resolution, adminID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	_ = alerts.EnqueueDisputeResolved(r.ID, adminID, req.Resolution)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "review": r})
}
