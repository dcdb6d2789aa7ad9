package project

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/sudo-init-do/consulthub/internal/errors"
	"github.com/sudo-init-do/consulthub/internal/ledger"
)

// FundEscrow - client places funds against the project. A payment intent is
// created with the gateway; the escrow total is recorded immediately and
// reconciled against gateway settlement separately.
func (h *Handler) FundEscrow(c echo.Context) error {
	clientID, ok := c.Get("user_id").(string)
	if !ok || clientID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	}
	if err := c.Bind(&req); err != nil || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}
	amount := amountFromFloat(req.Amount)

	p, err := h.svc.FundEscrow(c.Request().Context(), c.Param("id"), amount)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	intent, err := h.gateway.CreateIntent(c.Request().Context(), amount, req.Currency, map[string]string{
		"project_id": p.ID,
		"client_id":  clientID,
		"purpose":    "escrow_funding",
	})
	if err != nil {
		// Escrow stays recorded; reconciliation picks up the missing intent
		log.Printf("escrow funding intent failed for project %s: %v", p.ID, err)
		return c.JSON(http.StatusOK, echo.Map{"status": "success", "project": p})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":      "success",
		"project":     p,
		"intent_id":   intent.ID,
		"payment_url": intent.PaymentURL,
	})
}

func amountFromFloat(v float64) ledger.Amount {
	return ledger.FromFloat(v)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
