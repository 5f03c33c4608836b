package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"telegram-merchant-pay/internal/usecase"
)

// ----- Public payment link -----

func (s *Server) handleLinkVisit(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")

	disposition, redirectURL := s.links.Resolve(r.Context(), paymentID)
	switch disposition {
	case usecase.DispositionRedirect:
		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
	case usecase.DispositionNotFound:
		renderPage(w, http.StatusNotFound, "Link Not Found", "#F44336",
			"This payment link does not exist. Please check the link with the merchant.")
	case usecase.DispositionCompleted:
		renderPage(w, http.StatusOK, "Already Paid", "#4CAF50",
			"This payment has already been completed. No further action is needed.")
	case usecase.DispositionFailed:
		renderPage(w, http.StatusOK, "Payment Closed", "#F44336",
			"This payment attempt was not successful and the link is closed. Ask the merchant for a new link.")
	case usecase.DispositionExpired:
		renderPage(w, http.StatusGone, "Link Expired", "#FF9800",
			"This payment link has expired. Ask the merchant for a new one.")
	default:
		renderPage(w, http.StatusServiceUnavailable, "Temporarily Unavailable", "#F44336",
			"We can't reach the payment service right now. Please try again in a few minutes.")
	}
}

func renderPage(w http.ResponseWriter, status int, title, color, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>%s</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
        body { font-family: Arial, sans-serif; text-align: center; padding: 50px; }
        h1 { color: %s; }
    </style>
</head>
<body>
    <h1>%s</h1>
    <p>%s</p>
</body>
</html>`, title, color, title, body)
}

// ----- Gateway settlement webhook -----

type settlementPayload struct {
	OrderID string `json:"order_id"`
	RefID   string `json:"transaction_ref"`
	Status  string `json:"status"` // "paid" | anything else = failure
	Reason  string `json:"reason"`
}

func (s *Server) handleSettlementWebhook(w http.ResponseWriter, r *http.Request) {
	var payload settlementPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if payload.OrderID == "" {
		http.Error(w, "order_id is required", http.StatusBadRequest)
		return
	}

	result, err := s.settlement.Handle(r.Context(), usecase.Notification{
		PaymentID: payload.OrderID,
		RefID:     payload.RefID,
		Succeeded: payload.Status == "paid",
		Reason:    payload.Reason,
	})
	if err != nil {
		s.log.Error().Err(err).Str("order_id", payload.OrderID).Msg("settlement processing failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if result == usecase.SettlementNotFound {
		http.Error(w, "payment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"result": string(result)})
}

// ----- Admin API -----

type loginRequest struct {
	Secret string `json:"secret"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if s.adminKey == "" || req.Secret != s.adminKey {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.stats.Snapshot(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("stats snapshot failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}
