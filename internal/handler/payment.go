package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
)

// startPaymentResponse sends the participant to the gateway.
type startPaymentResponse struct {
	Intent      domain.PaymentIntent `json:"intent"`
	RedirectURI string               `json:"redirect_uri"`
}

// StartPayment handles POST /registrations/{token}/pay/{purpose}.
func (s *Server) StartPayment(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.registrationFromToken(w, r)
	if !ok {
		return
	}
	purpose := domain.PaymentPurpose(chi.URLParam(r, "purpose"))

	result, err := s.payments.Start(r.Context(), reg, purpose)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, startPaymentResponse{
		Intent:      result.Intent,
		RedirectURI: result.RedirectURI,
	})
}

// PaymentReturn handles GET /registrations/{token}/payments/{intentID}/return.
// The gateway redirects the participant here after the payment page; the
// webhook may not have landed yet, so the intent is synced against the
// gateway before answering.
func (s *Server) PaymentReturn(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.registrationFromToken(w, r)
	if !ok {
		return
	}
	intentID, err := urlUUID(r, "intentID")
	if err != nil {
		writeBadRequest(w, "invalid intent id")
		return
	}

	intent, err := s.payments.SyncFromGateway(r.Context(), reg, intentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, intent)
}

// PayUNotify handles POST /payu/notify, the gateway's server-to-server
// webhook. The raw body is needed for signature verification, and the
// response bodies are the gateway's contract, so the service's verdict goes
// out verbatim as text.
func (s *Server) PayUNotify(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "ERROR", http.StatusInternalServerError)
		return
	}

	result := s.payments.HandleNotification(r.Context(), rawBody, r.Header.Get("OpenPayu-Signature"))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(result.Status)
	w.Write([]byte(result.Body))
}
