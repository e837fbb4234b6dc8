// Package handlers provides HTTP handlers for broker connections and portfolio views.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/shubhams167/aura/internal/domain"
	"github.com/shubhams167/aura/internal/modules/brokers"
)

// maxBodyBytes bounds credential request bodies
const maxBodyBytes = 16 << 10

// Handler handles broker HTTP requests
type Handler struct {
	service *brokers.Service
	log     zerolog.Logger
}

// NewHandler creates a new brokers handler
func NewHandler(service *brokers.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "brokers").Logger(),
	}
}

// CredentialsRequest is the body of connect and update requests
type CredentialsRequest struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

// HandleListConnections returns the connection status of every broker
func (h *Handler) HandleListConnections(w http.ResponseWriter, r *http.Request) {
	res := h.service.ListConnections(r.Context())
	h.writeResult(w, res.Result, res)
}

// HandleConnect stores credentials for a broker
func (h *Handler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	broker, ok := h.brokerParam(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	res := h.service.Connect(r.Context(), broker, req.APIKey, req.APISecret)
	h.writeResult(w, res, res)
}

// HandleUpdateCredentials replaces the stored credentials for a broker
func (h *Handler) HandleUpdateCredentials(w http.ResponseWriter, r *http.Request) {
	broker, ok := h.brokerParam(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	res := h.service.Update(r.Context(), broker, req.APIKey, req.APISecret)
	h.writeResult(w, res, res)
}

// HandleDisconnect removes the stored credentials for a broker
func (h *Handler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	broker, ok := h.brokerParam(w, r)
	if !ok {
		return
	}

	res := h.service.Disconnect(r.Context(), broker)
	h.writeResult(w, res, res)
}

// HandleGetHoldings returns the valued holdings of a broker account
func (h *Handler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	broker, ok := h.brokerParam(w, r)
	if !ok {
		return
	}

	res := h.service.GetEnrichedHoldings(r.Context(), broker)
	h.writeResult(w, res.Result, res)
}

// HandleGetPositions returns the positions of a broker account
func (h *Handler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	broker, ok := h.brokerParam(w, r)
	if !ok {
		return
	}
	segment, ok := h.segmentParam(w, r)
	if !ok {
		return
	}

	res := h.service.GetPositions(r.Context(), broker, segment)
	h.writeResult(w, res.Result, res)
}

// HandleGetPortfolio returns holdings and positions fetched together.
// The status follows the holdings half; a failed positions half is reported in the body only.
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	broker, ok := h.brokerParam(w, r)
	if !ok {
		return
	}
	segment, ok := h.segmentParam(w, r)
	if !ok {
		return
	}

	res := h.service.GetPortfolio(r.Context(), broker, segment)
	h.writeResult(w, res.Holdings.Result, res)
}

func (h *Handler) brokerParam(w http.ResponseWriter, r *http.Request) (domain.BrokerKind, bool) {
	broker, err := domain.ParseBrokerKind(chi.URLParam(r, "broker"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Unknown broker", domain.KindInvalidInput)
		return "", false
	}
	return broker, true
}

func (h *Handler) segmentParam(w http.ResponseWriter, r *http.Request) (domain.Segment, bool) {
	segment, err := domain.ParseSegment(r.URL.Query().Get("segment"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Segment must be one of CASH, FNO or COMMODITY", domain.KindInvalidInput)
		return "", false
	}
	return segment, true
}

func (h *Handler) decodeCredentials(w http.ResponseWriter, r *http.Request) (CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", domain.KindInvalidInput)
		return req, false
	}
	return req, true
}

// statusFor maps a failure kind onto an HTTP status
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNone:
		return http.StatusOK
	case domain.KindNotAuthenticated:
		return http.StatusUnauthorized
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindNotConnected:
		return http.StatusNotFound
	case domain.KindBrokerAuth, domain.KindBrokerData:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeResult(w http.ResponseWriter, res brokers.Result, body interface{}) {
	status := http.StatusOK
	if !res.Success {
		status = statusFor(res.ErrorKind)
	}
	h.writeJSON(w, status, body)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, kind domain.ErrorKind) {
	h.writeJSON(w, status, brokers.Result{Success: false, Error: message, ErrorKind: kind})
}
