package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers broker connection and portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/brokers", func(r chi.Router) {
		r.Get("/", h.HandleListConnections) // Connection status of every broker

		r.Route("/{broker}", func(r chi.Router) {
			r.Post("/connect", h.HandleConnect)
			r.Put("/credentials", h.HandleUpdateCredentials)
			r.Delete("/", h.HandleDisconnect)

			r.Get("/holdings", h.HandleGetHoldings)   // Holdings valued at live prices
			r.Get("/positions", h.HandleGetPositions) // ?segment=CASH|FNO|COMMODITY
			r.Get("/portfolio", h.HandleGetPortfolio) // Holdings and positions in one call
		})
	})
}
