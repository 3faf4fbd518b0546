package routes

import (
	"github.com/go-chi/chi"

	"github.com/rifanet/rifa-services/internal/notifysvc/handlers"
	"github.com/rifanet/rifa-services/internal/notifysvc/ws"
)

func SetRoutes(r *chi.Mux, hub *ws.Hub) {
	h := handlers.NewHandler(hub)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthHandler)
		r.Get("/ws", h.HandleWebSocket)
	})
}
