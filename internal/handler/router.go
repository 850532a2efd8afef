package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	webhookHandler "github.com/bashoori/leadbot/internal/handler/webhook"
	"github.com/bashoori/leadbot/internal/service/conversation"
)

// NewRouter wires HTTP routes to the conversation core.
func NewRouter(verifyToken string, engine *conversation.Engine) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	webhookHandler.New(verifyToken, engine).RegisterRoutes(r)

	return r
}
