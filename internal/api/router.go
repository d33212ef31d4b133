package api

import (
	"fmt"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/danushadhitya/file-manager/docs"

	"github.com/danushadhitya/file-manager/internal/api/handlers"
	"github.com/danushadhitya/file-manager/internal/api/middleware"
	"github.com/rs/cors"
)

// SetupRouter wires the HTTP surface. Health and docs are public; everything
// under /api/v1 sits behind the access gate.
func SetupRouter(h *handlers.FileHandler, auth middleware.Authorizer, corsOpts cors.Options, log *zap.Logger) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(corsOpts)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	// ---------- PROTECTED ROUTES ----------
	fileMux := http.NewServeMux()
	fileMux.HandleFunc("POST /upload", h.Upload)
	fileMux.HandleFunc("GET /list", h.List)
	fileMux.HandleFunc("GET /download/{id}", h.Download)
	fileMux.HandleFunc("DELETE /delete/{id}", h.Delete)
	fileMux.HandleFunc("POST /delete/{id}", h.Delete)

	mainMux.Handle("/api/v1/",
		http.StripPrefix(
			"/api/v1",
			middleware.RequireAuth(auth)(fileMux),
		),
	)

	handler := c.Handler(mainMux)
	handler = middleware.Logger(log)(handler)
	return handler
}
