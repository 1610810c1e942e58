package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // register UI dev server
	"http://localhost:5173", // vite
}

// CORS returns middleware that applies the API's allowed origin policy. An
// empty origins list falls back to the local development origins.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-POS-Token", "Idempotency-Key", "X-Requested-With", "X-Request-Id"},
		ExposedHeaders:   []string{"X-POS-Token", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
