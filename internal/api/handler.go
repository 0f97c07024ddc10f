package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pharmasupply/m/domain"
	"pharmasupply/m/internal/session"
	"pharmasupply/m/internal/store"
)

type ctxKey string

const (
	ctxIdentity ctxKey = "identity"
	ctxToken    ctxKey = "token"
)

const sessionCookie = "sessionId"

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	sessions *session.Store
}

// New constructs a Handler.
func New(st *store.Store, sessions *session.Store) *Handler {
	return &Handler{store: st, sessions: sessions}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Session-ID"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", h.banner)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.login)
			r.Post("/register", h.register)
			r.Post("/logout", h.logout)
			r.Group(func(protected chi.Router) {
				protected.Use(h.authMiddleware)
				protected.Get("/me", h.me)
			})
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.authMiddleware)

			pr.Route("/users", func(r chi.Router) {
				r.Get("/", h.listUsers)
				r.Post("/", h.createUser)
				r.Get("/{id}", h.getUser)
				r.Put("/{id}", h.updateUser)
				r.Delete("/{id}", h.deleteUser)
			})

			pr.Route("/pharmacy", func(r chi.Router) {
				r.Get("/", h.listPharmacies)
				r.Get("/{id}", h.getPharmacy)
				r.Put("/{id}", h.updatePharmacy)
				r.Delete("/{id}", h.deletePharmacy)
			})

			pr.Route("/fournisseur", func(r chi.Router) {
				r.Get("/", h.listFournisseurs)
				r.Post("/", h.createFournisseur)
				r.Get("/{id}", h.getFournisseur)
				r.Put("/{id}", h.updateFournisseur)
				r.Delete("/{id}", h.deleteFournisseur)
			})

			pr.Route("/medicines", func(r chi.Router) {
				r.Get("/", h.listMedicines)
				r.Post("/", h.createMedicine)
				r.Get("/search", h.searchMedicines)
				r.Get("/{id}", h.getMedicine)
				r.Put("/{id}", h.updateMedicine)
				r.Delete("/{id}", h.deleteMedicine)
			})

			pr.Route("/commands", func(r chi.Router) {
				r.Get("/", h.listCommands)
				r.Post("/", h.createCommand)
				r.Get("/pending", h.pendingCommands)
				r.Get("/{id}", h.getCommand)
				r.Put("/{id}", h.updateCommand)
				r.Patch("/{id}", h.updateCommand)
				r.Patch("/{id}/accept", h.acceptCommand)
				r.Patch("/{id}/deliver", h.deliverCommand)
				r.Delete("/{id}", h.deleteCommand)
			})

			pr.Route("/stocks", func(r chi.Router) {
				r.Get("/", h.listStocks)
				r.Post("/", h.createStock)
				r.Get("/by-medicine/{id}", h.stocksByMedicine)
				r.Get("/{id}", h.getStock)
				r.Put("/{id}", h.updateStock)
				r.Patch("/{id}/add", h.addStock)
				r.Patch("/{id}/remove", h.removeStock)
				r.Delete("/{id}", h.deleteStock)
			})

			pr.Route("/demands", func(r chi.Router) {
				r.Get("/", h.listDemands)
				r.Post("/", h.createDemand)
				r.Get("/{id}", h.getDemand)
				r.Put("/{id}", h.updateDemand)
				r.Delete("/{id}", h.deleteDemand)
			})
		})
	})

	return r
}

func (h *Handler) banner(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"message":   "Pharmacy Supply Chain API",
		"status":    "Running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"endpoints": map[string]string{
			"auth":        "/api/auth",
			"users":       "/api/users",
			"pharmacy":    "/api/pharmacy",
			"medicines":   "/api/medicines",
			"commands":    "/api/commands",
			"fournisseur": "/api/fournisseur",
			"stocks":      "/api/stocks",
			"demands":     "/api/demands",
		},
	})
}

// Authentication helpers

// extractToken pulls the session token from the Authorization header,
// the X-Session-ID header, or the sessionId cookie, in that order.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	if token := r.Header.Get("X-Session-ID"); token != "" {
		return token
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "Session ID required")
			return
		}
		identity, err := h.sessions.Resolve(token)
		if err != nil {
			log.Printf("session resolve error: %v", err)
			respondError(w, http.StatusInternalServerError, "Authentication error")
			return
		}
		if identity == nil {
			respondError(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}
		ctx := context.WithValue(r.Context(), ctxIdentity, identity)
		ctx = context.WithValue(ctx, ctxToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFromContext(r *http.Request) *domain.Identity {
	if identity, ok := r.Context().Value(ctxIdentity).(*domain.Identity); ok {
		return identity
	}
	return nil
}

func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, role string) bool {
	identity := identityFromContext(r)
	if identity == nil || identity.Role != role {
		respondError(w, http.StatusForbidden, role+" access required")
		return false
	}
	return true
}

// Helpers

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

func urlID(r *http.Request) (int64, error) {
	return parseID(chi.URLParam(r, "id"))
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(dest)
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondData(w http.ResponseWriter, status int, message string, data any) {
	respondJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Success: false, Message: message})
}

// respondStoreError maps repository sentinel errors to HTTP statuses.
// Unexpected errors are logged and surfaced as a generic 500.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrConflict):
		respondError(w, http.StatusConflict, "Already exists")
	case errors.Is(err, store.ErrForbidden):
		respondError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, store.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, store.ErrInsufficientStock):
		respondError(w, http.StatusBadRequest, "Cannot remove more units than available in stock")
	case errors.Is(err, store.ErrInvalidTransition):
		respondError(w, http.StatusBadRequest, "Invalid command state for this operation")
	default:
		log.Printf("store error: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
