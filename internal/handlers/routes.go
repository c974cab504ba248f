package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/potluck-signup/internal/auth"
	"github.com/gdg-garage/potluck-signup/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups the route handlers registered by RegisterRoutes.
type Handlers struct {
	Auth    *auth.AuthHandler
	Signup  *SignupHandler
	Feed    *FeedHandler
	Admin   *AdminHandler
	APIKeys *APIKeyHandler
}

func RegisterRoutes(r *chi.Mux, cfg *config.Config, h Handlers) huma.API {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-KEY"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(h.Auth.SessionMiddleware)

	// Initialize Huma API
	humaConfig := huma.DefaultConfig("Potluck Sign-up API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, humaConfig)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	huma.Get(api, "/potlucks/{slug}", h.Signup.HandleGetPotluck)
	huma.Get(api, "/potlucks/{slug}/board", h.Signup.HandleBoard)
	huma.Put(api, "/potlucks/{slug}/categories/{categoryID}/slots/{index}", h.Signup.HandleSaveSlot)
	huma.Delete(api, "/potlucks/{slug}/categories/{categoryID}/slots/{index}", h.Signup.HandleClearSlot)
	huma.Post(api, "/potlucks/{slug}/categories/{categoryID}/items", h.Signup.HandleAppendItem)
	huma.Put(api, "/potlucks/{slug}/categories/{categoryID}/items/{index}", h.Signup.HandleUpdateItem)
	huma.Delete(api, "/potlucks/{slug}/categories/{categoryID}/items/{index}", h.Signup.HandleRemoveItem)
	huma.Post(api, "/extract-item", h.Signup.HandleExtractItem)
	if h.Feed != nil {
		r.Get("/potlucks/{slug}/feed", h.Feed.HandleFeed)
	}

	// Auth routes
	r.Get("/auth/discord/login", h.Auth.HandleLogin)
	r.Get("/auth/discord/callback", h.Auth.HandleCallback)

	// Protected routes
	secured := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}}
	}
	huma.Get(api, "/me", h.Auth.HandleMe, secured)

	huma.Get(api, "/admin/potlucks", h.Admin.HandleListPotlucks, secured)
	huma.Post(api, "/admin/potlucks", h.Admin.HandleCreatePotluck, secured)
	huma.Get(api, "/admin/potlucks/{id}", h.Admin.HandleGetPotluck, secured)
	huma.Put(api, "/admin/potlucks/{id}", h.Admin.HandleUpdatePotluck, secured)
	huma.Delete(api, "/admin/potlucks/{id}", h.Admin.HandleDeletePotluck, secured)

	huma.Get(api, "/admin/potlucks/{id}/categories", h.Admin.HandleListBindings, secured)
	huma.Put(api, "/admin/potlucks/{id}/categories/{categoryID}", h.Admin.HandleSetBinding, secured)
	huma.Post(api, "/admin/potlucks/{id}/categories/{categoryID}/move", h.Admin.HandleMoveBinding, secured)
	huma.Put(api, "/admin/potlucks/{id}/categories/{categoryID}/order", h.Admin.HandleReorderRegistrations, secured)

	huma.Get(api, "/admin/potlucks/{id}/registrations", h.Admin.HandleListRegistrations, secured)
	huma.Delete(api, "/admin/potlucks/{id}/registrations/{registrationID}", h.Admin.HandleDeleteRegistration, secured)
	huma.Get(api, "/admin/potlucks/{id}/history", h.Admin.HandleHistory, secured)
	huma.Post(api, "/admin/potlucks/{id}/export", h.Admin.HandleExport, secured)

	huma.Get(api, "/admin/categories", h.Admin.HandleListCategories, secured)
	huma.Post(api, "/admin/categories", h.Admin.HandleCreateCategory, secured)
	huma.Put(api, "/admin/categories/{id}", h.Admin.HandleUpdateCategory, secured)
	huma.Delete(api, "/admin/categories/{id}", h.Admin.HandleDeleteCategory, secured)

	huma.Get(api, "/admin/api-keys", h.APIKeys.HandleList, secured)
	huma.Post(api, "/admin/api-keys", h.APIKeys.HandleCreate, secured)
	huma.Delete(api, "/admin/api-keys/{id}", h.APIKeys.HandleDelete, secured)

	return api
}
