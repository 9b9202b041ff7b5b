package api

import (
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/dinnerd/dinnerd/internal/api/handler"
	"github.com/dinnerd/dinnerd/internal/api/middleware"
	"github.com/dinnerd/dinnerd/internal/auth"
	"github.com/dinnerd/dinnerd/internal/livesync"
	"github.com/dinnerd/dinnerd/internal/menu"
	"github.com/dinnerd/dinnerd/internal/message"
	"github.com/dinnerd/dinnerd/internal/recipe"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger       handler.DBPinger
	Version        string
	AuthService    *auth.Service
	UserRepo       auth.UserRepository
	RecipeRepo     recipe.Repository
	MenuService    *menu.Service
	MenuHub        *livesync.Hub[livesync.MenuUpdate]
	MessageService *message.Service
	MessageHub     *livesync.Hub[livesync.MessageUpdate]
	OpenAPISpec    []byte
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	profileHandler := handler.NewProfileHandler(deps.UserRepo)
	recipeHandler := handler.NewRecipeHandler(deps.RecipeRepo)
	menuHandler := handler.NewMenuHandler(deps.MenuService, deps.RecipeRepo)
	statsHandler := handler.NewStatsHandler(menuHandler)
	basketHandler := handler.NewBasketHandler(menuHandler)
	watchHandler := handler.NewWatchHandler(deps.MenuService, deps.MenuHub)
	messageHandler := handler.NewMessageHandler(deps.MessageService)
	messageWatchHandler := handler.NewMessageWatchHandler(deps.MessageService, deps.MessageHub)
	userHandler := handler.NewUserHandler(deps.AuthService, deps.UserRepo)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profileHandler.Get)
			r.Put("/invite-code", profileHandler.SetInviteCode)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Post("/", recipeHandler.Create)
			r.Get("/", recipeHandler.List)
			r.Get("/{id}", recipeHandler.GetByID)
			r.Patch("/{id}", recipeHandler.Update)
			r.Delete("/{id}", recipeHandler.Delete)
		})

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", menuHandler.Get)
			r.Put("/", menuHandler.Save)
			r.Patch("/days/{day}/meals/{meal}", menuHandler.UpdateSlot)
			r.Get("/today", menuHandler.Today)
			r.Get("/stats", statsHandler.ServeHTTP)
			r.Get("/basket", basketHandler.ServeHTTP)
			r.Get("/watch", watchHandler.ServeHTTP)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", messageHandler.List)
			r.Post("/", messageHandler.Post)
			r.Get("/watch", messageWatchHandler.ServeHTTP)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireSuperuser())
			r.Post("/", userHandler.Create)
			r.Get("/", userHandler.List)
			r.Delete("/{id}", userHandler.Delete)
		})
	})

	return r
}
