package api

import (
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api/handler"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/api/middleware"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/auth"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/page"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/product"
	"github.com/Daydreamofpeach/multi-tenant-starter-template/internal/team"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	AuthService  *auth.Service
	UserRepo     auth.UserRepository
	TeamService  *team.Service
	TeamRepo     team.Repository
	ProductRepo  product.Repository
	PageRepo     page.Repository
	DBPinger     handler.DBPinger
	Version      string
	CookieSecure bool
	BaseDomain   string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Subdomain(deps.BaseDomain))

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.UserRepo, deps.TeamRepo, deps.CookieSecure)
	teamHandler := handler.NewTeamHandler(deps.TeamService, deps.TeamRepo, deps.UserRepo)
	productHandler := handler.NewProductHandler(deps.ProductRepo, deps.TeamRepo)
	pageHandler := handler.NewPageHandler(deps.PageRepo, deps.TeamRepo, deps.AuthService)

	r.Post("/signup", authHandler.SignUp)
	r.Post("/signin", authHandler.SignIn)
	r.Post("/signout", authHandler.SignOut)

	r.Get("/subdomain", pageHandler.Subdomain)
	r.Get("/subdomain/{subdomain}", pageHandler.Subdomain)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService))

		r.Post("/signout/all", authHandler.SignOutAll)

		r.Get("/me", authHandler.Me)
		r.Patch("/me", authHandler.UpdateProfile)

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", teamHandler.Create)
			r.Get("/{id}", teamHandler.Get)
			r.Put("/{id}", teamHandler.Update)
			r.Delete("/{id}", teamHandler.Delete)
			r.Get("/{id}/members", teamHandler.ListMembers)
			r.Post("/{id}/members", teamHandler.AddMember)
			r.Put("/{id}/members", teamHandler.SetMemberRole)
			r.Delete("/{id}/members", teamHandler.RemoveMember)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Post("/", productHandler.Create)
			r.Get("/{id}", productHandler.Get)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
		})

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", pageHandler.List)
			r.Post("/", pageHandler.Create)
			r.Get("/{id}", pageHandler.Get)
			r.Put("/{id}", pageHandler.Update)
			r.Delete("/{id}", pageHandler.Delete)
		})
	})

	return r
}
