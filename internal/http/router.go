package http

import (
	"net/http"

	"levelup/internal/auth"
	"levelup/internal/category"
	"levelup/internal/config"
	"levelup/internal/goal"
	"levelup/internal/http/handler"
	mw "levelup/internal/http/middleware"
	"levelup/internal/onboarding"
	"levelup/internal/quote"
	"levelup/internal/user"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc, Log: log}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	userSvc := &user.Service{DB: db}
	userH := &handler.UserHandler{Svc: userSvc, Log: log}
	r.With(auth.RequireAuth(jwtSvc)).Get("/me", userH.Me)

	catH := &handler.CategoryHandler{Svc: &category.Service{DB: db}, Log: log}
	r.Get("/categories", catH.List)

	quoteH := &handler.QuoteHandler{Svc: &quote.Service{DB: db}, Log: log, DefaultLang: cfg.DefaultLang}
	r.Get("/quotes/today", quoteH.Today)

	goalSvc := &goal.Service{DB: db}
	tplH := &handler.GoalTemplateHandler{Svc: goalSvc, Log: log}
	r.Route("/goal-templates", func(r chi.Router) {
		r.Use(auth.MaybeAuth(jwtSvc))

		r.Get("/", tplH.List)
		r.Get("/{id}", tplH.Get)
		r.With(auth.RequireAuth(jwtSvc)).Post("/", tplH.Create)
		r.With(auth.RequireAuth(jwtSvc)).Put("/{id}/enabled", tplH.SetEnabled)
	})

	onbH := &handler.OnboardingHandler{Svc: &onboarding.Service{DB: db}, Log: log, DefaultLang: cfg.DefaultLang}
	r.Route("/onboarding", func(r chi.Router) {
		r.Use(auth.MaybeAuth(jwtSvc))

		r.Get("/questions", onbH.Questions)
		r.Post("/answers", onbH.SubmitAnswers)
	})

	goalH := &handler.UserGoalHandler{Svc: goalSvc, Log: log}
	r.Route("/users", func(r chi.Router) {
		r.Use(auth.MaybeAuth(jwtSvc))

		r.Get("/{id}", userH.Get)
		r.With(auth.RequireAuth(jwtSvc)).Patch("/{id}", userH.Patch)
		r.Get("/{id}/priorities", userH.Priorities)
		r.With(auth.RequireAuth(jwtSvc)).Put("/{id}/priorities/order", userH.ReorderPriorities)

		r.Get("/{id}/user-goals", goalH.List)
		r.Post("/{id}/user-goals", goalH.Add)
		r.Patch("/{id}/user-goals/{userGoalId}/complete", goalH.Complete)
		r.Patch("/{id}/user-goals/{userGoalId}/schedule", goalH.Schedule)
		r.Patch("/{id}/user-goals/{userGoalId}/archive", goalH.Archive)
		r.Patch("/{id}/user-goals/{userGoalId}/unarchive", goalH.Unarchive)
		r.Delete("/{id}/user-goals/{userGoalId}", goalH.Delete)
	})

	return r
}
