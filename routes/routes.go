package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/log"
	"github.com/mbolis/quick-form/metrics"
	"github.com/mbolis/quick-form/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Logger, NoColor: true}),
		middleware.Recoverer,
		metrics.Middleware,
	)

	root.Mount("/api", apiRouter(app))
	root.Handle("/metrics", metrics.Handler(prometheus.DefaultGatherer))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	// respondents
	submitLimit := middlewares.NewRateLimiter(app.SubmitRate)
	api.Get(`/forms/{id}`, PublicGetForm(app))
	api.
		With(submitLimit.Handler, middlewares.OptionalAuth(app.TokenSecret)).
		Post(`/forms/{id}/responses`, PublicSubmitResponse(app))

	// form owners
	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.CookieAuth, middlewares.RequireAuth(app.TokenSecret))

		r.Post("/forms", CreateForm(app))
		r.Get("/forms", ListForms(app))
		r.Get(`/forms/{id}`, GetForm(app))
		r.Patch(`/forms/{id}`, UpdateFormFlags(app))
		r.Delete(`/forms/{id}`, DeleteForm(app))

		r.Put(`/forms/{id}/content`, SaveFormContent(app))
		r.Get(`/forms/{id}/responses`, GetFormResponses(app))
		r.Get(`/forms/{id}/analytics`, GetFormAnalytics(app))
	})

	api.Post("/signup", Signup(app))
	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}
