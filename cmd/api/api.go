package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"rentora/internal/checkout"
	"rentora/internal/flow"
	"rentora/internal/gateway"
	"rentora/internal/marketplace"
	"rentora/internal/media"
	"rentora/internal/ratelimiter"
)

type application struct {
	config      config
	logger      *zap.SugaredLogger
	flows       flow.Store
	market      *marketplace.Client
	gateways    *gateway.Manager
	spool       *media.Spool
	refs        *gateway.ReferenceGenerator
	ratelimiter *ratelimiter.FixedWindowRateLimiter
}

type config struct {
	addr        string
	env         string
	frontendURL string
	marketplace marketplaceConfig
	auth        authConfig
	redis       redisConfig
	media       mediaConfig
	sessionTTL  time.Duration
	ratelimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
}

type basicConfig struct {
	user string
	pass string
}

type marketplaceConfig struct {
	baseURL string
	timeout time.Duration
}

type redisConfig struct {
	addr     string
	password string
	db       int
}

type mediaConfig struct {
	spoolDir      string
	sweepInterval time.Duration
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/checkout", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.openCheckoutHandler)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", app.getCheckoutHandler)
				r.Delete("/", app.deleteCheckoutHandler)
				r.Get("/plans", app.checkoutPlansHandler)
				r.Post("/plan", app.selectPlanHandler)
				r.Get("/gateways", app.checkoutGatewaysHandler)
				r.Post("/gateway", app.selectGatewayHandler)
				r.Post("/initiate", app.initiateCheckoutHandler)
				r.Post("/return", app.checkoutReturnHandler)
			})
		})

		r.Route("/listings", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.openListingHandler)

			r.Route("/{draftID}", func(r chi.Router) {
				r.Get("/", app.getListingHandler)
				r.Delete("/", app.deleteListingHandler)
				r.Put("/fields", app.updateFieldsHandler)
				r.Post("/next", app.nextStepHandler)
				r.Post("/prev", app.prevStepHandler)
				r.Post("/submit", app.submitListingHandler)

				r.Route("/media/{kind}/{slot}", func(r chi.Router) {
					r.Post("/", app.uploadMediaHandler)
					r.Get("/preview", app.previewMediaHandler)
					r.Delete("/", app.deleteMediaHandler)
				})
			})
		})

		r.With(app.AuthTokenMiddleware).Get("/apartment-types", app.getApartmentTypesHandler)
		r.With(app.AuthTokenMiddleware).Get("/subscriptions", app.getSubscriptionsHandler)
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}

// gatewayCatalog adapts the manager's registry into the catalog a new
// checkout session carries.
func (app *application) gatewayCatalog() []checkout.GatewayInfo {
	infos := app.gateways.Catalog()
	out := make([]checkout.GatewayInfo, 0, len(infos))
	for _, info := range infos {
		out = append(out, checkout.GatewayInfo{Slug: info.Slug, Title: info.Title, Active: info.Active})
	}
	return out
}
