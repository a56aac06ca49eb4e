package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"valuefind/docs" //this is required to generate swagger docs
	"valuefind/internal/auth"
	"valuefind/internal/mailer"
	"valuefind/internal/notifications"
	"valuefind/internal/ordernum"
	"valuefind/internal/otp"
	"valuefind/internal/ratelimiter"
	"valuefind/internal/registry"
	"valuefind/internal/roles"
	"valuefind/internal/session"
	"valuefind/internal/store"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	registry      *registry.Registry
	session       *session.Selector
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	otp           *otp.Service
	push          notifications.PushSender
	orderNumbers  *ordernum.Generator
}

type config struct {
	addr        string
	db          dbConfig
	redis       redisConfig
	env         string
	apiURL      string
	mail        mailConfig
	frontendURL string
	auth        authConfig
	rateLimiter ratelimiter.Config
	orderSalt   string
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret          string
	refreshSecret   string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	otpExp    time.Duration
	fromEmail string
	mailtrap  mailTrapConfig
}

type mailTrapConfig struct {
	apiKey string
}

type dbConfig struct {
	addr        string
	maxConns    int
	maxIdleTime string
}

type redisConfig struct {
	addr     string
	password string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.With(app.RateLimitMiddleware).Post("/otp", app.sendOTPHandler)
			r.Get("/check-email", app.checkEmailHandler)
			r.Get("/check-phone", app.checkPhoneHandler)
			r.Post("/register", app.registerAccountHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
			r.With(app.RateLimitMiddleware).Post("/forgot-password", app.forgotPasswordHandler)
			r.Post("/reset-password", app.resetPasswordHandler)

			r.With(app.AuthTokenMiddleware).Post("/logout", app.logoutHandler)
		})

		r.Get("/categories", app.listCategoriesHandler)
		r.Get("/categories/{categoryID}/products", app.listProductsByCategoryHandler)
		r.Get("/territories/{pincode}", app.getTerritoryHandler)

		// Role registry and session role switching for the logged-in account
		r.Route("/roles", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/", app.getRolesHandler)
			r.Post("/", app.addRoleHandler)
			r.Post("/switch", app.switchRoleHandler)
			r.Get("/active", app.activeRoleHandler)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Put("/", app.updateProfileHandler)
			r.Post("/avatar", app.uploadAvatarHandler)
		})

		r.Route("/push-tokens", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.registerPushTokenHandler)
			r.Delete("/", app.removePushTokenHandler)
		})

		r.Route("/customer", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Use(app.RequireRoles(roles.Customer))
			r.Post("/orders", app.createOrderHandler)
			r.Get("/orders", app.listMyOrdersHandler)
		})

		r.Route("/store", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Use(app.RequireRoles(roles.StoreOwner))
			r.Get("/products", app.listMyProductsHandler)
			r.Post("/products", app.createProductHandler)
			r.Put("/products/{productID}", app.updateProductHandler)
			r.Post("/products/{productID}/images", app.uploadProductImageHandler)
			r.Patch("/orders/{orderID}/status", app.updateOrderStatusHandler)
		})

		r.Route("/delivery", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Use(app.RequireRoles(roles.DeliveryPartner))
			r.Get("/orders", app.listDeliveryOrdersHandler)
			r.Patch("/orders/{orderID}/status", app.updateOrderStatusHandler)
		})

		r.Route("/operator", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Use(app.RequireRoles(roles.TerritoryOperator))
			r.Get("/territories", app.listMyTerritoriesHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Use(app.RequireRoles(roles.PlatformAdmin))
			r.Get("/verifications", app.adminListVerificationsHandler)
			r.Get("/accounts/{accountID}/roles", app.adminGetAccountRolesHandler)
			r.Put("/accounts/{accountID}/roles/{roleKind}/verification", app.adminSetVerificationHandler)
			r.Get("/territories", app.adminListTerritoriesHandler)
			r.Post("/territories", app.adminCreateTerritoryHandler)
			r.Put("/territories/{pincode}", app.adminUpdateTerritoryHandler)
			r.Put("/territories/{pincode}/operator", app.adminAssignOperatorHandler)
			r.Post("/categories", app.adminCreateCategoryHandler)
			r.Put("/categories/{categoryID}", app.adminUpdateCategoryHandler)
			r.Delete("/categories/{categoryID}", app.adminDeleteCategoryHandler)
			r.Patch("/orders/{orderID}/status", app.updateOrderStatusHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

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

// healthCheckHandler godoc
//
//	@Summary		Health check
//	@Description	Reports service health and version
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
	}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
