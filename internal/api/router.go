package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/monitorpelanggan/billing-monitor/internal/api/handler"
	"github.com/monitorpelanggan/billing-monitor/internal/api/middleware"
	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
)

// multipartOverhead leaves room for form fields and boundaries around an
// upload of the maximum size.
const multipartOverhead = 1 << 20

// Deps are the services and connections the router wires into handlers.
type Deps struct {
	Log       zerolog.Logger
	Auth      ports.AuthService
	Customers ports.CustomerService
	Contracts ports.ContractService
	Users     ports.UserService

	Cookie         handler.CookieOptions
	MaxUploadBytes int64

	// Readiness probe targets.
	DB      *mongo.Database
	Redis   *redis.Client
	Storage handler.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("billing"))
	if d.MaxUploadBytes > 0 {
		e.Use(echomiddleware.BodyLimit(fmt.Sprintf("%dK", (d.MaxUploadBytes+multipartOverhead)/1024)))
	}

	// --- Ops (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.DB, d.Redis, d.Storage)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(d.Auth, d.Cookie)
	customerHandler := handler.NewCustomerHandler(d.Customers)
	billingHandler := handler.NewBillingHandler(d.Customers)
	contractHandler := handler.NewContractHandler(d.Contracts)
	userHandler := handler.NewUserHandler(d.Users)
	templateHandler := handler.NewTemplateHandler()

	authMW := middleware.Auth(d.Auth)
	managers := middleware.Managers()
	superadmin := middleware.RBAC(domain.RoleSuperAdmin)

	api := e.Group("/api")

	// --- Auth ---
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout, authMW)
	api.GET("/auth/me", authHandler.Me, authMW)

	// Everything below requires a session.
	g := api.Group("", authMW)

	// --- Pelanggan ---
	g.GET("/pelanggan", customerHandler.List)
	g.GET("/pelanggan/export", customerHandler.Export)
	g.POST("/pelanggan", customerHandler.Create, managers)
	g.PUT("/pelanggan/:id", customerHandler.Update, managers)
	g.DELETE("/pelanggan/:id", customerHandler.Delete, managers)
	g.POST("/pelanggan/bulk-upload", customerHandler.BulkUpload, managers)

	// --- Lookups, progress, change polling ---
	g.GET("/am-list", billingHandler.AMList)
	g.GET("/segmen-pic/:segment", billingHandler.SegmentPIC)
	g.GET("/segmen-list", billingHandler.SegmentList)
	g.GET("/progres-pembayaran", billingHandler.Progress)
	g.GET("/progres-pembayaran-per-am", billingHandler.ProgressPerAM, managers)
	g.GET("/last-update", billingHandler.LastUpdate)
	g.GET("/upload/template", templateHandler.Download)

	// --- Kontrak ---
	g.GET("/kontrak", contractHandler.List)
	g.GET("/kontrak/pdf-list", contractHandler.PDFList)
	g.POST("/kontrak", contractHandler.Create, managers)
	g.PUT("/kontrak/:id", contractHandler.Update, managers)
	g.DELETE("/kontrak/:id", contractHandler.Delete, managers)
	g.DELETE("/kontrak/bulk-delete", contractHandler.BulkDelete, managers)
	g.POST("/kontrak/bulk-upload", contractHandler.BulkUpload, managers)
	g.POST("/kontrak/:id/upload", contractHandler.Upload, managers)
	g.GET("/kontrak/:id/view", contractHandler.View)
	g.GET("/kontrak/:id/download", contractHandler.Download)

	// --- Users ---
	users := g.Group("/users", superadmin)
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	return e
}

// requestLogger feeds echo's request log into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			// Dashboards poll last-update every few seconds.
			return c.Path() == "/api/last-update" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
