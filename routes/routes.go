package routes

import (
	"net/http"

	"TeleClinic/config"
	"TeleClinic/controllers"
	"TeleClinic/handlers"
	"TeleClinic/kv"
	"TeleClinic/metrics"
	"TeleClinic/middlewares"
	"TeleClinic/repositories"
	"TeleClinic/services"
	"TeleClinic/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services is the wired service layer behind the HTTP surface.
type Services struct {
	Auth          services.AuthService
	Tokens        *services.TokenService
	Links         *services.LinkService
	Prescriptions *services.PrescriptionService
	Chat          *services.ChatService
}

// NewServices wires every service over the given repositories and key/value store.
func NewServices(
	repos *repositories.Repositories,
	sessions *utils.SessionIssuer,
	store kv.Store,
	mailer utils.Mailer,
	m *metrics.Metrics,
) *Services {
	return &Services{
		Auth: services.NewAuthService(
			repos,
			sessions,
			utils.NewRevocations(store),
			utils.NewResetCodes(store),
			mailer,
			m,
		),
		Tokens:        services.NewTokenService(repos, mailer, m),
		Links:         services.NewLinkService(repos, m),
		Prescriptions: services.NewPrescriptionService(repos, m),
		Chat:          services.NewChatService(repos, m),
	}
}

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(cfg *config.AppConfig, logger *zap.Logger, m *metrics.Metrics, svc *Services, checks ...controllers.HealthCheck) http.Handler {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.LoggingMiddleware(logger))
	router.Use(middlewares.MetricsMiddleware(m))
	router.Use(middlewares.CorsMiddleware(cfg.CorsOrigins))
	router.Use(middlewares.SecurityHeaders())
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	session := middlewares.TokenAuthMiddleware(svc.Auth)

	authController := controllers.NewAuthController(
		handlers.NewAuthHandler(svc.Auth),
		handlers.NewAdminHandler(svc.Tokens),
	)
	authController.RegisterRoutes(router, session)

	controllers.SetupClinicRoutes(
		router,
		session,
		handlers.NewDoctorHandler(svc.Links),
		handlers.NewPrescriptionHandler(svc.Prescriptions),
		handlers.NewChatHandler(svc.Chat),
	)

	controllers.SetupRootRoute(router, checks...)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	return router
}
