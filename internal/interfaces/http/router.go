package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	licenseUsecases "keygate/internal/application/license/usecases"
	quotaUsecases "keygate/internal/application/quota/usecases"
	"keygate/internal/domain/shared/events"
	"keygate/internal/infrastructure/assets"
	"keygate/internal/infrastructure/auth"
	"keygate/internal/infrastructure/config"
	"keygate/internal/infrastructure/ratelimit"
	"keygate/internal/infrastructure/repository"
	"keygate/internal/interfaces/http/handlers"
	"keygate/internal/interfaces/http/middleware"
	"keygate/internal/shared/authorization"
	"keygate/internal/shared/logger"
	"keygate/internal/shared/utils"
)

// Router represents the HTTP router configuration
type Router struct {
	engine          *gin.Engine
	validateHandler *handlers.ValidateHandler
	licenseHandler  *handlers.LicenseHandler
	quotaHandler    *handlers.QuotaHandler
	authMiddleware  *middleware.AuthMiddleware
	rateLimiter     *middleware.IPRateLimiter
	db              *gorm.DB
	logger          logger.Interface
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(
	db *gorm.DB,
	redisClient *redis.Client,
	dispatcher events.EventPublisher,
	cfg *config.Config,
	log logger.Interface,
) *Router {
	engine := gin.New()

	licenseRepo := repository.NewLicenseRepository(db, log)
	ledger := repository.NewQuotaRepository(db, log)
	roles := authorization.NewDirectory(cfg.Roles.Admins, cfg.Roles.Issuers)
	locator := assets.NewLocator(&cfg.Assets, log)

	validateUC := licenseUsecases.NewValidateLicenseUseCase(
		licenseRepo, locator, dispatcher, cfg.License.ValidateTimeout(), log)
	issueUC := licenseUsecases.NewIssueLicenseUseCase(
		licenseRepo, ledger, roles, dispatcher,
		cfg.License.Duration(), cfg.License.StoreTimeout(), log)
	revokeUC := licenseUsecases.NewRevokeLicenseUseCase(
		licenseRepo, roles, dispatcher, cfg.License.StoreTimeout(), log)
	getLicenseUC := licenseUsecases.NewGetLicenseUseCase(
		licenseRepo, roles, cfg.License.StoreTimeout(), log)
	setQuotaUC := quotaUsecases.NewSetQuotaUseCase(
		ledger, roles, dispatcher, cfg.License.StoreTimeout(), log)
	getQuotaUC := quotaUsecases.NewGetQuotaUseCase(
		ledger, roles, cfg.License.StoreTimeout(), log)

	jwtService := auth.NewJWTService(cfg.Auth.TokenSecret, cfg.Auth.TokenExpHours)

	var rateLimiter *middleware.IPRateLimiter
	if cfg.RateLimit.Enabled && redisClient != nil {
		rateLimiter = middleware.NewIPRateLimiter(
			ratelimit.NewRedisRateLimiter(redisClient),
			ratelimit.Limit{
				Requests:   cfg.RateLimit.RequestsPerWindow,
				WindowSecs: cfg.RateLimit.WindowSecs,
			},
			log,
		)
	}

	return &Router{
		engine:          engine,
		validateHandler: handlers.NewValidateHandler(validateUC, log),
		licenseHandler:  handlers.NewLicenseHandler(issueUC, revokeUC, getLicenseUC, log),
		quotaHandler:    handlers.NewQuotaHandler(setQuotaUC, getQuotaUC, log),
		authMiddleware:  middleware.NewAuthMiddleware(jwtService, log),
		rateLimiter:     rateLimiter,
		db:              db,
		logger:          log,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Recovery())

	r.engine.GET("/health", r.healthCheck)

	validate := r.engine.Group("/")
	if r.rateLimiter != nil {
		validate.Use(r.rateLimiter.Limit())
	}
	validate.POST("/get_script", r.validateHandler.Validate)

	api := r.engine.Group("/api")
	api.Use(r.authMiddleware.RequireAuth())
	{
		api.POST("/licenses", r.licenseHandler.Issue)
		api.GET("/licenses/:principal_id", r.licenseHandler.Get)
		api.DELETE("/licenses/:principal_id", r.licenseHandler.Revoke)

		api.PUT("/quotas/:issuer_id", r.quotaHandler.Set)
		api.GET("/quotas/:issuer_id", r.quotaHandler.Get)
	}
}

func (r *Router) healthCheck(c *gin.Context) {
	sqlDB, err := r.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "ok", nil)
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
