package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"lanprime/config"
	"lanprime/internal/domain"
	"lanprime/internal/handler"
	"lanprime/internal/middleware"
	"lanprime/internal/repository"
	"lanprime/internal/service"
	"lanprime/pkg/mpesa"
	"lanprime/pkg/tmdb"
)

func Setup(cfg *config.Config, db *gorm.DB, cache *redis.Client) (*gin.Engine, *service.PaymentService) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	videoRepo := repository.NewVideoRepository(db)

	// Provider clients
	mpesaClient := mpesa.NewClient(mpesa.Config{
		BaseURL:        cfg.Mpesa.BaseURL,
		AuthURL:        cfg.Mpesa.AuthURL,
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		ShortCode:      cfg.Mpesa.ShortCode,
		Passkey:        cfg.Mpesa.Passkey,
		CallbackURL:    cfg.Mpesa.CallbackBaseURL + "/api/v1/payments/callback",
	})
	tmdbClient := tmdb.NewClient(cfg.TMDB.BaseURL, cfg.TMDB.AccessToken)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	subSvc := service.NewSubscriptionService(subRepo)
	paymentSvc := service.NewPaymentService(mpesaClient, paymentRepo, subSvc, cfg.Subscription.PremiumCutoff)
	catalogSvc := service.NewCatalogService(tmdbClient, cache, cfg.TMDB.CacheTTL)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, paymentRepo)
	callbackHandler := handler.NewPaymentCallbackHandler(paymentSvc)
	subHandler := handler.NewSubscriptionHandler(subSvc)
	categoryHandler := handler.NewCategoryHandler(categoryRepo)
	videoHandler := handler.NewVideoHandler(videoRepo)
	movieHandler := handler.NewMovieHandler(catalogSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	subMw := middleware.SubscriptionRequired(subRepo)
	adminMw := middleware.RequireRole(domain.RoleAdmin)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
		api.GET("/me", authMw, authHandler.Me)

		payments := api.Group("/payments")
		{
			payments.POST("/initiate", authMw, paymentHandler.Initiate)
			payments.GET("/status/:id", authMw, paymentHandler.Status)
			payments.GET("/history", authMw, paymentHandler.History)
			// invoked by the payment provider, not by end users
			payments.POST("/callback", callbackHandler.Handle)
		}

		subs := api.Group("/subscriptions")
		subs.Use(authMw)
		{
			subs.POST("", subHandler.Create)
			subs.GET("/active", subHandler.Active)
			subs.GET("/history", subHandler.History)
		}
		api.GET("/plans", authMw, subHandler.Plans)

		catalog := api.Group("")
		catalog.Use(authMw, subMw)
		{
			catalog.GET("/movies/trending", movieHandler.TrendingMovies)
			catalog.GET("/movies/discover", movieHandler.Discover)
			catalog.GET("/movies/search", movieHandler.Search)
			catalog.GET("/movies/:id", movieHandler.Details)
			catalog.GET("/tv/trending", movieHandler.TrendingTV)
			catalog.GET("/categories", categoryHandler.List)
			catalog.GET("/videos", videoHandler.List)
			catalog.GET("/videos/:id", videoHandler.Get)
		}

		admin := api.Group("")
		admin.Use(authMw, adminMw)
		{
			admin.POST("/categories", categoryHandler.Create)
			admin.PUT("/categories/:id", categoryHandler.Update)
			admin.DELETE("/categories/:id", categoryHandler.Delete)
			admin.POST("/videos", videoHandler.Create)
			admin.PUT("/videos/:id", videoHandler.Update)
			admin.DELETE("/videos/:id", videoHandler.Delete)
		}
	}

	return r, paymentSvc
}
