package router

import (
	"log"
	"time"

	"yatube/internal/cache"
	"yatube/internal/handlers"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/repositories"
	"yatube/internal/storage"
	"yatube/internal/web"
	"yatube/pkg/config"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *gorm.DB, cfg *config.Config, pageCache cache.PageCache, uploader *storage.Uploader) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Tag{},
		&models.TagPost{},
		&models.Comment{},
		&models.Follow{},
		&models.Pet{},
		&models.Achievement{},
		&models.AchievementPet{},
		&models.Session{},
		&models.PasswordResetToken{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}

	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewGormUserRepository(db)
	postRepo := repositories.NewGormPostRepository(db)
	groupRepo := repositories.NewGormGroupRepository(db)
	commentRepo := repositories.NewGormCommentRepository(db)
	followRepo := repositories.NewGormFollowRepository(db)
	petRepo := repositories.NewGormPetRepository(db)
	achievementRepo := repositories.NewGormAchievementRepository(db)

	// --- Rate limiter for signup and pet writes ---
	limiter := middleware.NewIPRateLimiter(rate.Limit(1), 5)
	go func() {
		for {
			time.Sleep(10 * time.Minute)
			limiter.Cleanup()
		}
	}()

	// --- Token issuance ---
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	authGroup := e.Group("/api/v1/auth", middleware.RateLimitMiddleware(limiter))
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Public API (reads allowed without a token) ---
	api := e.Group("/api/v1")

	postHandler := handlers.NewPostHandler(postRepo, groupRepo, pageCache)
	postHandler.RegisterPublicPostRoutes(api)

	groupHandler := handlers.NewGroupHandler(groupRepo)
	groupHandler.RegisterGroupRoutes(api)

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo)
	commentHandler.RegisterPublicCommentRoutes(api)

	petHandler := handlers.NewPetHandler(petRepo)
	petHandler.RegisterPublicPetRoutes(api)

	achievementHandler := handlers.NewAchievementHandler(achievementRepo)
	achievementHandler.RegisterPublicAchievementRoutes(api)

	userHandler := handlers.NewUserHandler(userRepo, petRepo)
	userHandler.RegisterUserRoutes(api)

	// --- Protected API (mutations require a token) ---
	authed := e.Group("/api/v1", middleware.JWTAuthMiddleware(cfg.JWTSecret))

	postWrites := authed
	if cfg.LunchThrottle {
		postWrites = authed.Group("", middleware.LunchBreakThrottle())
	}
	postHandler.RegisterPostRoutes(postWrites)
	commentHandler.RegisterCommentRoutes(authed)

	followHandler := handlers.NewFollowHandler(followRepo, userRepo)
	followHandler.RegisterFollowRoutes(authed)

	feedHandler := handlers.NewFeedHandler(postRepo, followRepo)
	feedHandler.RegisterFeedRoutes(authed)

	petWrites := authed.Group("",
		middleware.WorkingHoursThrottle(),
		middleware.RateLimitMiddleware(limiter),
	)
	petHandler.RegisterPetRoutes(petWrites)
	achievementHandler.RegisterAchievementRoutes(authed)

	authHandler.RegisterProtectedAuthRoutes(authed)

	uploadHandler := handlers.NewUploadHandler(uploader)
	uploadHandler.RegisterUploadRoutes(authed)

	// --- Web surface (server-rendered, session cookies) ---
	webServer := web.NewServer(db, cfg, pageCache, uploader)
	webServer.RegisterRoutes(e)

	log.Println("All routes configured")
}
