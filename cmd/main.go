package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"crately/internal/caching"
	"crately/internal/handlers"
	"crately/internal/jobs"
	"crately/internal/jobs/background"
	"crately/internal/middleware"
	"crately/internal/repositories"
	"crately/internal/services"
	"crately/internal/store"
	"crately/pkg/database"
)

const version = "1.0.0"

func main() {
	ctx := context.Background()

	// Record store: postgres-backed JSONB documents, or an in-memory store
	// for development (STORE=memory).
	var db store.Store
	if os.Getenv("STORE") == "memory" {
		log.Println("WARNING: Using in-memory store; nothing will be persisted")
		db = store.NewMemoryStore()
	} else {
		databaseURL := os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			log.Fatal("DATABASE_URL environment variable is required (or set STORE=memory)")
		}
		pool, err := database.NewPool(ctx, databaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := store.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		db = store.NewPostgresStore(pool)
	}
	defer db.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generated secret for development
		log.Println("WARNING: JWT_SECRET not set; using a generated secret, sessions will not survive restarts")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if parsed, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = parsed
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	photoSvc, err := services.NewPhotoService(minioEndpoint, minioAccessKey, minioSecretKey, "crately-photos", useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize photo service: %v", err)
	}
	if err := photoSvc.EnsureBucket(ctx); err != nil {
		log.Printf("WARN: could not ensure photo bucket: %v", err)
	}

	// Create repositories
	containerRepo := repositories.NewContainerRepo(db)
	itemRepo := repositories.NewItemRepo(db)
	categoryRepo := repositories.NewCategoryRepo(db)
	userRepo := repositories.NewUserRepo(db)
	accessRepo := repositories.NewContainerAccessRepo(db)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	resolver := services.NewAccessResolver(containerRepo, accessRepo, cacheSvc)
	authSvc := services.NewAuthService(userRepo, cacheSvc, jwtSecret)
	containerSvc := services.NewContainerService(containerRepo, itemRepo, accessRepo, resolver, cacheSvc)
	itemSvc := services.NewItemService(itemRepo, containerRepo, categoryRepo, resolver)
	categorySvc := services.NewCategoryService(categoryRepo, itemRepo)
	userSvc := services.NewUserService(userRepo, accessRepo, authSvc, cacheSvc)
	shareSvc := services.NewShareService(accessRepo, containerRepo, userRepo, authSvc, cacheSvc)
	syncSvc := services.NewSyncService(containerRepo, itemRepo, categoryRepo, resolver)

	if err := services.SeedDefaults(ctx, userRepo, categoryRepo); err != nil {
		log.Fatalf("Failed to seed defaults: %v", err)
	}

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	containerHandlers := handlers.NewContainerHandlers(containerSvc, photoSvc)
	itemHandlers := handlers.NewItemHandlers(itemSvc, photoSvc)
	categoryHandlers := handlers.NewCategoryHandlers(categorySvc)
	userHandlers := handlers.NewUserHandlers(userSvc, authSvc)
	shareHandlers := handlers.NewShareHandlers(shareSvc)
	syncHandlers := handlers.NewSyncHandlers(syncSvc)
	healthHandlers := handlers.NewHealthHandlers(db, cacheSvc, version)

	// Background jobs
	scheduler, err := background.NewJobScheduler(
		jobs.NewStockAlertService(itemRepo, containerRepo),
		jobs.NewInviteSweeper(userRepo),
	)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop scheduler: %v", err)
		}
	}()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	api := e.Group("/api")

	// Authentication routes (no JWT required)
	api.POST("/login", authHandlers.Login)
	api.POST("/activate", authHandlers.Activate)

	// Protected routes: echo-jwt verifies the signature, Authentication
	// resolves the subject to an active user.
	protected := api.Group("")
	protected.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(jwtSecret),
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}))
	protected.Use(middleware.Authentication(authSvc))

	protected.GET("/me", authHandlers.Me)

	protected.GET("/sync", syncHandlers.Sync)
	protected.GET("/search", syncHandlers.Search)

	protected.GET("/containers", containerHandlers.ListContainers)
	protected.POST("/containers", containerHandlers.CreateContainer)
	protected.GET("/containers/:id", containerHandlers.GetContainer)
	protected.PATCH("/containers/:id", containerHandlers.UpdateContainer)
	protected.DELETE("/containers/:id", containerHandlers.DeleteContainer)
	protected.POST("/containers/:id/photo", containerHandlers.UploadContainerPhoto)
	protected.GET("/containers/:id/photo", containerHandlers.GetContainerPhoto)

	protected.GET("/containers/:id/access", shareHandlers.ListAccess)
	protected.POST("/containers/:id/access", shareHandlers.GrantAccess)
	protected.DELETE("/containers/:id/access/:userId", shareHandlers.RevokeAccess)

	protected.GET("/items", itemHandlers.ListItems)
	protected.GET("/items/low-stock", itemHandlers.ListLowStockItems)
	protected.POST("/items", itemHandlers.CreateItem)
	protected.GET("/items/:id", itemHandlers.GetItem)
	protected.PATCH("/items/:id", itemHandlers.UpdateItem)
	protected.DELETE("/items/:id", itemHandlers.DeleteItem)
	protected.POST("/items/:id/photo", itemHandlers.UploadItemPhoto)
	protected.GET("/items/:id/photo", itemHandlers.GetItemPhoto)

	protected.GET("/categories", categoryHandlers.ListCategories)
	protected.POST("/categories", categoryHandlers.CreateCategory)
	protected.GET("/categories/:id", categoryHandlers.GetCategory)
	protected.PATCH("/categories/:id", categoryHandlers.UpdateCategory)
	protected.DELETE("/categories/:id", categoryHandlers.DeleteCategory)

	protected.GET("/users", userHandlers.ListUsers)
	protected.POST("/users", userHandlers.CreateUser)
	protected.GET("/users/:id", userHandlers.GetUser)
	protected.PATCH("/users/:id", userHandlers.UpdateUser)
	protected.DELETE("/users/:id", userHandlers.DeleteUser)
	protected.POST("/users/:id/reset-invite", userHandlers.ResetInvite)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Crately server v%s starting on port %s", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%s", port)))
}
