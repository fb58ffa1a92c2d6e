package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/JUP-iter/vidaryproject/internal/config"
	"github.com/JUP-iter/vidaryproject/internal/database"
	"github.com/JUP-iter/vidaryproject/internal/domain/auth"
	"github.com/JUP-iter/vidaryproject/internal/domain/detection"
	"github.com/JUP-iter/vidaryproject/internal/domain/share"
	"github.com/JUP-iter/vidaryproject/internal/domain/upload"
	"github.com/JUP-iter/vidaryproject/internal/middleware"
	jwtsvc "github.com/JUP-iter/vidaryproject/internal/pkg/jwt"
	"github.com/JUP-iter/vidaryproject/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(&auth.User{}, &detection.Result{}, &share.Link{}); err != nil {
		log.Fatal(err)
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatal(err)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := auth.NewRepository(db)
	resultRepo := detection.NewRepository(db)
	shareRepo := share.NewRepository(db)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	detector := detection.NewClient(cfg.Detection)
	detectionService := detection.NewService(resultRepo, store, detector)
	detectionHandler := detection.NewHandler(detectionService)

	shareService := share.NewService(shareRepo, resultRepo)
	shareHandler := share.NewHandler(shareService)

	uploadHandler := upload.NewHandler(store)

	r := gin.Default()
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSOrigins...))

	// Streaming upload endpoint handles its own CORS and method checks;
	// middleware.CORS leaves its path alone.
	upload.RegisterRoutes(r, uploadHandler)

	v1 := r.Group("/api/v1")
	{
		auth.RegisterPublicRoutes(v1, authHandler)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			auth.RegisterProtectedRoutes(protected, authHandler)
			detection.RegisterRoutes(protected, detectionHandler)
			upload.RegisterAPIRoutes(protected, uploadHandler)
		}

		share.RegisterRoutes(v1, protected, shareHandler)
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
