package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/JUP-iter/vidaryproject/internal/config"
	"github.com/JUP-iter/vidaryproject/internal/database"
	"github.com/JUP-iter/vidaryproject/internal/domain/auth"
	"github.com/JUP-iter/vidaryproject/internal/domain/detection"
	"github.com/JUP-iter/vidaryproject/internal/domain/share"
	jwtsvc "github.com/JUP-iter/vidaryproject/internal/pkg/jwt"
)

// Seeds a demo account for local development.
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

	users := auth.NewRepository(db)
	service := auth.NewService(users, jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL))

	ctx := context.Background()
	if exists, _ := users.ExistsByEmail(ctx, "demo@example.com"); exists {
		log.Println("demo user already present")
		return
	}

	if _, err := service.Register(ctx, "demo@example.com", "demo-password", "Demo User"); err != nil {
		log.Fatal(err)
	}
	log.Println("seeded demo@example.com / demo-password")
}
