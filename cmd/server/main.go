package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"paceline.app/community/internal/bootstrap"
	"paceline.app/community/internal/config"
	searchService "paceline.app/community/internal/modules/search/service"
	"paceline.app/community/internal/server"
	"paceline.app/community/pkg/database"
	"paceline.app/community/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.Connect(cfg)
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedCatalog(db); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	photos, err := storage.NewCloudinaryStorage(cfg.CloudinaryUploadFolder)
	if err != nil {
		log.Printf("⚠️ Photo uploads disabled: %v", err)
	}

	srv := server.NewServer(cfg, db, server.Deps{
		Redis:  database.ConnectRedis(cfg),
		Meili:  searchService.NewClient(cfg.MeiliSearchHost, cfg.MeiliMasterKey),
		Photos: photos,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
	log.Println("✅ Server stopped")
}
