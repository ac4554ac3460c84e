package main

import (
	"context"
	"log"

	"ai-researcher-be/internal/bootstrap"
	"ai-researcher-be/internal/config"
	"ai-researcher-be/internal/server"
	"ai-researcher-be/internal/tracer"
	"ai-researcher-be/pkg/database"

	"github.com/fatih/color"
	"gorm.io/gorm"
)

func main() {
	color.Cyan("🔎 ai-researcher-be starting up")

	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	// The archive is optional: without a connection string the server still
	// researches, it just keeps no history.
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
		color.Green("✓ Run archive connected")
	} else {
		color.Yellow("⚠ DB_CONNECTION_STRING not set, research runs will not be archived")
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	// Note: In a larger app, we might use an errgroup or supervisor here
	if container.ArchiveService != nil {
		go func() {
			log.Println("Background: Starting Archive Consumer...")
			if err := container.ArchiveService.Consume(context.Background()); err != nil {
				log.Printf("Background Archive Consumer Error: %v", err)
			}
		}()
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
