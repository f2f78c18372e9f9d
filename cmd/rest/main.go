package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"givehub-be/internal/bootstrap"
	"givehub-be/internal/config"
	"givehub-be/internal/server"
	"givehub-be/internal/tracer"
	"givehub-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Workers
	log.Println("Background: Starting reconcile worker...")
	if err := container.ReconcileService.Consume(ctx); err != nil {
		log.Fatalf("Reconcile worker failed to start: %v", err)
	}

	log.Println("Background: Starting billing scheduler...")
	container.Scheduler.Start(ctx)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		_ = srv.GetApp().Shutdown()
	}()
	log.Fatal(srv.Run())
}
