package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pharmasupply/m/internal/api"
	"pharmasupply/m/internal/config"
	"pharmasupply/m/internal/database"
	"pharmasupply/m/internal/migrations"
	"pharmasupply/m/internal/seed"
	"pharmasupply/m/internal/session"
	"pharmasupply/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	if cfg.MedicineCSV != "" {
		seed.LoadMedicines(db, cfg.MedicineCSV)
	}

	sessions := session.New(db, cfg.SessionTTL)
	stop := make(chan struct{})
	sessions.StartSweeper(cfg.SweepInterval, stop)

	handler := api.New(store.New(db), sessions)

	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: handler.Router(),
	}

	go func() {
		log.Printf("pharmacy supply chain server starting on :%s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stop)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
