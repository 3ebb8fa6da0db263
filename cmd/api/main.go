package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pg "vet-clinic/internal/adapters/storage/postgres"
	"vet-clinic/internal/config"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/router"

	"github.com/joho/godotenv"
)

// @title Vet Clinic API
// @version 1.0
// @description Dueños, mascotas y citas de una clínica veterinaria, con validación de citas (fecha pasada, servicios por especie y conflictos con citas aceptadas).
// @BasePath /
func main() {
	// .env es opcional (solo desarrollo local)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("config error", map[string]any{"error": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App.Name,

		Development: cfg.IsLocal(),
	})
	if zl, ok := log.(*logger.ZapLogger); ok {
		defer func() { _ = zl.Sync() }()
	}

	var db *sql.DB
	if cfg.DB.DSN != "" {
		db, err = pg.Open(cfg.DB.DSN)
		if err != nil {
			log.Error("db connect failed", map[string]any{"error": err})
			os.Exit(1)
		}
		defer db.Close()

		if cfg.DB.Migrate {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err = pg.Migrate(ctx, db, cfg.Store.OwnerDeleteRule)
			cancel()
			if err != nil {
				log.Error("db migrate failed", map[string]any{"error": err})
				os.Exit(1)
			}
		}
		log.Info("storage: postgres", nil)
	} else {
		log.Info("storage: memory", map[string]any{"owner_delete_rule": string(cfg.Store.OwnerDeleteRule)})
	}

	r := router.NewRouter(router.OptionsFromConfig(cfg, db, log))

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "env": string(cfg.App.Env)})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"error": err})
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", map[string]any{"error": err})
	}
	log.Info("server stopped", nil)
}
