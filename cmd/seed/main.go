package main

import (
	"context"
	"os"
	"time"

	"vet-clinic/internal/platform/httpclient"
	"vet-clinic/internal/platform/logger"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Carga datos de demo contra una API levantada (cmd/api).
type seedConfig struct {
	BaseURL string        `env:"SEED_BASE_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"SEED_TIMEOUT" envDefault:"10s"`
}

type idResponse struct {
	ID string `json:"id"`
}

func main() {
	_ = godotenv.Load()
	log := logger.NewFromEnv().With(map[string]any{"cmd": "seed"})

	var cfg seedConfig
	if err := env.Parse(&cfg); err != nil {
		log.Error("config error", map[string]any{"error": err})
		os.Exit(1)
	}

	c, err := httpclient.New(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		log.Error("client error", map[string]any{"error": err})
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := seed(ctx, c, log); err != nil {
		log.Error("seed failed", map[string]any{"error": err})
		os.Exit(1)
	}
	log.Info("seed done", map[string]any{"base_url": cfg.BaseURL})
}

func seed(ctx context.Context, c *httpclient.Client, log logger.Logger) error {
	var ana, luis idResponse
	if err := c.Post(ctx, "/owners", map[string]any{"name": "Ana Pérez", "phone": "+56 9 1234 5678"}, &ana); err != nil {
		return err
	}
	if err := c.Post(ctx, "/owners", map[string]any{"name": "Luis Soto", "phone": "221-555-0100"}, &luis); err != nil {
		return err
	}

	var toby, mishi, copito idResponse
	pets := []struct {
		out  *idResponse
		body map[string]any
	}{
		{&toby, map[string]any{"name": "Toby", "species": "dog", "breed": "Beagle", "birth_date": "2019-04-02", "owner_id": ana.ID}},
		{&mishi, map[string]any{"name": "Mishi", "species": "cat", "owner_id": ana.ID}},
		{&copito, map[string]any{"name": "Copito", "species": "rabbit", "owner_id": luis.ID}},
	}
	for _, p := range pets {
		if err := c.Post(ctx, "/pets", p.body, p.out); err != nil {
			return err
		}
	}

	// Mañana 09:00 UTC
	day := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	at := func(h int) string { return day.Add(time.Duration(h) * time.Hour).Format(time.RFC3339) }

	var bath, consult idResponse
	if err := c.Post(ctx, "/appointments", map[string]any{"pet_id": toby.ID, "scheduled_at": at(9), "service": "basic_bath"}, &bath); err != nil {
		return err
	}
	if err := c.Post(ctx, "/appointments/"+bath.ID+"/accept", nil, nil); err != nil {
		return err
	}
	if err := c.Post(ctx, "/appointments", map[string]any{"pet_id": mishi.ID, "scheduled_at": at(10), "service": "consultation", "note": "vacuna anual"}, &consult); err != nil {
		return err
	}
	if err := c.Post(ctx, "/appointments", map[string]any{"pet_id": copito.ID, "scheduled_at": at(11), "service": "emergency"}, nil); err != nil {
		return err
	}

	// Otro baño a la misma hora que el aceptado: la API lo tiene que rechazar.
	err := c.Post(ctx, "/appointments", map[string]any{"pet_id": toby.ID, "scheduled_at": at(9), "service": "medicated_bath"}, nil)
	if httpclient.IsRejection(err, "conflicting_booking") {
		log.Info("conflicting booking rejected as expected", nil)
	} else if err != nil {
		return err
	} else {
		log.Warn("conflicting booking was admitted", nil)
	}

	var services []string
	if err := c.Get(ctx, "/pets/"+mishi.ID+"/services", &services); err != nil {
		return err
	}
	log.Info("services for cat", map[string]any{"services": services})
	return nil
}
