package router

import (
	"database/sql"
	"net/http"

	_ "vet-clinic/docs"
	"vet-clinic/internal/adapters/storage/cache"
	mem "vet-clinic/internal/adapters/storage/memory"
	pg "vet-clinic/internal/adapters/storage/postgres"
	"vet-clinic/internal/config"
	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/middleware"
	"vet-clinic/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Solo aplica al store in-memory; en Postgres la regla vive en la FK.
	OwnerDeleteRule config.OwnerDeleteRule

	// PetsCacheSize > 0 activa el LRU de mascotas.
	PetsCacheSize int

	// RateLimitRPS <= 0 desactiva el rate limit.
	RateLimitRPS   float64
	RateLimitBurst int

	Logger logger.Logger
}

// OptionsFromConfig arma Options a partir de la config de la app.
func OptionsFromConfig(cfg *config.Config, db *sql.DB, log logger.Logger) Options {
	opts := Options{
		DB:              db,
		OwnerDeleteRule: cfg.Store.OwnerDeleteRule,
		RateLimitRPS:    cfg.RateLimit.RPS,
		RateLimitBurst:  cfg.RateLimit.Burst,
		Logger:          log,
	}
	if cfg.Cache.Enabled {
		opts.PetsCacheSize = cfg.Cache.PetsSize
	}
	return opts
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var (
		ownerRepo       owners.Repository
		petRepo         pets.Repository
		appointmentRepo appointments.Repository
	)

	if opts.DB != nil {
		ownerRepo = pg.NewOwnersRepo(opts.DB)
		petRepo = pg.NewPetsRepo(opts.DB)
		appointmentRepo = pg.NewAppointmentsRepo(opts.DB)
	} else {
		store := mem.NewStore(opts.OwnerDeleteRule)
		ownerRepo = store.Owners()
		petRepo = store.Pets()
		appointmentRepo = store.Appointments()
	}

	if opts.PetsCacheSize > 0 {
		cached, err := cache.NewPetsRepo(petRepo, opts.PetsCacheSize, log)
		if err != nil {
			log.Warn("pets cache disabled", map[string]any{"error": err})
		} else {
			petRepo = cached
			ownerRepo = cache.WrapOwners(ownerRepo, cached)
		}
	}

	// Services por módulo
	ownersSvc := owners.NewService(ownerRepo)
	petsSvc := pets.NewService(petRepo, ownersSvc)
	appointmentsSvc := appointments.NewService(appointmentRepo, petsSvc, log)
	petsSvc.SetBookings(appointmentsSvc)

	// Rutas por módulo
	owners.RegisterRoutes(r, ownersSvc)
	pets.RegisterRoutes(r, petsSvc)
	appointments.RegisterRoutes(r, appointmentsSvc)

	return r
}
