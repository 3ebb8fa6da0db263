package cache

import (
	"context"
	"fmt"

	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/platform/logger"

	lru "github.com/hashicorp/golang-lru/v2"
)

// PetsRepo es un read-through cache de GetByID delante de otro pets.Repository.
// Cada reserva de cita resuelve la mascota, así que es el lookup más frecuente.
type PetsRepo struct {
	inner  pets.Repository
	cache  *lru.Cache[string, pets.Pet]
	logger logger.Logger
}

func NewPetsRepo(inner pets.Repository, size int, log logger.Logger) (*PetsRepo, error) {
	c, err := lru.New[string, pets.Pet](size)
	if err != nil {
		return nil, fmt.Errorf("pets cache: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PetsRepo{
		inner:  inner,
		cache:  c,
		logger: log.With(map[string]any{"module": "pets_cache"}),
	}, nil
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	if err := r.inner.Create(ctx, p); err != nil {
		return err
	}
	r.cache.Add(p.ID, p)
	return nil
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	// Se invalida antes: si el update falla a medias no queda una copia vieja.
	r.cache.Remove(p.ID)
	return r.inner.Update(ctx, p)
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	r.cache.Remove(id)
	return r.inner.Delete(ctx, id)
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	if p, ok := r.cache.Get(id); ok {
		r.logger.Debug("cache.get.hit", map[string]any{"pet_id": id})
		return p, nil
	}

	p, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return pets.Pet{}, err
	}
	r.cache.Add(id, p)
	r.logger.Debug("cache.get.miss", map[string]any{"pet_id": id})
	return p, nil
}

func (r *PetsRepo) List(ctx context.Context, filter pets.ListFilter) ([]pets.Pet, error) {
	return r.inner.List(ctx, filter)
}

// Purge vacía el cache completo.
func (r *PetsRepo) Purge() {
	r.cache.Purge()
}

// Len cantidad de mascotas cacheadas.
func (r *PetsRepo) Len() int {
	return r.cache.Len()
}

// ownersRepo purga el cache de mascotas cuando se borra un dueño, porque el
// store borra (cascade) o desvincula (nullify) sus mascotas por debajo.
type ownersRepo struct {
	owners.Repository
	pets *PetsRepo
}

func WrapOwners(inner owners.Repository, petsCache *PetsRepo) owners.Repository {
	return &ownersRepo{Repository: inner, pets: petsCache}
}

func (r *ownersRepo) Delete(ctx context.Context, id string) error {
	err := r.Repository.Delete(ctx, id)
	r.pets.Purge()
	return err
}
