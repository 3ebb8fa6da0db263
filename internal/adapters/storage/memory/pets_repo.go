package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"vet-clinic/internal/domain/pets"
)

type petRepo struct {
	s *Store
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.s.pets[p.ID]; exists {
		return errors.New("pet already exists")
	}
	if err := r.checkOwnerLocked(p); err != nil {
		return err
	}
	r.s.pets[p.ID] = p
	return nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.pets[p.ID]; !exists {
		return pets.ErrNotFound
	}
	if err := r.checkOwnerLocked(p); err != nil {
		return err
	}
	r.s.pets[p.ID] = p
	return nil
}

// checkOwnerLocked hace de foreign key: owner_id debe existir.
func (r *petRepo) checkOwnerLocked(p pets.Pet) error {
	if p.OwnerID == nil {
		return nil
	}
	if _, ok := r.s.owners[*p.OwnerID]; !ok {
		return pets.ErrOwnerNotFound
	}
	return nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.deletePetLocked(id)
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.pets[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (r *petRepo) List(ctx context.Context, filter pets.ListFilter) ([]pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))

	out := make([]pets.Pet, 0)
	for _, p := range r.s.pets {
		if filter.Species != "" && p.Species != filter.Species {
			continue
		}
		if filter.OwnerID != "" && (p.OwnerID == nil || *p.OwnerID != filter.OwnerID) {
			continue
		}
		if q != "" && !matchesAny(q, p.Name, p.Breed) {
			continue
		}
		out = append(out, p)
	}

	// Orden por nombre, como la lista de mascotas de la app.
	sort.Slice(out, func(i, j int) bool {
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return limitSlice(out, filter.Limit), nil
}
