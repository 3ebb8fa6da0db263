package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"vet-clinic/internal/config"
	"vet-clinic/internal/domain/owners"
)

type ownerRepo struct {
	s *Store
}

func (r *ownerRepo) Create(ctx context.Context, o owners.Owner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return errors.New("owner id required")
	}
	if _, exists := r.s.owners[o.ID]; exists {
		return errors.New("owner already exists")
	}
	r.s.owners[o.ID] = o
	return nil
}

func (r *ownerRepo) Update(ctx context.Context, o owners.Owner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.owners[o.ID]; !exists {
		return owners.ErrNotFound
	}
	r.s.owners[o.ID] = o
	return nil
}

func (r *ownerRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.owners[id]; !exists {
		return nil
	}
	delete(r.s.owners, id)

	for petID, p := range r.s.pets {
		if p.OwnerID == nil || *p.OwnerID != id {
			continue
		}
		if r.s.ownerDeleteRule == config.OwnerDeleteNullify {
			p.OwnerID = nil
			r.s.pets[petID] = p
			continue
		}
		r.s.deletePetLocked(petID)
	}
	return nil
}

func (r *ownerRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.owners[id]
	if !ok {
		return owners.Owner{}, owners.ErrNotFound
	}
	return o, nil
}

func (r *ownerRepo) List(ctx context.Context, filter owners.ListFilter) ([]owners.Owner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))

	out := make([]owners.Owner, 0)
	for _, o := range r.s.owners {
		if q != "" && !matchesAny(q, o.Name, o.Phone) {
			continue
		}
		out = append(out, o)
	}

	sort.Slice(out, func(i, j int) bool {
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return limitSlice(out, filter.Limit), nil
}
