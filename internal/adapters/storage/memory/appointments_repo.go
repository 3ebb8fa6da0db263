package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/pets"
)

type appointmentRepo struct {
	s *Store
}

func (r *appointmentRepo) Create(ctx context.Context, a appointments.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a.ID == "" {
		return errors.New("appointment id required")
	}
	if _, exists := r.s.appointments[a.ID]; exists {
		return errors.New("appointment already exists")
	}
	if _, ok := r.s.pets[a.PetID]; !ok {
		return pets.ErrNotFound
	}
	r.s.appointments[a.ID] = a
	return nil
}

func (r *appointmentRepo) Update(ctx context.Context, a appointments.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.appointments[a.ID]; !exists {
		return appointments.ErrNotFound
	}
	r.s.appointments[a.ID] = a
	return nil
}

func (r *appointmentRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.appointments, id)
	return nil
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.appointments[id]
	if !ok {
		return appointments.Appointment{}, appointments.ErrNotFound
	}
	return a, nil
}

func (r *appointmentRepo) List(ctx context.Context, filter appointments.ListFilter) ([]appointments.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))

	out := make([]appointments.Appointment, 0)
	for _, a := range r.s.appointments {
		if filter.PetID != "" && a.PetID != filter.PetID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsValue(filter.Statuses, a.Status) {
			continue
		}
		if len(filter.Services) > 0 && !containsValue(filter.Services, a.Service) {
			continue
		}
		if filter.From != nil && a.ScheduledAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && a.ScheduledAt.After(*filter.To) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Note), q) {
			continue
		}
		out = append(out, a)
	}

	// Orden por fecha asc, como la agenda de citas.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return limitSlice(out, filter.Limit), nil
}

func containsValue[T comparable](items []T, v T) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}
