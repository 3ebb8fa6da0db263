package memory

import (
	"strings"
	"sync"

	"vet-clinic/internal/config"
	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
)

// Store guarda owners, pets y citas bajo un único lock para poder aplicar
// las reglas de borrado (cascade / nullify) de forma atómica.
type Store struct {
	mu sync.RWMutex

	owners       map[string]owners.Owner
	pets         map[string]pets.Pet
	appointments map[string]appointments.Appointment

	ownerDeleteRule config.OwnerDeleteRule
}

func NewStore(rule config.OwnerDeleteRule) *Store {
	if rule == "" {
		rule = config.OwnerDeleteCascade
	}
	return &Store{
		owners:          make(map[string]owners.Owner),
		pets:            make(map[string]pets.Pet),
		appointments:    make(map[string]appointments.Appointment),
		ownerDeleteRule: rule,
	}
}

func (s *Store) Owners() owners.Repository {
	return &ownerRepo{s: s}
}

func (s *Store) Pets() pets.Repository {
	return &petRepo{s: s}
}

func (s *Store) Appointments() appointments.Repository {
	return &appointmentRepo{s: s}
}

// deletePetLocked borra la mascota y sus citas. Requiere s.mu tomado.
func (s *Store) deletePetLocked(petID string) {
	delete(s.pets, petID)
	for id, a := range s.appointments {
		if a.PetID == petID {
			delete(s.appointments, id)
		}
	}
}

// matchesAny busca q (ya en minúsculas) en cada campo por separado.
func matchesAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func limitSlice[T any](in []T, limit int) []T {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}
