package pets

import (
	"context"
	"errors"
	"strings"

	"vet-clinic/internal/domain/owners"
)

// OwnerDirectory es lo único que pets necesita de owners.
type OwnerDirectory interface {
	GetByID(ctx context.Context, id string) (owners.Owner, error)
}

// GroomingBookings la implementa appointments; pets no puede importarlo.
type GroomingBookings interface {
	HasGroomingAppointments(ctx context.Context, petID string) (bool, error)
}

// SetBookings se llama al armar el router, después de crear appointments.
func (s *Service) SetBookings(b GroomingBookings) {
	s.bookings = b
}

// OwnerOf devuelve el dueño de una mascota, si tiene.
func (s *Service) OwnerOf(ctx context.Context, p Pet) (*owners.Owner, error) {
	if p.OwnerID == nil || s.owners == nil {
		return nil, nil
	}
	o, err := s.owners.GetByID(ctx, *p.OwnerID)
	if err != nil {
		if errors.Is(err, owners.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// checkOwner valida que ownerID (si viene) exista. Devuelve el ID normalizado.
func (s *Service) checkOwner(ctx context.Context, ownerID *string) (*string, error) {
	if ownerID == nil {
		return nil, nil
	}
	id := strings.TrimSpace(*ownerID)
	if id == "" {
		return nil, nil
	}
	if s.owners == nil {
		return nil, ErrOwnerNotFound
	}
	if _, err := s.owners.GetByID(ctx, id); err != nil {
		if errors.Is(err, owners.ErrNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	return &id, nil
}

// checkSpecies impide que un perro con citas de baño deje de ser perro.
func (s *Service) checkSpecies(ctx context.Context, p Pet, to Species) error {
	if p.Species != SpeciesDog || to == SpeciesDog || s.bookings == nil {
		return nil
	}
	has, err := s.bookings.HasGroomingAppointments(ctx, p.ID)
	if err != nil {
		return err
	}
	if has {
		return ErrSpeciesLocked
	}
	return nil
}
