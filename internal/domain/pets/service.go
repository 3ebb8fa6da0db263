package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("pet not found")
	ErrOwnerNotFound = errors.New("owner not found")
	ErrSpeciesLocked = errors.New("species change conflicts with grooming appointments")
)

type Service struct {
	repo     Repository
	owners   OwnerDirectory
	bookings GroomingBookings
	now      func() time.Time
}

func NewService(repo Repository, owners OwnerDirectory) *Service {
	return &Service{
		repo:   repo,
		owners: owners,
		now:    time.Now,
	}
}

type CreateInput struct {
	Name      string
	Species   string
	Breed     string
	BirthDate *time.Time
	OwnerID   *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Pet{}, ErrInvalidInput
	}
	species, ok := ParseSpecies(in.Species)
	if !ok {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	if in.BirthDate != nil && in.BirthDate.After(now) {
		return Pet{}, ErrInvalidInput
	}

	ownerID, err := s.checkOwner(ctx, in.OwnerID)
	if err != nil {
		return Pet{}, err
	}

	p := Pet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Species:   species,
		Breed:     strings.TrimSpace(in.Breed),
		BirthDate: in.BirthDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Pet, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.OwnerID = strings.TrimSpace(filter.OwnerID)
	return s.repo.List(ctx, filter)
}

// Optional distingue "no enviado" de "enviado como null" en un PATCH.
type Optional[T any] struct {
	Present bool
	Value   *T
}

type UpdateInput struct {
	Name      *string
	Species   *string
	Breed     *string
	BirthDate Optional[time.Time]
	OwnerID   Optional[string]
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Pet, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}

	now := s.now()

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Name = name
	}
	if in.Species != nil {
		sp, ok := ParseSpecies(*in.Species)
		if !ok {
			return Pet{}, ErrInvalidInput
		}
		if err := s.checkSpecies(ctx, p, sp); err != nil {
			return Pet{}, err
		}
		p.Species = sp
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.BirthDate.Present {
		if in.BirthDate.Value != nil && in.BirthDate.Value.After(now) {
			return Pet{}, ErrInvalidInput
		}
		p.BirthDate = in.BirthDate.Value
	}
	if in.OwnerID.Present {
		ownerID, err := s.checkOwner(ctx, in.OwnerID.Value)
		if err != nil {
			return Pet{}, err
		}
		p.OwnerID = ownerID
	}

	p.UpdatedAt = now
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}
