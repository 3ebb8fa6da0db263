package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("appointment not found")
	ErrRejected          = errors.New("appointment rejected")
	ErrServiceNotOffered = errors.New("service not offered for this species")
)

// RejectionError lleva el motivo del rechazo; errors.Is(err, ErrRejected) es true.
type RejectionError struct {
	Reason Reason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("appointment rejected: %s", e.Reason)
}

func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}

// PetLookup es lo que appointments necesita del módulo pets.
type PetLookup interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
}

type Service struct {
	repo Repository
	pets PetLookup
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, petsLookup PetLookup, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		pets: petsLookup,
		log:  log.With(map[string]any{"module": "appointments"}),
		now:  time.Now,
	}
}

type BookInput struct {
	PetID       string
	ScheduledAt time.Time
	Service     string
	Note        string
}

// Check corre la validación sin persistir nada (dry run del formulario).
func (s *Service) Check(ctx context.Context, in BookInput) (Result, error) {
	c, err := s.candidate(ctx, in.PetID, in.ScheduledAt, in.Service)
	if err != nil {
		return Result{}, err
	}

	existing, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return Result{}, fmt.Errorf("list appointments: %w", err)
	}

	return Validate(c, existing, s.now()), nil
}

// Book valida y, si se admite, crea la cita en estado pending.
func (s *Service) Book(ctx context.Context, in BookInput) (Appointment, error) {
	c, err := s.candidate(ctx, in.PetID, in.ScheduledAt, in.Service)
	if err != nil {
		return Appointment{}, err
	}

	existing, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return Appointment{}, fmt.Errorf("list appointments: %w", err)
	}

	now := s.now()
	if res := Validate(c, existing, now); !res.Admitted {
		s.log.Info("appointment rejected", map[string]any{
			"pet_id":       in.PetID,
			"service":      string(c.Service),
			"scheduled_at": c.ScheduledAt,
			"reason":       string(res.Reason),
		})
		return Appointment{}, &RejectionError{Reason: res.Reason}
	}
	if !IsEligible(c.Pet.Species, c.Service) {
		return Appointment{}, ErrServiceNotOffered
	}

	a := Appointment{
		ID:          uuid.NewString(),
		PetID:       c.Pet.ID,
		ScheduledAt: c.ScheduledAt,
		Service:     c.Service,
		Status:      StatusPending,
		Note:        strings.TrimSpace(in.Note),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Appointment{}, fmt.Errorf("create appointment: %w", err)
	}

	s.log.Info("appointment booked", map[string]any{
		"appointment_id": a.ID,
		"pet_id":         a.PetID,
		"service":        string(a.Service),
	})
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Appointment, error) {
	filter.PetID = strings.TrimSpace(filter.PetID)
	filter.Query = strings.TrimSpace(filter.Query)
	return s.repo.List(ctx, filter)
}

// UpdateInput usa punteros para PATCH real: nil = no tocar.
type UpdateInput struct {
	ScheduledAt *time.Time
	Service     *string
	Note        *string
	Status      *string
}

// Update aplica cambios a una cita. Si cambia la fecha/hora o el servicio,
// se vuelve a validar contra el resto de las citas (sin contarse a sí misma).
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Appointment, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}

	rescheduled := false
	if in.ScheduledAt != nil {
		at := in.ScheduledAt.Truncate(time.Microsecond)
		if !at.Equal(a.ScheduledAt) {
			a.ScheduledAt = at
			rescheduled = true
		}
	}
	if in.Service != nil {
		sv, ok := ParseService(*in.Service)
		if !ok {
			return Appointment{}, ErrInvalidInput
		}
		if sv != a.Service {
			a.Service = sv
			rescheduled = true
		}
	}
	if in.Note != nil {
		a.Note = strings.TrimSpace(*in.Note)
	}
	if in.Status != nil {
		st, ok := ParseStatus(*in.Status)
		if !ok {
			return Appointment{}, ErrInvalidInput
		}
		a.Status = st
	}

	if rescheduled {
		if err := s.revalidate(ctx, a); err != nil {
			return Appointment{}, err
		}
	}

	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// SetStatus asigna el estado sin restricciones de transición (aceptar,
// rechazar, completar o volver a pending).
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Appointment, error) {
	st := string(status)
	return s.Update(ctx, id, UpdateInput{Status: &st})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// HasGroomingAppointments indica si la mascota tiene alguna cita de baño,
// en cualquier estado.
func (s *Service) HasGroomingAppointments(ctx context.Context, petID string) (bool, error) {
	list, err := s.repo.List(ctx, ListFilter{PetID: strings.TrimSpace(petID)})
	if err != nil {
		return false, fmt.Errorf("list appointments: %w", err)
	}
	for _, a := range list {
		if a.Service.IsGrooming() {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) revalidate(ctx context.Context, a Appointment) error {
	c, err := s.candidate(ctx, a.PetID, a.ScheduledAt, string(a.Service))
	if err != nil {
		return err
	}

	all, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return fmt.Errorf("list appointments: %w", err)
	}
	others := make([]Appointment, 0, len(all))
	for _, o := range all {
		if o.ID != a.ID {
			others = append(others, o)
		}
	}

	if res := Validate(c, others, s.now()); !res.Admitted {
		return &RejectionError{Reason: res.Reason}
	}
	if !IsEligible(c.Pet.Species, c.Service) {
		return ErrServiceNotOffered
	}
	return nil
}

// candidate arma la cita propuesta. Un pet_id vacío o que no existe se trata
// como "sin mascota"; un servicio desconocido es input inválido.
func (s *Service) candidate(ctx context.Context, petID string, at time.Time, service string) (Candidate, error) {
	sv, ok := ParseService(service)
	if !ok {
		return Candidate{}, ErrInvalidInput
	}
	if at.IsZero() {
		return Candidate{}, ErrInvalidInput
	}

	// Postgres guarda microsegundos; se trunca igual en todos los backends.
	c := Candidate{ScheduledAt: at.Truncate(time.Microsecond), Service: sv}

	petID = strings.TrimSpace(petID)
	if petID == "" || s.pets == nil {
		return c, nil
	}
	p, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, pets.ErrNotFound) {
			return c, nil
		}
		return Candidate{}, fmt.Errorf("get pet: %w", err)
	}
	c.Pet = &p
	return c, nil
}
