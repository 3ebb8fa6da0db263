package appointments

import (
	"time"

	"vet-clinic/internal/domain/pets"
)

// Reason explica por qué se rechaza una cita propuesta.
type Reason string

const (
	ReasonMissingPet         Reason = "missing_pet"
	ReasonPastDate           Reason = "past_date"
	ReasonConflictingBooking Reason = "conflicting_booking"
)

// Message es el texto que se le muestra al usuario.
func (r Reason) Message() string {
	switch r {
	case ReasonMissingPet:
		return "select a pet for the appointment"
	case ReasonPastDate:
		return "the appointment date is in the past"
	case ReasonConflictingBooking:
		return "there is already an accepted appointment for that service at that time"
	default:
		return string(r)
	}
}

// Candidate es la cita que se quiere crear.
type Candidate struct {
	Pet         *pets.Pet
	ScheduledAt time.Time
	Service     ServiceType
}

// Result: Admitted o rechazada con Reason.
type Result struct {
	Admitted bool
	Reason   Reason
}

func admitted() Result {
	return Result{Admitted: true}
}

func rejected(r Reason) Result {
	return Result{Reason: r}
}

// EligibleServices devuelve los servicios que se ofrecen para una especie.
func EligibleServices(species pets.Species) []ServiceType {
	if species == pets.SpeciesDog {
		out := make([]ServiceType, len(AllServices))
		copy(out, AllServices)
		return out
	}
	return []ServiceType{ServiceConsultation, ServiceEmergency}
}

// IsEligible indica si service se ofrece para species.
func IsEligible(species pets.Species, service ServiceType) bool {
	for _, s := range EligibleServices(species) {
		if s == service {
			return true
		}
	}
	return false
}

// Validate decide si la cita candidata se puede crear dado el conjunto completo
// de citas existentes. Es pura: now siempre viene de afuera.
//
// Orden (corta en el primer fallo): mascota, fecha pasada, emergencia (siempre
// admitida), conflicto de peluquería, conflicto de consulta. Un conflicto exige
// misma fecha/hora exacta y cita existente en estado accepted.
func Validate(c Candidate, existing []Appointment, now time.Time) Result {
	if c.Pet == nil {
		return rejected(ReasonMissingPet)
	}
	if c.ScheduledAt.Before(now) {
		return rejected(ReasonPastDate)
	}

	switch {
	case c.Service == ServiceEmergency:
		return admitted()
	case c.Service.IsGrooming():
		if hasAcceptedAt(existing, c.ScheduledAt, ServiceType.IsGrooming) {
			return rejected(ReasonConflictingBooking)
		}
	case c.Service == ServiceConsultation:
		isConsultation := func(s ServiceType) bool { return s == ServiceConsultation }
		if hasAcceptedAt(existing, c.ScheduledAt, isConsultation) {
			return rejected(ReasonConflictingBooking)
		}
	}
	return admitted()
}

func hasAcceptedAt(existing []Appointment, at time.Time, sameGroup func(ServiceType) bool) bool {
	for _, a := range existing {
		if a.Status != StatusAccepted {
			continue
		}
		if !a.ScheduledAt.Equal(at) {
			continue
		}
		if sameGroup(a.Service) {
			return true
		}
	}
	return false
}
