package appointments

import (
	"strings"
	"time"
)

// ServiceType es el tipo de atención que se reserva.
type ServiceType string

const (
	ServiceConsultation ServiceType = "consultation"
	ServiceEmergency    ServiceType = "emergency"

	// Peluquería: solo perros.
	ServiceBasicBath     ServiceType = "basic_bath"
	ServiceBathNailTrim  ServiceType = "bath_nail_trim"
	ServiceAestheticBath ServiceType = "aesthetic_bath"
	ServiceMedicatedBath ServiceType = "medicated_bath"
)

// AllServices en el orden del formulario de nueva cita.
var AllServices = []ServiceType{
	ServiceConsultation,
	ServiceBasicBath,
	ServiceBathNailTrim,
	ServiceAestheticBath,
	ServiceMedicatedBath,
	ServiceEmergency,
}

func ParseService(s string) (ServiceType, bool) {
	sv := ServiceType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllServices {
		if sv == known {
			return sv, true
		}
	}
	return "", false
}

// IsGrooming indica si el servicio es una variante de baño.
func (s ServiceType) IsGrooming() bool {
	switch s {
	case ServiceBasicBath, ServiceBathNailTrim, ServiceAestheticBath, ServiceMedicatedBath:
		return true
	default:
		return false
	}
}

// Status de la cita. Cualquier estado puede asignarse desde cualquier otro.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

var AllStatuses = []Status{StatusPending, StatusAccepted, StatusRejected, StatusCompleted}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllStatuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

type Appointment struct {
	ID    string
	PetID string

	ScheduledAt time.Time
	Service     ServiceType
	Status      Status
	Note        string

	CreatedAt time.Time
	UpdatedAt time.Time
}
