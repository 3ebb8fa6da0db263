package appointments

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a Appointment) error
	Update(ctx context.Context, a Appointment) error
	// Delete es idempotente: borrar una cita inexistente no es error.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Appointment, error)
	// List devuelve citas ordenadas por fecha/hora ascendente.
	// Con filtro vacío y Limit 0 devuelve todas (snapshot para validar).
	List(ctx context.Context, filter ListFilter) ([]Appointment, error)
}

type ListFilter struct {
	PetID    string
	Statuses []Status
	Services []ServiceType
	From     *time.Time
	To       *time.Time
	Query    string // busca en la nota
	Limit    int
}
