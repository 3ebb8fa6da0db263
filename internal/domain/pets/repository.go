package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	// Delete es idempotente y borra en cascada las citas de la mascota.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Pet, error)
	List(ctx context.Context, filter ListFilter) ([]Pet, error)
}

type ListFilter struct {
	Query   string // nombre o raza
	Species Species
	OwnerID string
	Limit   int
}
