package owners

import "context"

type Repository interface {
	Create(ctx context.Context, o Owner) error
	Update(ctx context.Context, o Owner) error
	// Delete es idempotente. Qué pasa con las mascotas lo decide el store
	// (cascade o nullify según configuración).
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Owner, error)
	List(ctx context.Context, filter ListFilter) ([]Owner, error)
}

type ListFilter struct {
	Query string // nombre o teléfono, case-insensitive
	Limit int
}
