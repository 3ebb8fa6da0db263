package owners

import "time"

// Owner es el dueño (responsable) de una o más mascotas.
type Owner struct {
	ID    string
	Name  string
	Phone string

	CreatedAt time.Time
	UpdatedAt time.Time
}
