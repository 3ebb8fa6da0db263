package pets

import (
	"strings"
	"time"
)

// Species define las especies atendidas en la clínica.
type Species string

const (
	SpeciesDog    Species = "dog"
	SpeciesCat    Species = "cat"
	SpeciesRabbit Species = "rabbit"
)

// AllSpecies en el orden en que se ofrecen en el formulario.
var AllSpecies = []Species{SpeciesDog, SpeciesCat, SpeciesRabbit}

// ParseSpecies acepta el valor canónico sin importar mayúsculas/espacios.
func ParseSpecies(s string) (Species, bool) {
	sp := Species(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllSpecies {
		if sp == known {
			return sp, true
		}
	}
	return "", false
}

// Pet representa el perfil básico de una mascota registrada en la clínica.
type Pet struct {
	ID      string
	OwnerID *string // nil = sin dueño (o dueño borrado con regla nullify)

	Name    string
	Species Species // dog, cat, rabbit
	Breed   string

	BirthDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
