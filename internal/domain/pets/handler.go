package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vet-clinic/internal/domain/owners"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))

		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))
	})

	// Mascotas de un dueño (pantalla de detalle del dueño)
	r.Get("/owners/{ownerID}/pets", listOwnerPetsHandler(svc))
}

type createPetRequest struct {
	Name      string  `json:"name" validate:"required,max=120"`
	Species   string  `json:"species" validate:"required,oneof=dog cat rabbit"`
	Breed     string  `json:"breed" validate:"max=120"`
	BirthDate string  `json:"birth_date"` // YYYY-MM-DD opcional
	OwnerID   *string `json:"owner_id"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name    *string `json:"name" validate:"omitempty,max=120"`
	Species *string `json:"species" validate:"omitempty,oneof=dog cat rabbit"`
	Breed   *string `json:"breed" validate:"omitempty,max=120"`
	// birth_date y owner_id aceptan null para limpiar; se leen aparte.
	BirthDate json.RawMessage `json:"birth_date" swaggertype:"string"`
	OwnerID   json.RawMessage `json:"owner_id" swaggertype:"string"`
}

type ownerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type petResponse struct {
	ID        string        `json:"id"`
	OwnerID   *string       `json:"owner_id"`
	Owner     *ownerSummary `json:"owner,omitempty"`
	Name      string        `json:"name"`
	Species   Species       `json:"species"`
	Breed     string        `json:"breed"`
	BirthDate *string       `json:"birth_date,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// createPetHandler godoc
// @Summary Registrar mascota
// @Description Crea una mascota. `owner_id` es opcional pero, si viene, el dueño debe existir.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body createPetRequest true "Datos de la mascota; birth_date en formato YYYY-MM-DD"
// @Success 201 {object} petResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 404 {string} string "owner not found"
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			bd = &t
		}

		p, err := svc.Create(r.Context(), CreateInput{
			Name:      req.Name,
			Species:   req.Species,
			Breed:     req.Breed,
			BirthDate: bd,
			OwnerID:   req.OwnerID,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(r, svc, p))
	}
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Ordenadas por nombre. `q` busca en nombre y raza.
// @Tags pets
// @Produce json
// @Param q query string false "Texto de búsqueda"
// @Param species query string false "dog | cat | rabbit"
// @Param owner_id query string false "Filtra por dueño"
// @Param limit query int false "Máximo (1-200)"
// @Success 200 {array} petResponse
// @Failure 400 {string} string "species inválida"
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ListFilter{
			Query:   r.URL.Query().Get("q"),
			OwnerID: r.URL.Query().Get("owner_id"),
			Limit:   parseLimit(r),
		}
		if v := strings.TrimSpace(r.URL.Query().Get("species")); v != "" {
			sp, ok := ParseSpecies(v)
			if !ok {
				http.Error(w, "species must be dog, cat or rabbit", http.StatusBadRequest)
				return
			}
			filter.Species = sp
		}

		writePetList(w, r, svc, filter)
	}
}

// listOwnerPetsHandler godoc
// @Summary Mascotas de un dueño
// @Tags pets
// @Produce json
// @Param ownerID path string true "ID del dueño"
// @Param limit query int false "Máximo (1-200)"
// @Success 200 {array} petResponse
// @Failure 404 {string} string "owner not found"
// @Router /owners/{ownerID}/pets [get]
func listOwnerPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := chi.URLParam(r, "ownerID")
		if _, err := svc.owners.GetByID(r.Context(), ownerID); err != nil {
			if errors.Is(err, owners.ErrNotFound) {
				http.Error(w, "owner not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writePetList(w, r, svc, ListFilter{OwnerID: ownerID, Limit: parseLimit(r)})
	}
}

func writePetList(w http.ResponseWriter, r *http.Request, svc *Service, filter ListFilter) {
	items, err := svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]petResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPetResponse(r, svc, p))
	}
	writeJSON(w, http.StatusOK, out)
}

// getPetHandler godoc
// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petResponse
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(r, svc, p))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description PATCH parcial. `birth_date` y `owner_id` aceptan null para limpiar el valor.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a modificar"
// @Success 200 {object} petResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 404 {string} string "pet not found / owner not found"
// @Failure 409 {string} string "species change conflicts with grooming appointments"
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updatePetRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			Name:    req.Name,
			Species: req.Species,
			Breed:   req.Breed,
		}

		rawBD, err := decodeNullable[string](req.BirthDate)
		if err != nil {
			http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
			return
		}
		in.BirthDate.Present = rawBD.Present
		if rawBD.Value != nil {
			t, err := time.Parse("2006-01-02", *rawBD.Value)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
				return
			}
			in.BirthDate.Value = &t
		}

		in.OwnerID, err = decodeNullable[string](req.OwnerID)
		if err != nil {
			http.Error(w, "owner_id must be a string or null", http.StatusBadRequest)
			return
		}

		updated, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(r, svc, updated))
	}
}

// deletePetHandler godoc
// @Summary Borrar mascota
// @Description Idempotente. Borra también todas sus citas.
// @Tags pets
// @Param petID path string true "ID de la mascota"
// @Success 204
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// decodeNullable: campo ausente => Present=false; null => Present=true, Value=nil.
func decodeNullable[T any](raw json.RawMessage) (Optional[T], error) {
	if len(raw) == 0 {
		return Optional[T]{}, nil
	}
	if string(raw) == "null" {
		return Optional[T]{Present: true}, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return Optional[T]{}, err
	}
	return Optional[T]{Present: true, Value: &v}, nil
}

func toPetResponse(r *http.Request, svc *Service, p Pet) petResponse {
	out := petResponse{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		Species:   p.Species,
		Breed:     p.Breed,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.BirthDate != nil {
		s := p.BirthDate.Format("2006-01-02")
		out.BirthDate = &s
	}

	// Dueño embebido para la UI; si falla el lookup se devuelve solo owner_id.
	if o, err := svc.OwnerOf(r.Context(), p); err == nil && o != nil {
		out.Owner = &ownerSummary{ID: o.ID, Name: o.Name, Phone: o.Phone}
	}
	return out
}

func parseLimit(r *http.Request) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			return n
		}
	}
	return 0
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrOwnerNotFound):
		http.Error(w, "owner not found", http.StatusNotFound)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	case errors.Is(err, ErrSpeciesLocked):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
