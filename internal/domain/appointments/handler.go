package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vet-clinic/internal/domain/pets"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/appointments", func(ar chi.Router) {
		ar.Post("/", bookAppointmentHandler(svc))
		ar.Get("/", listAppointmentsHandler(svc))

		// Dry run del formulario: valida sin crear.
		ar.Post("/check", checkAppointmentHandler(svc))

		ar.Get("/{appointmentID}", getAppointmentHandler(svc))
		ar.Patch("/{appointmentID}", updateAppointmentHandler(svc))
		ar.Delete("/{appointmentID}", deleteAppointmentHandler(svc))

		// Acciones del detalle de la cita
		ar.Post("/{appointmentID}/accept", setStatusHandler(svc, StatusAccepted))
		ar.Post("/{appointmentID}/reject", setStatusHandler(svc, StatusRejected))
		ar.Post("/{appointmentID}/complete", setStatusHandler(svc, StatusCompleted))
	})

	r.Get("/pets/{petID}/appointments", listPetAppointmentsHandler(svc))
	r.Get("/pets/{petID}/services", petServicesHandler(svc))
	r.Get("/services", servicesHandler())
}

// bookAppointmentRequest es el cuerpo para pedir una cita nueva.
type bookAppointmentRequest struct {
	PetID       string `json:"pet_id"`
	ScheduledAt string `json:"scheduled_at" validate:"required"` // RFC3339
	Service     string `json:"service" validate:"required,oneof=consultation emergency basic_bath bath_nail_trim aesthetic_bath medicated_bath"`
	Note        string `json:"note" validate:"max=500"`
}

type updateAppointmentRequest struct {
	ScheduledAt *string `json:"scheduled_at"`
	Service     *string `json:"service" validate:"omitempty,oneof=consultation emergency basic_bath bath_nail_trim aesthetic_bath medicated_bath"`
	Note        *string `json:"note" validate:"omitempty,max=500"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending accepted rejected completed"`
}

// appointmentResponse representa una cita devuelta por la API.
type appointmentResponse struct {
	ID          string      `json:"id"`
	PetID       string      `json:"pet_id"`
	ScheduledAt time.Time   `json:"scheduled_at"`
	Service     ServiceType `json:"service"`
	Status      Status      `json:"status"`
	Note        string      `json:"note,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type checkResponse struct {
	Admitted bool   `json:"admitted"`
	Reason   Reason `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
}

type rejectionResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// bookAppointmentHandler godoc
// @Summary Pedir cita
// @Description Valida la cita propuesta contra todas las citas existentes y, si se admite, la crea en estado `pending`. Rechazos: `missing_pet` (sin mascota o mascota inexistente), `past_date` (fecha anterior a ahora), `conflicting_booking` (ya hay una cita aceptada del mismo grupo de servicio a la misma hora exacta). Emergencias nunca entran en conflicto. Los baños solo se ofrecen para perros (`service_not_offered`).
// @Tags appointments
// @Accept json
// @Produce json
// @Param payload body bookAppointmentRequest true "Datos de la cita; scheduled_at en formato RFC3339"
// @Success 201 {object} appointmentResponse
// @Failure 400 {string} string "invalid json / scheduled_at inválido / servicio desconocido"
// @Failure 422 {object} rejectionResponse
// @Failure 500 {string} string "internal error"
// @Router /appointments [post]
func bookAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeBookRequest(w, r)
		if !ok {
			return
		}

		a, err := svc.Book(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(a))
	}
}

// checkAppointmentHandler godoc
// @Summary Validar cita sin crearla
// @Description Corre las mismas reglas que POST /appointments y devuelve el resultado.
// @Tags appointments
// @Accept json
// @Produce json
// @Param payload body bookAppointmentRequest true "Cita propuesta"
// @Success 200 {object} checkResponse
// @Failure 400 {string} string "invalid json / scheduled_at inválido"
// @Router /appointments/check [post]
func checkAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeBookRequest(w, r)
		if !ok {
			return
		}

		res, err := svc.Check(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}

		out := checkResponse{Admitted: res.Admitted}
		if !res.Admitted {
			out.Reason = res.Reason
			out.Message = res.Reason.Message()
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func decodeBookRequest(w http.ResponseWriter, r *http.Request) (BookInput, bool) {
	var req bookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return BookInput{}, false
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return BookInput{}, false
	}

	t, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		http.Error(w, "scheduled_at must be RFC3339", http.StatusBadRequest)
		return BookInput{}, false
	}

	return BookInput{
		PetID:       req.PetID,
		ScheduledAt: t,
		Service:     req.Service,
		Note:        req.Note,
	}, true
}

// listAppointmentsHandler godoc
// @Summary Listar citas
// @Description Ordenadas por fecha/hora ascendente.
// @Tags appointments
// @Produce json
// @Param pet_id query string false "Filtra por mascota"
// @Param status query string false "CSV de estados (ej: pending,accepted)"
// @Param service query string false "CSV de servicios (ej: consultation,basic_bath)"
// @Param from query string false "scheduled_at mínimo (RFC3339)"
// @Param to query string false "scheduled_at máximo (RFC3339)"
// @Param q query string false "Texto de búsqueda en la nota"
// @Param limit query int false "Máximo (1-200)"
// @Success 200 {array} appointmentResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Router /appointments [get]
func listAppointmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.PetID = r.URL.Query().Get("pet_id")
		writeAppointmentList(w, r, svc, filter)
	}
}

// listPetAppointmentsHandler godoc
// @Summary Citas de una mascota
// @Description Acepta los mismos filtros que GET /appointments.
// @Tags appointments
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param status query string false "CSV de estados"
// @Param service query string false "CSV de servicios"
// @Success 200 {array} appointmentResponse
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/appointments [get]
func listPetAppointmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		if _, err := svc.pets.GetByID(r.Context(), petID); err != nil {
			writeError(w, err)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.PetID = petID
		writeAppointmentList(w, r, svc, filter)
	}
}

func writeAppointmentList(w http.ResponseWriter, r *http.Request, svc *Service, filter ListFilter) {
	items, err := svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]appointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAppointmentResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// getAppointmentHandler godoc
// @Summary Obtener cita
// @Tags appointments
// @Produce json
// @Param appointmentID path string true "ID de la cita"
// @Success 200 {object} appointmentResponse
// @Failure 404 {string} string "appointment not found"
// @Router /appointments/{appointmentID} [get]
func getAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// updateAppointmentHandler godoc
// @Summary Modificar cita
// @Description PATCH parcial. Si cambia scheduled_at o service la cita se vuelve a validar (sin contarse a sí misma). El estado se asigna libremente.
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointmentID path string true "ID de la cita"
// @Param payload body updateAppointmentRequest true "Campos a modificar"
// @Success 200 {object} appointmentResponse
// @Failure 400 {string} string "invalid json"
// @Failure 404 {string} string "appointment not found"
// @Failure 422 {object} rejectionResponse
// @Router /appointments/{appointmentID} [patch]
func updateAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateAppointmentRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			Service: req.Service,
			Note:    req.Note,
			Status:  req.Status,
		}
		if req.ScheduledAt != nil {
			t, err := time.Parse(time.RFC3339, *req.ScheduledAt)
			if err != nil {
				http.Error(w, "scheduled_at must be RFC3339", http.StatusBadRequest)
				return
			}
			in.ScheduledAt = &t
		}

		a, err := svc.Update(r.Context(), chi.URLParam(r, "appointmentID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// setStatusHandler godoc
// @Summary Cambiar estado de la cita
// @Description Asigna accepted, rejected o completed sin revalidar.
// @Tags appointments
// @Produce json
// @Param appointmentID path string true "ID de la cita"
// @Success 200 {object} appointmentResponse
// @Failure 404 {string} string "appointment not found"
// @Router /appointments/{appointmentID}/accept [post]
// @Router /appointments/{appointmentID}/reject [post]
// @Router /appointments/{appointmentID}/complete [post]
func setStatusHandler(svc *Service, status Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.SetStatus(r.Context(), chi.URLParam(r, "appointmentID"), status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// deleteAppointmentHandler godoc
// @Summary Borrar cita
// @Description Idempotente: borrar una cita inexistente también devuelve 204.
// @Tags appointments
// @Param appointmentID path string true "ID de la cita"
// @Success 204
// @Router /appointments/{appointmentID} [delete]
func deleteAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "appointmentID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// petServicesHandler godoc
// @Summary Servicios disponibles para una mascota
// @Tags appointments
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} string
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/services [get]
func petServicesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.pets.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, EligibleServices(p.Species))
	}
}

// servicesHandler godoc
// @Summary Servicios por especie
// @Tags appointments
// @Produce json
// @Param species query string true "dog | cat | rabbit"
// @Success 200 {array} string
// @Failure 400 {string} string "species inválida"
// @Router /services [get]
func servicesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sp, ok := pets.ParseSpecies(r.URL.Query().Get("species"))
		if !ok {
			http.Error(w, "species must be dog, cat or rabbit", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, EligibleServices(sp))
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	filter := ListFilter{}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			filter.Limit = n
		}
	}

	// status=pending,accepted
	for _, raw := range splitCSV(q.Get("status")) {
		st, ok := ParseStatus(raw)
		if !ok {
			return ListFilter{}, errors.New("status must be pending, accepted, rejected or completed")
		}
		filter.Statuses = append(filter.Statuses, st)
	}

	// service=consultation,basic_bath
	for _, raw := range splitCSV(q.Get("service")) {
		sv, ok := ParseService(raw)
		if !ok {
			return ListFilter{}, errors.New("unknown service")
		}
		filter.Services = append(filter.Services, sv)
	}

	// from/to RFC3339
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	filter.Query = strings.TrimSpace(q.Get("q"))
	return filter, nil
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	out := make([]string, 0)
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func toAppointmentResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:          a.ID,
		PetID:       a.PetID,
		ScheduledAt: a.ScheduledAt,
		Service:     a.Service,
		Status:      a.Status,
		Note:        a.Note,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	var rej *RejectionError
	switch {
	case errors.As(err, &rej):
		writeJSON(w, http.StatusUnprocessableEntity, rejectionResponse{
			Error:   string(rej.Reason),
			Message: rej.Reason.Message(),
		})
	case errors.Is(err, ErrServiceNotOffered):
		writeJSON(w, http.StatusUnprocessableEntity, rejectionResponse{
			Error:   "service_not_offered",
			Message: err.Error(),
		})
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, pets.ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// (owners/pets/appointments) para evitar un paquete de helpers prematuro.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
