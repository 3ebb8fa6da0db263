package appointments

import (
	"testing"
	"time"

	"vet-clinic/internal/domain/pets"
)

var (
	testNow = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	dog     = &pets.Pet{ID: "pet-dog", Name: "Toby", Species: pets.SpeciesDog}
	cat     = &pets.Pet{ID: "pet-cat", Name: "Mishi", Species: pets.SpeciesCat}
)

func accepted(id string, s ServiceType, at time.Time) Appointment {
	return Appointment{ID: id, PetID: "other", ScheduledAt: at, Service: s, Status: StatusAccepted}
}

func TestEligibleServices_NonDogGetsConsultationAndEmergency(t *testing.T) {
	for _, sp := range []pets.Species{pets.SpeciesCat, pets.SpeciesRabbit} {
		got := EligibleServices(sp)
		if len(got) != 2 {
			t.Fatalf("%s: expected 2 services, got %v", sp, got)
		}
		if !IsEligible(sp, ServiceConsultation) || !IsEligible(sp, ServiceEmergency) {
			t.Fatalf("%s: expected consultation and emergency, got %v", sp, got)
		}
		for _, s := range AllServices {
			if s.IsGrooming() && IsEligible(sp, s) {
				t.Fatalf("%s: grooming %s should not be offered", sp, s)
			}
		}
	}
}

func TestEligibleServices_DogGetsAllSix(t *testing.T) {
	got := EligibleServices(pets.SpeciesDog)
	if len(got) != 6 {
		t.Fatalf("expected 6 services, got %v", got)
	}
	for _, s := range AllServices {
		if !IsEligible(pets.SpeciesDog, s) {
			t.Fatalf("dog should be eligible for %s", s)
		}
	}

	// Es una copia: modificarla no toca AllServices.
	got[0] = "x"
	if AllServices[0] != ServiceConsultation {
		t.Fatalf("EligibleServices must not expose AllServices")
	}
}

func TestValidate_MissingPetWins(t *testing.T) {
	// Sin mascota, aunque la fecha sea pasada y sea emergencia.
	for _, s := range AllServices {
		res := Validate(Candidate{ScheduledAt: testNow.Add(-time.Hour), Service: s}, nil, testNow)
		if res.Admitted || res.Reason != ReasonMissingPet {
			t.Fatalf("%s: expected missing_pet, got %+v", s, res)
		}
	}
}

func TestValidate_PastDateForAnyService(t *testing.T) {
	for _, s := range AllServices {
		res := Validate(Candidate{Pet: dog, ScheduledAt: testNow.Add(-time.Minute), Service: s}, nil, testNow)
		if res.Admitted || res.Reason != ReasonPastDate {
			t.Fatalf("%s: expected past_date, got %+v", s, res)
		}
	}
}

func TestValidate_NowIsNotPast(t *testing.T) {
	res := Validate(Candidate{Pet: dog, ScheduledAt: testNow, Service: ServiceConsultation}, nil, testNow)
	if !res.Admitted {
		t.Fatalf("timestamp equal to now should be admitted, got %+v", res)
	}
}

func TestValidate_EmergencyAlwaysAdmitted(t *testing.T) {
	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	existing := []Appointment{
		accepted("a1", ServiceEmergency, at),
		accepted("a2", ServiceConsultation, at),
		accepted("a3", ServiceBasicBath, at),
	}

	res := Validate(Candidate{Pet: cat, ScheduledAt: at, Service: ServiceEmergency}, existing, testNow)
	if !res.Admitted {
		t.Fatalf("emergency should be admitted, got %+v", res)
	}
}

func TestValidate_CrossVariantGroomingConflict(t *testing.T) {
	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	existing := []Appointment{accepted("a1", ServiceBasicBath, at)}

	res := Validate(Candidate{Pet: dog, ScheduledAt: at, Service: ServiceAestheticBath}, existing, testNow)
	if res.Admitted || res.Reason != ReasonConflictingBooking {
		t.Fatalf("expected conflicting_booking, got %+v", res)
	}
}

func TestValidate_PendingDoesNotConflict(t *testing.T) {
	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	for _, st := range []Status{StatusPending, StatusRejected, StatusCompleted} {
		existing := []Appointment{{ID: "a1", PetID: "other", ScheduledAt: at, Service: ServiceConsultation, Status: st}}
		res := Validate(Candidate{Pet: cat, ScheduledAt: at, Service: ServiceConsultation}, existing, testNow)
		if !res.Admitted {
			t.Fatalf("existing %s consultation should not conflict, got %+v", st, res)
		}
	}
}

func TestValidate_ExactTimestampOnly(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	existing := []Appointment{accepted("a1", ServiceConsultation, at)}

	res := Validate(Candidate{Pet: cat, ScheduledAt: at.Add(time.Minute), Service: ServiceConsultation}, existing, testNow)
	if !res.Admitted {
		t.Fatalf("T+1m should be admitted, got %+v", res)
	}

	res = Validate(Candidate{Pet: cat, ScheduledAt: at, Service: ServiceConsultation}, existing, testNow)
	if res.Admitted || res.Reason != ReasonConflictingBooking {
		t.Fatalf("same T should conflict, got %+v", res)
	}
}

func TestValidate_SameInstantDifferentZone(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	santiago := time.FixedZone("CLT", -3*60*60)
	existing := []Appointment{accepted("a1", ServiceConsultation, at.In(santiago))}

	res := Validate(Candidate{Pet: cat, ScheduledAt: at, Service: ServiceConsultation}, existing, testNow)
	if res.Reason != ReasonConflictingBooking {
		t.Fatalf("same instant in another zone should conflict, got %+v", res)
	}
}

func TestValidate_GroupsDoNotCross(t *testing.T) {
	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	// Consulta aceptada no bloquea baños.
	res := Validate(Candidate{Pet: dog, ScheduledAt: at, Service: ServiceMedicatedBath},
		[]Appointment{accepted("a1", ServiceConsultation, at)}, testNow)
	if !res.Admitted {
		t.Fatalf("consultation should not block grooming, got %+v", res)
	}

	// Baño aceptado no bloquea consultas.
	res = Validate(Candidate{Pet: dog, ScheduledAt: at, Service: ServiceConsultation},
		[]Appointment{accepted("a1", ServiceBathNailTrim, at)}, testNow)
	if !res.Admitted {
		t.Fatalf("grooming should not block consultation, got %+v", res)
	}

	// Emergencia aceptada no bloquea nada.
	res = Validate(Candidate{Pet: dog, ScheduledAt: at, Service: ServiceConsultation},
		[]Appointment{accepted("a1", ServiceEmergency, at)}, testNow)
	if !res.Admitted {
		t.Fatalf("emergency should not block consultation, got %+v", res)
	}
}

func TestValidate_DoesNotCheckEligibility(t *testing.T) {
	// La elegibilidad la controla el servicio, no Validate.
	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	res := Validate(Candidate{Pet: cat, ScheduledAt: at, Service: ServiceBasicBath}, nil, testNow)
	if !res.Admitted {
		t.Fatalf("expected admitted, got %+v", res)
	}
}

func TestReason_Message(t *testing.T) {
	for _, r := range []Reason{ReasonMissingPet, ReasonPastDate, ReasonConflictingBooking} {
		if r.Message() == "" || r.Message() == string(r) {
			t.Fatalf("%s should have a user-facing message", r)
		}
	}
}
