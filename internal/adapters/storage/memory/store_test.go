package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-clinic/internal/config"
	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
)

var base = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func ptr(s string) *string { return &s }

// seedStore: owner o1 con mascotas p1 y p2, p3 sin dueño; una cita por mascota.
func seedStore(t *testing.T, rule config.OwnerDeleteRule) *Store {
	t.Helper()
	ctx := context.Background()
	s := NewStore(rule)

	if err := s.Owners().Create(ctx, owners.Owner{ID: "o1", Name: "Ana"}); err != nil {
		t.Fatalf("create owner: %v", err)
	}
	for _, p := range []pets.Pet{
		{ID: "p1", OwnerID: ptr("o1"), Name: "Toby", Species: pets.SpeciesDog},
		{ID: "p2", OwnerID: ptr("o1"), Name: "Mishi", Species: pets.SpeciesCat},
		{ID: "p3", Name: "Copito", Species: pets.SpeciesRabbit},
	} {
		if err := s.Pets().Create(ctx, p); err != nil {
			t.Fatalf("create pet %s: %v", p.ID, err)
		}
	}
	for i, petID := range []string{"p1", "p2", "p3"} {
		a := appointments.Appointment{
			ID:          "a" + petID,
			PetID:       petID,
			ScheduledAt: base.Add(time.Duration(i) * time.Hour),
			Service:     appointments.ServiceConsultation,
			Status:      appointments.StatusPending,
		}
		if err := s.Appointments().Create(ctx, a); err != nil {
			t.Fatalf("create appointment: %v", err)
		}
	}
	return s
}

func TestStore_DeleteOwner_Cascade(t *testing.T) {
	s := seedStore(t, config.OwnerDeleteCascade)
	ctx := context.Background()

	if err := s.Owners().Delete(ctx, "o1"); err != nil {
		t.Fatalf("delete owner: %v", err)
	}

	for _, id := range []string{"p1", "p2"} {
		if _, err := s.Pets().GetByID(ctx, id); !errors.Is(err, pets.ErrNotFound) {
			t.Fatalf("pet %s should be gone, got %v", id, err)
		}
	}
	if _, err := s.Pets().GetByID(ctx, "p3"); err != nil {
		t.Fatalf("pet without owner should survive: %v", err)
	}

	all, _ := s.Appointments().List(ctx, appointments.ListFilter{})
	if len(all) != 1 || all[0].PetID != "p3" {
		t.Fatalf("expected only p3 appointment to remain, got %+v", all)
	}
}

func TestStore_DeleteOwner_Nullify(t *testing.T) {
	s := seedStore(t, config.OwnerDeleteNullify)
	ctx := context.Background()

	if err := s.Owners().Delete(ctx, "o1"); err != nil {
		t.Fatalf("delete owner: %v", err)
	}

	for _, id := range []string{"p1", "p2"} {
		p, err := s.Pets().GetByID(ctx, id)
		if err != nil {
			t.Fatalf("pet %s should survive: %v", id, err)
		}
		if p.OwnerID != nil {
			t.Fatalf("pet %s owner should be cleared, got %q", id, *p.OwnerID)
		}
	}

	all, _ := s.Appointments().List(ctx, appointments.ListFilter{})
	if len(all) != 3 {
		t.Fatalf("appointments should be untouched, got %d", len(all))
	}
}

func TestStore_DeleteOwner_Idempotent(t *testing.T) {
	s := seedStore(t, config.OwnerDeleteCascade)
	ctx := context.Background()

	if err := s.Owners().Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting unknown owner should be a no-op: %v", err)
	}
	if _, err := s.Pets().GetByID(ctx, "p1"); err != nil {
		t.Fatalf("no-op delete must not touch pets: %v", err)
	}
}

func TestStore_DeletePet_CascadesAppointments(t *testing.T) {
	s := seedStore(t, config.OwnerDeleteCascade)
	ctx := context.Background()

	if err := s.Pets().Delete(ctx, "p1"); err != nil {
		t.Fatalf("delete pet: %v", err)
	}
	if err := s.Pets().Delete(ctx, "p1"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}

	if _, err := s.Appointments().GetByID(ctx, "ap1"); !errors.Is(err, appointments.ErrNotFound) {
		t.Fatalf("appointment of deleted pet should be gone, got %v", err)
	}
	left, _ := s.Appointments().List(ctx, appointments.ListFilter{})
	if len(left) != 2 {
		t.Fatalf("expected 2 appointments left, got %d", len(left))
	}
}

func TestStore_PetOwnerMustExist(t *testing.T) {
	s := NewStore(config.OwnerDeleteCascade)
	ctx := context.Background()

	err := s.Pets().Create(ctx, pets.Pet{ID: "p1", OwnerID: ptr("ghost"), Name: "Toby", Species: pets.SpeciesDog})
	if !errors.Is(err, pets.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestStore_AppointmentPetMustExist(t *testing.T) {
	s := NewStore(config.OwnerDeleteCascade)

	err := s.Appointments().Create(context.Background(), appointments.Appointment{ID: "a1", PetID: "ghost", ScheduledAt: base})
	if !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected pets.ErrNotFound, got %v", err)
	}
}

func TestStore_ListAppointments_FiltersAndOrder(t *testing.T) {
	s := seedStore(t, config.OwnerDeleteCascade)
	ctx := context.Background()

	// Cita más temprana creada al final: igual tiene que salir primero.
	early := appointments.Appointment{
		ID:          "early",
		PetID:       "p1",
		ScheduledAt: base.Add(-time.Hour),
		Service:     appointments.ServiceBasicBath,
		Status:      appointments.StatusAccepted,
		Note:        "Corte de uñas",
	}
	if err := s.Appointments().Create(ctx, early); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, _ := s.Appointments().List(ctx, appointments.ListFilter{})
	for i := 1; i < len(all); i++ {
		if all[i].ScheduledAt.Before(all[i-1].ScheduledAt) {
			t.Fatalf("appointments not sorted by time: %+v", all)
		}
	}
	if all[0].ID != "early" {
		t.Fatalf("expected early first, got %s", all[0].ID)
	}

	byPet, _ := s.Appointments().List(ctx, appointments.ListFilter{PetID: "p1"})
	if len(byPet) != 2 {
		t.Fatalf("expected 2 appointments for p1, got %d", len(byPet))
	}

	accepted, _ := s.Appointments().List(ctx, appointments.ListFilter{Statuses: []appointments.Status{appointments.StatusAccepted}})
	if len(accepted) != 1 || accepted[0].ID != "early" {
		t.Fatalf("status filter failed: %+v", accepted)
	}

	grooming, _ := s.Appointments().List(ctx, appointments.ListFilter{Services: []appointments.ServiceType{appointments.ServiceBasicBath}})
	if len(grooming) != 1 {
		t.Fatalf("service filter failed: %+v", grooming)
	}

	from, to := base, base.Add(time.Hour)
	window, _ := s.Appointments().List(ctx, appointments.ListFilter{From: &from, To: &to})
	if len(window) != 2 {
		t.Fatalf("expected 2 appointments in [from,to], got %d", len(window))
	}

	byNote, _ := s.Appointments().List(ctx, appointments.ListFilter{Query: "uñas"})
	if len(byNote) != 1 {
		t.Fatalf("note search failed: %+v", byNote)
	}

	limited, _ := s.Appointments().List(ctx, appointments.ListFilter{Limit: 2})
	if len(limited) != 2 {
		t.Fatalf("expected limit 2, got %d", len(limited))
	}
}

func TestStore_ListPets_SortedByName(t *testing.T) {
	s := seedStore(t, config.OwnerDeleteCascade)
	ctx := context.Background()

	all, _ := s.Pets().List(ctx, pets.ListFilter{})
	want := []string{"Copito", "Mishi", "Toby"}
	if len(all) != len(want) {
		t.Fatalf("expected %d pets, got %d", len(want), len(all))
	}
	for i, name := range want {
		if all[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, all[i].Name)
		}
	}

	mine, _ := s.Pets().List(ctx, pets.ListFilter{OwnerID: "o1"})
	if len(mine) != 2 {
		t.Fatalf("expected 2 pets for o1, got %d", len(mine))
	}

	cats, _ := s.Pets().List(ctx, pets.ListFilter{Species: pets.SpeciesCat})
	if len(cats) != 1 || cats[0].ID != "p2" {
		t.Fatalf("species filter failed: %+v", cats)
	}
}

func TestStore_ListOwners_Search(t *testing.T) {
	s := NewStore("")
	ctx := context.Background()

	_ = s.Owners().Create(ctx, owners.Owner{ID: "o1", Name: "ana", Phone: "+5691234567"})
	_ = s.Owners().Create(ctx, owners.Owner{ID: "o2", Name: "Beto", Phone: "2215550100"})
	_ = s.Owners().Create(ctx, owners.Owner{ID: "o3", Name: "Carla"})

	all, _ := s.Owners().List(ctx, owners.ListFilter{})
	if len(all) != 3 || all[0].ID != "o1" || all[2].ID != "o3" {
		t.Fatalf("owners should be sorted case-insensitive by name: %+v", all)
	}

	byPhone, _ := s.Owners().List(ctx, owners.ListFilter{Query: "555"})
	if len(byPhone) != 1 || byPhone[0].ID != "o2" {
		t.Fatalf("phone search failed: %+v", byPhone)
	}
	// Cada campo se busca por separado: "beto 221" no cruza nombre y teléfono.
	if across, _ := s.Owners().List(ctx, owners.ListFilter{Query: "beto 221"}); len(across) != 0 {
		t.Fatalf("search should not span fields: %+v", across)
	}
}

func TestStore_ListPets_SearchPerField(t *testing.T) {
	s := NewStore("")
	ctx := context.Background()

	_ = s.Pets().Create(ctx, pets.Pet{ID: "p1", Name: "Toby", Breed: "Beagle", Species: pets.SpeciesDog})
	_ = s.Pets().Create(ctx, pets.Pet{ID: "p2", Name: "Rocky", Species: pets.SpeciesDog})

	byBreed, _ := s.Pets().List(ctx, pets.ListFilter{Query: "BEAG"})
	if len(byBreed) != 1 || byBreed[0].ID != "p1" {
		t.Fatalf("breed search failed: %+v", byBreed)
	}
	if across, _ := s.Pets().List(ctx, pets.ListFilter{Query: "toby beagle"}); len(across) != 0 {
		t.Fatalf("search should not span fields: %+v", across)
	}
}
