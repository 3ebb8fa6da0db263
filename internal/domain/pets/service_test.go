package pets

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-clinic/internal/domain/owners"
)

type testRepo struct {
	byID map[string]Pet
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Pet{}}
}

func (r *testRepo) Create(ctx context.Context, p Pet) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Pet) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) List(ctx context.Context, filter ListFilter) ([]Pet, error) {
	out := make([]Pet, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

type testOwners map[string]owners.Owner

func (o testOwners) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	own, ok := o[id]
	if !ok {
		return owners.Owner{}, owners.ErrNotFound
	}
	return own, nil
}

var testNow = time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, testOwners{
		"o1": {ID: "o1", Name: "Ana"},
		"o2": {ID: "o2", Name: "Luis"},
	})
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func strPtr(s string) *string { return &s }

func TestService_Create(t *testing.T) {
	svc, repo := newTestService()
	bd := time.Date(2019, 4, 2, 0, 0, 0, 0, time.UTC)

	p, err := svc.Create(context.Background(), CreateInput{
		Name:      " Toby ",
		Species:   "Dog",
		Breed:     "Beagle",
		BirthDate: &bd,
		OwnerID:   strPtr(" o1 "),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if p.Name != "Toby" || p.Species != SpeciesDog || p.OwnerID == nil || *p.OwnerID != "o1" {
		t.Fatalf("unexpected pet: %+v", p)
	}
	if _, ok := repo.byID[p.ID]; !ok {
		t.Fatalf("pet not persisted")
	}

	// Sin dueño también vale.
	stray, err := svc.Create(context.Background(), CreateInput{Name: "Copito", Species: "rabbit", OwnerID: strPtr("")})
	if err != nil {
		t.Fatalf("Create without owner error: %v", err)
	}
	if stray.OwnerID != nil {
		t.Fatalf("blank owner_id should mean no owner")
	}
}

func TestService_Create_Rejects(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	future := testNow.Add(24 * time.Hour)

	cases := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"empty name", CreateInput{Name: " ", Species: "dog"}, ErrInvalidInput},
		{"unknown species", CreateInput{Name: "Nemo", Species: "fish"}, ErrInvalidInput},
		{"future birth date", CreateInput{Name: "Toby", Species: "dog", BirthDate: &future}, ErrInvalidInput},
		{"unknown owner", CreateInput{Name: "Toby", Species: "dog", OwnerID: strPtr("ghost")}, ErrOwnerNotFound},
	}

	for _, c := range cases {
		if _, err := svc.Create(ctx, c.in); !errors.Is(err, c.want) {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, err)
		}
	}
}

func TestService_Update_OptionalFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	bd := time.Date(2019, 4, 2, 0, 0, 0, 0, time.UTC)

	p, _ := svc.Create(ctx, CreateInput{Name: "Toby", Species: "dog", BirthDate: &bd, OwnerID: strPtr("o1")})

	// Campos ausentes no se tocan.
	updated, err := svc.Update(ctx, p.ID, UpdateInput{Breed: strPtr("Beagle")})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.BirthDate == nil || updated.OwnerID == nil || updated.Breed != "Beagle" {
		t.Fatalf("unexpected pet: %+v", updated)
	}

	// null explícito limpia.
	updated, err = svc.Update(ctx, p.ID, UpdateInput{
		BirthDate: Optional[time.Time]{Present: true},
		OwnerID:   Optional[string]{Present: true},
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.BirthDate != nil || updated.OwnerID != nil {
		t.Fatalf("expected birth date and owner cleared, got %+v", updated)
	}

	// Cambio de dueño.
	updated, err = svc.Update(ctx, p.ID, UpdateInput{OwnerID: Optional[string]{Present: true, Value: strPtr("o2")}})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.OwnerID == nil || *updated.OwnerID != "o2" {
		t.Fatalf("expected owner o2, got %+v", updated.OwnerID)
	}

	if _, err := svc.Update(ctx, p.ID, UpdateInput{OwnerID: Optional[string]{Present: true, Value: strPtr("ghost")}}); !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, p.ID, UpdateInput{Species: strPtr("parrot")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Update(ctx, "nope", UpdateInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_OwnerOf(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	o, err := svc.OwnerOf(ctx, Pet{OwnerID: strPtr("o1")})
	if err != nil || o == nil || o.Name != "Ana" {
		t.Fatalf("expected owner Ana, got %+v err=%v", o, err)
	}

	o, err = svc.OwnerOf(ctx, Pet{})
	if err != nil || o != nil {
		t.Fatalf("pet without owner should return nil, got %+v err=%v", o, err)
	}

	o, err = svc.OwnerOf(ctx, Pet{OwnerID: strPtr("gone")})
	if err != nil || o != nil {
		t.Fatalf("dangling owner should return nil, got %+v err=%v", o, err)
	}
}

type testBookings map[string]bool

func (b testBookings) HasGroomingAppointments(ctx context.Context, petID string) (bool, error) {
	return b[petID], nil
}

func TestService_Update_SpeciesLockedByGrooming(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	groomed, _ := svc.Create(ctx, CreateInput{Name: "Toby", Species: "dog"})
	plain, _ := svc.Create(ctx, CreateInput{Name: "Rocky", Species: "dog"})
	svc.SetBookings(testBookings{groomed.ID: true})

	if _, err := svc.Update(ctx, groomed.ID, UpdateInput{Species: strPtr("cat")}); !errors.Is(err, ErrSpeciesLocked) {
		t.Fatalf("expected ErrSpeciesLocked, got %v", err)
	}
	got, _ := svc.GetByID(ctx, groomed.ID)
	if got.Species != SpeciesDog {
		t.Fatalf("rejected update must not change species, got %s", got.Species)
	}

	// Seguir siendo perro no choca con nada.
	if _, err := svc.Update(ctx, groomed.ID, UpdateInput{Species: strPtr("dog"), Name: strPtr("Toby II")}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	// Sin baños puede cambiar.
	updated, err := svc.Update(ctx, plain.ID, UpdateInput{Species: strPtr("rabbit")})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Species != SpeciesRabbit {
		t.Fatalf("expected rabbit, got %s", updated.Species)
	}
}
