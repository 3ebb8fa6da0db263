package cache

import (
	"context"
	"errors"
	"testing"

	"vet-clinic/internal/adapters/storage/memory"
	"vet-clinic/internal/config"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
)

// countingRepo cuenta los GetByID que llegan al repo real.
type countingRepo struct {
	pets.Repository
	gets int
}

func (r *countingRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.gets++
	return r.Repository.GetByID(ctx, id)
}

func newCachedStore(t *testing.T, rule config.OwnerDeleteRule) (*PetsRepo, *countingRepo, owners.Repository) {
	t.Helper()
	store := memory.NewStore(rule)
	inner := &countingRepo{Repository: store.Pets()}

	cached, err := NewPetsRepo(inner, 8, nil)
	if err != nil {
		t.Fatalf("NewPetsRepo: %v", err)
	}
	return cached, inner, WrapOwners(store.Owners(), cached)
}

func TestPetsRepo_ReadThrough(t *testing.T) {
	cached, inner, _ := newCachedStore(t, config.OwnerDeleteCascade)
	ctx := context.Background()

	if err := cached.Create(ctx, pets.Pet{ID: "p1", Name: "Toby", Species: pets.SpeciesDog}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Create ya deja la mascota en cache.
	for i := 0; i < 3; i++ {
		if _, err := cached.GetByID(ctx, "p1"); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	if inner.gets != 0 {
		t.Fatalf("expected cache hits only, inner got %d calls", inner.gets)
	}

	cached.Purge()
	_, _ = cached.GetByID(ctx, "p1")
	_, _ = cached.GetByID(ctx, "p1")
	if inner.gets != 1 {
		t.Fatalf("expected one miss after purge, got %d", inner.gets)
	}
	if cached.Len() != 1 {
		t.Fatalf("expected 1 cached pet, got %d", cached.Len())
	}
}

func TestPetsRepo_UpdateAndDeleteInvalidate(t *testing.T) {
	cached, _, _ := newCachedStore(t, config.OwnerDeleteCascade)
	ctx := context.Background()

	p := pets.Pet{ID: "p1", Name: "Toby", Species: pets.SpeciesDog}
	_ = cached.Create(ctx, p)

	p.Name = "Toby II"
	if err := cached.Update(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := cached.GetByID(ctx, "p1")
	if got.Name != "Toby II" {
		t.Fatalf("stale cache after update: %+v", got)
	}

	if err := cached.Delete(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cached.GetByID(ctx, "p1"); !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestWrapOwners_DeletePurgesPets(t *testing.T) {
	cached, _, ownerRepo := newCachedStore(t, config.OwnerDeleteNullify)
	ctx := context.Background()

	if err := ownerRepo.Create(ctx, owners.Owner{ID: "o1", Name: "Ana"}); err != nil {
		t.Fatalf("create owner: %v", err)
	}
	oid := "o1"
	if err := cached.Create(ctx, pets.Pet{ID: "p1", OwnerID: &oid, Name: "Toby", Species: pets.SpeciesDog}); err != nil {
		t.Fatalf("create pet: %v", err)
	}

	if err := ownerRepo.Delete(ctx, "o1"); err != nil {
		t.Fatalf("delete owner: %v", err)
	}

	got, err := cached.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OwnerID != nil {
		t.Fatalf("cached pet still points to deleted owner")
	}
}
