package catalog

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestStoreGetReturnsDefaultWhenMissing(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()
	store := NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	cat, err := store.Get(context.Background(), "clinic-a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cat.ClinicID != "clinic-a" {
		t.Fatalf("expected clinic-a, got %s", cat.ClinicID)
	}
	if len(cat.Packages) == 0 {
		t.Fatal("expected seeded default packages")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()
	store := NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	cat := DefaultCatalog("clinic-b")
	cat.Packages[0].PriceCashCents = 12300
	if err := store.Set(context.Background(), cat); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(context.Background(), "clinic-b")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Packages[0].PriceCashCents != 12300 {
		t.Fatalf("expected saved price, got %d", got.Packages[0].PriceCashCents)
	}
	if len(got.LensInventory) != len(cat.LensInventory) {
		t.Fatalf("inventory size mismatch: %d vs %d", len(got.LensInventory), len(cat.LensInventory))
	}
}
