package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMemorySnapshotStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemorySnapshotStore()

	cartStore := NewStore()
	cartStore.AddItem(snapshot(1, "29.90"), "presente")
	snap := Snapshot{Lines: cartStore.Lines(), SavedAt: time.Now()}

	if err := store.Save(ctx, "7", snap); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, ok, err := store.Load(ctx, "7")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !ok {
		t.Fatal("expected snapshot to exist")
	}
	if len(loaded.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(loaded.Lines))
	}
	line := loaded.Lines[0]
	if line.CustomizationNote != "presente" {
		t.Fatalf("note lost in round trip: %q", line.CustomizationNote)
	}
	if !line.UnitPrice.Equal(decimal.RequireFromString("29.90")) {
		t.Fatalf("price lost in round trip: %s", line.UnitPrice)
	}

	if err := store.Clear(ctx, "7"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok, _ := store.Load(ctx, "7"); ok {
		t.Fatal("snapshot should be gone after clear")
	}
}

func TestMemorySnapshotStoreMissingUser(t *testing.T) {
	t.Parallel()

	_, ok, err := NewMemorySnapshotStore().Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no snapshot for unknown user")
	}
}

func TestFileSnapshotStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewFileSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSnapshotStore: %v", err)
	}

	if _, ok, err := store.Load(ctx, "7"); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	cartStore := NewStore()
	cartStore.AddItem(snapshot(1, "29.90"), "presente")
	snap := Snapshot{Lines: cartStore.Lines(), SavedAt: time.Now()}

	if err := store.Save(ctx, "7", snap); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, ok, err := store.Load(ctx, "7")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(loaded.Lines) != 1 || loaded.Lines[0].CustomizationNote != "presente" {
		t.Fatalf("unexpected snapshot: %+v", loaded)
	}

	// Snapshots are per user.
	if _, ok, _ := store.Load(ctx, "8"); ok {
		t.Fatal("snapshot leaked across users")
	}

	if err := store.Clear(ctx, "7"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok, _ := store.Load(ctx, "7"); ok {
		t.Fatal("snapshot must be gone after Clear")
	}
}
