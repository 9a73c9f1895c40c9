package queue

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "longbox.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewItemAndFetch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewItem(ctx, "/import/saga-007.cbz")
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	if item.ID == 0 || item.Status != StatusDiscovered {
		t.Fatalf("item = %+v", item)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.SourcePath != "/import/saga-007.cbz" {
		t.Fatalf("source path = %q", fetched.SourcePath)
	}

	if _, err := store.GetByID(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing item err = %v, want ErrNotFound", err)
	}
}

func TestNewItemResetsExistingRow(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewItem(ctx, "/import/saga-007.cbz")
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	item.Status = StatusFailed
	item.ErrorMessage = "corrupt archive"
	item.DestinationPath = "/library/somewhere.cbz"
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	again, err := store.NewItem(ctx, "/import/saga-007.cbz")
	if err != nil {
		t.Fatalf("NewItem rediscovery: %v", err)
	}
	if again.ID != item.ID {
		t.Fatalf("rediscovery created a new row: %d vs %d", again.ID, item.ID)
	}
	if again.Status != StatusDiscovered || again.ErrorMessage != "" || again.DestinationPath != "" {
		t.Fatalf("row not reset: %+v", again)
	}
}

func TestUpdateLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewItem(ctx, "/import/saga-007.cbr")
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}

	for _, status := range []Status{
		StatusOpened, StatusMetadataParsed, StatusReconciled,
		StatusNamed, StatusRepackaged, StatusWritten,
	} {
		item.Status = status
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update to %s: %v", status, err)
		}
	}

	final, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if final.Status != StatusWritten {
		t.Fatalf("status = %s", final.Status)
	}
	if !final.Status.Terminal() {
		t.Fatal("written should be terminal")
	}

	item.Status = Status("bogus")
	if err := store.Update(ctx, item); err == nil {
		t.Fatal("invalid status should be rejected")
	}
}

func TestListFiltersByStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, src := range []string{"/a.cbz", "/b.cbz", "/c.cbz"} {
		if _, err := store.NewItem(ctx, src); err != nil {
			t.Fatalf("NewItem %s: %v", src, err)
		}
	}
	item, err := store.GetBySourcePath(ctx, "/b.cbz")
	if err != nil {
		t.Fatalf("GetBySourcePath: %v", err)
	}
	item.Status = StatusFailed
	item.ErrorMessage = "unsupported format"
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	failed, err := store.List(ctx, StatusFailed)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(failed) != 1 || failed[0].SourcePath != "/b.cbz" {
		t.Fatalf("failed = %+v", failed)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %d items", len(all))
	}

	summary, err := store.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Total != 3 || summary.Failed != 1 || summary.Processing != 2 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	active, err := store.NewItem(ctx, "/active.cbz")
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	done, err := store.NewItem(ctx, "/done.cbz")
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	done.Status = StatusWritten
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update: %v", err)
	}

	removed, err := store.Clear(ctx, true)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := store.GetByID(ctx, active.ID); err != nil {
		t.Fatalf("active item should survive: %v", err)
	}

	if _, err := store.Clear(ctx, false); err != nil {
		t.Fatalf("Clear all: %v", err)
	}
	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("remaining = %d", len(remaining))
	}
}

func TestConcurrentUpdates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	const n = 8
	items := make([]*Item, n)
	for i := range items {
		item, err := store.NewItem(ctx, fmt.Sprintf("/import/issue-%03d.cbz", i))
		if err != nil {
			t.Fatalf("NewItem %d: %v", i, err)
		}
		items[i] = item
	}

	// Workers advance their items on separate pooled connections. The
	// busy timeout has to hold for each of them, not just the first.
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, item := range items {
		wg.Add(1)
		go func(i int, item *Item) {
			defer wg.Done()
			for _, status := range []Status{StatusOpened, StatusNamed, StatusWritten} {
				item.Status = status
				if err := store.Update(ctx, item); err != nil {
					errs[i] = err
					return
				}
			}
		}(i, item)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
	}
	summary, err := store.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Written != n {
		t.Fatalf("written = %d, want %d", summary.Written, n)
	}
}

func TestMarkers(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.Marker(ctx, "/a.cbz"); err != nil || ok {
		t.Fatalf("unset marker: ok=%v err=%v", ok, err)
	}

	// Filesystem mtimes carry sub-second precision; the marker must
	// round-trip it or every staleness comparison drifts.
	first := time.Date(2024, time.June, 1, 12, 0, 0, 712345678, time.UTC)
	if err := store.SetMarker(ctx, "/a.cbz", first); err != nil {
		t.Fatalf("SetMarker: %v", err)
	}
	at, ok, err := store.Marker(ctx, "/a.cbz")
	if err != nil || !ok {
		t.Fatalf("marker: ok=%v err=%v", ok, err)
	}
	if !at.Equal(first) {
		t.Fatalf("marker = %v, want %v", at, first)
	}

	second := first.Add(48 * time.Hour)
	if err := store.SetMarker(ctx, "/a.cbz", second); err != nil {
		t.Fatalf("SetMarker update: %v", err)
	}
	at, _, _ = store.Marker(ctx, "/a.cbz")
	if !at.Equal(second) {
		t.Fatalf("marker = %v, want %v", at, second)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "longbox.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	store.Close()

	_, err = Open(path)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
}
