package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"longbox/internal/reconcile"
)

func fakeMatch(series, number string) *reconcile.Record {
	return &reconcile.Record{
		Publisher: reconcile.Publisher{Name: "Image"},
		Series:    reconcile.Series{Name: series},
		Issue:     reconcile.Issue{Number: number},
	}
}

type named struct {
	name string
	fn   Func
}

func (n named) Name() string { return n.name }

func (n named) Search(ctx context.Context, id Identity) (*reconcile.Record, error) {
	return n.fn(ctx, id)
}

func TestOrderedFirstMatchWins(t *testing.T) {
	var secondCalled bool
	first := named{"first", func(context.Context, Identity) (*reconcile.Record, error) {
		return fakeMatch("Saga", "7"), nil
	}}
	second := named{"second", func(context.Context, Identity) (*reconcile.Record, error) {
		secondCalled = true
		return fakeMatch("Wrong", "1"), nil
	}}

	rec, err := NewOrdered(nil, first, second).Search(context.Background(), Identity{Series: "Saga"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rec == nil || rec.Series.Name != "Saga" {
		t.Fatalf("rec = %+v", rec)
	}
	if secondCalled {
		t.Error("second gateway should not run after a match")
	}
}

func TestOrderedSkipsUnavailable(t *testing.T) {
	broken := named{"broken", func(context.Context, Identity) (*reconcile.Record, error) {
		return nil, fmt.Errorf("%w: connection refused", ErrUnavailable)
	}}
	working := named{"working", func(context.Context, Identity) (*reconcile.Record, error) {
		return fakeMatch("Saga", "7"), nil
	}}

	rec, err := NewOrdered(nil, broken, working).Search(context.Background(), Identity{Series: "Saga"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rec == nil || rec.Series.Name != "Saga" {
		t.Fatalf("rec = %+v", rec)
	}
}

func TestOrderedAllMiss(t *testing.T) {
	miss := named{"miss", func(context.Context, Identity) (*reconcile.Record, error) {
		return nil, nil
	}}
	rec, err := NewOrdered(nil, miss, miss).Search(context.Background(), Identity{Series: "Saga"})
	if err != nil || rec != nil {
		t.Fatalf("rec = %+v, err = %v, want miss", rec, err)
	}
}

func TestResolveSkipsCompleteRecords(t *testing.T) {
	calls := 0
	gw := Func(func(context.Context, Identity) (*reconcile.Record, error) {
		calls++
		return nil, nil
	})
	rec := reconcile.Record{Series: reconcile.Series{Name: "Saga"}, Issue: reconcile.Issue{Number: "7"}}
	if err := Resolve(context.Background(), gw, &rec); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if calls != 0 {
		t.Errorf("gateway called %d times for a complete record", calls)
	}
}

func TestResolveMergesMatch(t *testing.T) {
	gw := Func(func(_ context.Context, id Identity) (*reconcile.Record, error) {
		if id.Series != "Saga" {
			t.Errorf("identity series = %q", id.Series)
		}
		return fakeMatch("Saga", "7"), nil
	})
	rec := reconcile.Record{Series: reconcile.Series{Name: "Saga"}}
	if err := Resolve(context.Background(), gw, &rec); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec.Issue.Number != "7" || rec.Publisher.Name != "Image" {
		t.Fatalf("rec = %+v", rec)
	}
}

func TestResolveUnavailableBecomesIncompleteIdentity(t *testing.T) {
	gw := Func(func(context.Context, Identity) (*reconcile.Record, error) {
		return nil, fmt.Errorf("%w: timeout", ErrUnavailable)
	})
	rec := reconcile.Record{Series: reconcile.Series{Name: "Saga"}}
	err := Resolve(context.Background(), gw, &rec)
	if !errors.Is(err, reconcile.ErrIncompleteIdentity) {
		t.Fatalf("err = %v, want ErrIncompleteIdentity", err)
	}
}

func TestMetronSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/series/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != "Saga" {
			t.Errorf("series name = %q", r.URL.Query().Get("name"))
		}
		fmt.Fprint(w, `{"count": 1, "results": [{"id": 55, "series": "Saga"}]}`)
	})
	mux.HandleFunc("/api/issue/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("series_id") != "55" || r.URL.Query().Get("number") != "7" {
			t.Errorf("issue query = %v", r.URL.Query())
		}
		fmt.Fprint(w, `{"count": 1, "results": [{"id": 1234}]}`)
	})
	mux.HandleFunc("/api/issue/1234/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"id": 1234,
			"number": "7",
			"publisher": {"id": 2, "name": "Image"},
			"series": {"id": 55, "name": "Saga", "sort_name": "Saga", "volume": 1, "year_began": 2012, "series_type": {"name": "Ongoing Series"}},
			"cover_date": "2012-11-14",
			"page": 32
		}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewMetron(MetronOptions{BaseURL: srv.URL + "/api", Retries: 1})
	rec, err := client.Search(context.Background(), Identity{Series: "Saga", Number: "7"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rec == nil {
		t.Fatal("no match")
	}
	if rec.Publisher.Name != "Image" || rec.Series.Name != "Saga" || rec.Issue.Number != "7" {
		t.Fatalf("rec = %+v", rec)
	}
	if rec.Series.Format != reconcile.FormatSingleIssue {
		t.Errorf("format = %q", rec.Series.Format)
	}
	if rec.Issue.CoverDate.String() != "2012-11-14" {
		t.Errorf("cover date = %q", rec.Issue.CoverDate.String())
	}
}

func TestMetronAmbiguousSeriesIsMiss(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/series/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count": 2, "results": [{"id": 1}, {"id": 2}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewMetron(MetronOptions{BaseURL: srv.URL + "/api", Retries: 1})
	rec, err := client.Search(context.Background(), Identity{Series: "Saga", Number: "7"})
	if err != nil || rec != nil {
		t.Fatalf("rec = %+v, err = %v, want miss", rec, err)
	}
}

func TestMetronServerErrorIsUnavailable(t *testing.T) {
	// 501 is the one server error the retry policy gives up on
	// immediately, which keeps the test off the backoff timer.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusNotImplemented)
	}))
	defer srv.Close()

	client := NewMetron(MetronOptions{BaseURL: srv.URL + "/api", Retries: 1})
	_, err := client.Search(context.Background(), Identity{Series: "Saga"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestMetronNotFoundIsMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such series", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewMetron(MetronOptions{BaseURL: srv.URL + "/api", Retries: 1})
	rec, err := client.Search(context.Background(), Identity{Series: "Saga"})
	if err != nil || rec != nil {
		t.Fatalf("rec = %+v, err = %v, want a quiet miss", rec, err)
	}
}

func TestCache(t *testing.T) {
	calls := 0
	gw := named{"metron", func(context.Context, Identity) (*reconcile.Record, error) {
		calls++
		return fakeMatch("Saga", "7"), nil
	}}

	cache, err := NewCache(filepath.Join(t.TempDir(), "lookup.db"), gw, 0)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	defer cache.Close()

	id := Identity{Series: "Saga", Number: "7"}
	for i := 0; i < 3; i++ {
		rec, err := cache.Search(context.Background(), id)
		if err != nil {
			t.Fatalf("Search %d: %v", i, err)
		}
		if rec == nil || rec.Series.Name != "Saga" {
			t.Fatalf("Search %d rec = %+v", i, rec)
		}
	}
	if calls != 1 {
		t.Errorf("backing gateway called %d times, want 1", calls)
	}
}
