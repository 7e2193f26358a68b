package geoserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeServer records every request and answers lookups/creates according to
// a configurable set of "existing" resources.
type fakeServer struct {
	mu       sync.Mutex
	existing map[string]bool // GET paths that answer 200
	creates  []string        // POST paths received
	deletes  []string        // DELETE paths received
	failAll  bool            // answer 500 to everything
}

func (f *fakeServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.failAll {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		switch r.Method {
		case http.MethodGet:
			if f.existing[r.URL.Path] {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPost:
			f.creates = append(f.creates, r.URL.Path)
			w.WriteHeader(http.StatusCreated)
		case http.MethodDelete:
			f.deletes = append(f.deletes, r.URL.Path)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func newTestClient(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:  srv.URL,
		User:     "admin",
		Password: "geoserver",
		PGHost:   "db",
		PGPort:   5432,
	})
}

func TestEnsureWorkspace_CreatesWhenMissing(t *testing.T) {
	f := &fakeServer{existing: map[string]bool{}}
	c := newTestClient(t, f)

	if err := c.EnsureWorkspace(context.Background(), "geodata"); err != nil {
		t.Fatalf("EnsureWorkspace() error = %v", err)
	}

	if len(f.creates) != 1 {
		t.Fatalf("got %d creation calls, want exactly 1", len(f.creates))
	}
	if f.creates[0] != "/rest/workspaces" {
		t.Errorf("creation path = %s, want /rest/workspaces", f.creates[0])
	}
}

func TestEnsureWorkspace_NoopWhenFound(t *testing.T) {
	f := &fakeServer{existing: map[string]bool{"/rest/workspaces/geodata": true}}
	c := newTestClient(t, f)

	if err := c.EnsureWorkspace(context.Background(), "geodata"); err != nil {
		t.Fatalf("EnsureWorkspace() error = %v", err)
	}

	if len(f.creates) != 0 {
		t.Errorf("got %d creation calls, want 0 when resource exists", len(f.creates))
	}
}

func TestEnsure_UnexpectedStatusIsError(t *testing.T) {
	f := &fakeServer{failAll: true}
	c := newTestClient(t, f)

	err := c.EnsureWorkspace(context.Background(), "geodata")
	if err == nil {
		t.Fatal("EnsureWorkspace() succeeded against a failing server, want error")
	}
	if !strings.Contains(err.Error(), "unexpected status") {
		t.Errorf("error = %v, want unexpected-status error", err)
	}
}

func TestIdempotentProvisioning(t *testing.T) {
	f := &fakeServer{existing: map[string]bool{}}
	c := newTestClient(t, f)
	ctx := context.Background()

	// First run: nothing exists, each Ensure creates.
	if err := c.EnsureWorkspace(ctx, "geodata"); err != nil {
		t.Fatalf("EnsureWorkspace() error = %v", err)
	}
	if err := c.EnsureCoverageStore(ctx, "geodata", "cs_abc", "file:/data/abc.tif"); err != nil {
		t.Fatalf("EnsureCoverageStore() error = %v", err)
	}
	if err := c.EnsureCoverage(ctx, "geodata", "cs_abc", "layer_abc", "layer_abc"); err != nil {
		t.Fatalf("EnsureCoverage() error = %v", err)
	}
	firstRun := len(f.creates)
	if firstRun != 3 {
		t.Fatalf("first run issued %d creation calls, want 3", firstRun)
	}

	// Second run against identical names: existence checks find everything,
	// no duplicate creation calls.
	f.mu.Lock()
	f.existing["/rest/workspaces/geodata"] = true
	f.existing["/rest/workspaces/geodata/coveragestores/cs_abc"] = true
	f.existing["/rest/workspaces/geodata/coveragestores/cs_abc/coverages/layer_abc"] = true
	f.mu.Unlock()

	if err := c.EnsureWorkspace(ctx, "geodata"); err != nil {
		t.Fatalf("EnsureWorkspace() rerun error = %v", err)
	}
	if err := c.EnsureCoverageStore(ctx, "geodata", "cs_abc", "file:/data/abc.tif"); err != nil {
		t.Fatalf("EnsureCoverageStore() rerun error = %v", err)
	}
	if err := c.EnsureCoverage(ctx, "geodata", "cs_abc", "layer_abc", "layer_abc"); err != nil {
		t.Fatalf("EnsureCoverage() rerun error = %v", err)
	}

	if len(f.creates) != firstRun {
		t.Errorf("rerun issued %d extra creation calls, want 0", len(f.creates)-firstRun)
	}
}

func TestEnsureDataStore_PathsAndDescriptor(t *testing.T) {
	f := &fakeServer{existing: map[string]bool{}}
	c := newTestClient(t, f)

	if err := c.EnsureDataStore(context.Background(), "geodata", "ds_abc"); err != nil {
		t.Fatalf("EnsureDataStore() error = %v", err)
	}
	if len(f.creates) != 1 || f.creates[0] != "/rest/workspaces/geodata/datastores" {
		t.Errorf("creates = %v, want one POST to /rest/workspaces/geodata/datastores", f.creates)
	}

	doc := c.dataStoreDoc("ds_abc")
	params := map[string]string{}
	for _, e := range doc.ConnectionParameters {
		params[e.Key] = e.Value
	}
	if params["dbtype"] != "postgis" {
		t.Errorf("dbtype = %q, want postgis", params["dbtype"])
	}
	if params["preparedStatements"] != "false" {
		t.Errorf("preparedStatements = %q, want false", params["preparedStatements"])
	}
	if params["Loose bbox"] != "true" {
		t.Errorf("Loose bbox = %q, want true", params["Loose bbox"])
	}
}

func TestDeleteStore_RecursiveAndTolerant(t *testing.T) {
	f := &fakeServer{existing: map[string]bool{}}
	c := newTestClient(t, f)

	if err := c.DeleteStore(context.Background(), "geodata", "ds_abc", StoreKindVector); err != nil {
		t.Fatalf("DeleteStore() error = %v", err)
	}
	if len(f.deletes) != 1 {
		t.Fatalf("got %d delete calls, want 1", len(f.deletes))
	}
	if f.deletes[0] != "/rest/workspaces/geodata/datastores/ds_abc" {
		t.Errorf("delete path = %s, want datastore resource path", f.deletes[0])
	}
}

func TestDeleteStore_NotFoundIsNoop(t *testing.T) {
	// A 404 on delete means nothing to clean up, not a failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	if err := c.DeleteStore(context.Background(), "geodata", "gone", StoreKindRaster); err != nil {
		t.Errorf("DeleteStore() of absent store error = %v, want nil", err)
	}
}
