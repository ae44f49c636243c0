package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/evcraddock/homefront/internal/auth"
	"github.com/evcraddock/homefront/internal/db"
	"github.com/evcraddock/homefront/internal/docstore"
	"github.com/evcraddock/homefront/internal/importqueue"
	"github.com/evcraddock/homefront/internal/lead"
	"github.com/evcraddock/homefront/internal/listing"
)

const testToken = "test-admin-token"

// fakeBin is an in-memory JSONBin.
type fakeBin struct {
	mu   sync.Mutex
	doc  []byte
	fail bool
}

func (b *fakeBin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fail {
		http.Error(w, `{"message":"bin unavailable"}`, http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b.doc)
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.doc = data
		_, _ = w.Write([]byte(`{"metadata":{}}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (b *fakeBin) setFail(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail = fail
}

type testEnv struct {
	srv *Server
	db  *db.DB
	bin *fakeBin
}

// newTestEnv creates a server over a temp SQLite database and a document
// queue backed by a fake JSONBin. An empty binID leaves the queue
// unconfigured.
func newTestEnv(t *testing.T, binID string) *testEnv {
	t.Helper()

	d, err := db.Open(db.SQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})

	bin := &fakeBin{doc: []byte(`{"properties":[],"leads":[],"communications":[],"notes":[],"imports":[]}`)}
	ts := httptest.NewServer(bin)
	t.Cleanup(ts.Close)

	store := docstore.NewClient(ts.URL, binID, "master-key")
	imports := importqueue.NewService(importqueue.NewDocumentQueue(store), "")

	srv := NewServer(listing.NewRepository(d), lead.NewRepository(d), imports, testToken)
	return &testEnv{srv: srv, db: d, bin: bin}
}

func apiRequest(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader = &bytes.Buffer{}
	switch b := body.(type) {
	case nil:
	case string:
		reqBody = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	r := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set(auth.HeaderAdminToken, token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "bin")

	w := apiRequest(t, env.srv, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestAPIUpsertAndListListings(t *testing.T) {
	env := newTestEnv(t, "bin")

	w := apiRequest(t, env.srv, "POST", "/listings", "", map[string]interface{}{
		"mlsId":    "MLS-1",
		"address":  "100 Lake Dr",
		"price":    525000,
		"beds":     4,
		"features": []interface{}{"dock", map[string]string{"name": "view"}},
		"images":   []string{"https://cdn.example.com/1.jpg"},
		"waterfront": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var created struct {
		OK bool  `json:"ok"`
		ID int64 `json:"id"`
	}
	decodeBody(t, w, &created)
	if !created.OK || created.ID == 0 {
		t.Errorf("response = %+v", created)
	}

	w = apiRequest(t, env.srv, "GET", "/listings", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Listings []listing.Listing `json:"listings"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(resp.Listings))
	}
	got := resp.Listings[0]
	if got.ID != created.ID || got.Address != "100 Lake Dr" {
		t.Errorf("listing = %+v", got)
	}
	if len(got.Features) != 2 || string(got.Features[1]) != `{"name":"view"}` {
		t.Errorf("features = %s", got.Features)
	}
	if string(got.Extra["waterfront"]) != "true" {
		t.Errorf("extra = %v", got.Extra)
	}
}

func TestAPIUpsertSameMlsIDKeepsOneRow(t *testing.T) {
	env := newTestEnv(t, "bin")

	for _, price := range []int{400000, 390000} {
		w := apiRequest(t, env.srv, "POST", "/listings", "", map[string]interface{}{
			"mlsId": "MLS-7", "address": "7 Pine Ct", "price": price,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
		}
	}

	w := apiRequest(t, env.srv, "GET", "/listings", "", nil)
	var resp struct {
		Listings []listing.Listing `json:"listings"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(resp.Listings))
	}
	if resp.Listings[0].Price == nil || *resp.Listings[0].Price != 390000 {
		t.Errorf("price = %v, want second submission", resp.Listings[0].Price)
	}
}

func TestAPIListListingsOrdering(t *testing.T) {
	env := newTestEnv(t, "bin")

	for i, date := range []interface{}{"2024-01-01", nil, "2024-06-01"} {
		w := apiRequest(t, env.srv, "POST", "/listings", "", map[string]interface{}{
			"address":     []string{"A St", "B St", "C St"}[i],
			"price":       1,
			"listingDate": date,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
		}
	}

	w := apiRequest(t, env.srv, "GET", "/listings", "", nil)
	var resp struct {
		Listings []listing.Listing `json:"listings"`
	}
	decodeBody(t, w, &resp)

	want := []string{"C St", "A St", "B St"}
	if len(resp.Listings) != len(want) {
		t.Fatalf("got %d listings, want %d", len(resp.Listings), len(want))
	}
	for i, addr := range want {
		if resp.Listings[i].Address != addr {
			t.Errorf("listings[%d] = %s, want %s", i, resp.Listings[i].Address, addr)
		}
	}
}

func TestAPIListListingsEmpty(t *testing.T) {
	env := newTestEnv(t, "bin")

	w := apiRequest(t, env.srv, "GET", "/listings", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"listings":[]}` {
		t.Errorf("body = %q, want empty array", w.Body.String())
	}
}

func TestAPIUpsertListingErrors(t *testing.T) {
	env := newTestEnv(t, "bin")

	tests := []struct {
		name     string
		method   string
		body     interface{}
		wantCode int
	}{
		{"missing address", "POST", map[string]interface{}{"price": 1}, http.StatusBadRequest},
		{"bad status", "POST", map[string]interface{}{"address": "1 Main", "status": "Gone"}, http.StatusBadRequest},
		{"malformed json", "POST", `{"address":`, http.StatusBadRequest},
		{"wrong type", "POST", `{"address":"1 Main","beds":"three"}`, http.StatusBadRequest},
		{"method", "DELETE", nil, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := apiRequest(t, env.srv, tt.method, "/listings", "", tt.body)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d; body: %s", w.Code, tt.wantCode, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), `"error"`) {
				t.Errorf("body = %q, want JSON error", w.Body.String())
			}
		})
	}
}

func TestAPIListingsStorageError(t *testing.T) {
	env := newTestEnv(t, "bin")
	if err := env.db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	w := apiRequest(t, env.srv, "GET", "/listings", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "database is closed") {
		t.Errorf("body = %q, want underlying message", w.Body.String())
	}
}
