package testing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/segmentio/encoding/json"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/glefebvre/mediadesk/internal/models"
)

// TestDB creates an in-memory SQLite preference store for testing
func TestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database instance: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.Preference{}); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// SetPreference writes a raw preference value
func SetPreference(t *testing.T, db *gorm.DB, key, value string) {
	t.Helper()
	if err := db.Save(&models.Preference{Key: key, Value: value}).Error; err != nil {
		t.Fatalf("failed to write preference %s: %v", key, err)
	}
}

// Call is one request recorded by a FakeServer
type Call struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// FakeServer is an httptest media server serving canned JSON per route and
// recording every request it receives.
type FakeServer struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]route
	calls  []Call
}

type route struct {
	status int
	body   string
}

// NewFakeServer starts a fake media server closed on test cleanup. Routes
// are keyed "METHOD /path" without the path prefix; unknown routes answer
// 404 and mutations default to {}.
func NewFakeServer(t *testing.T) *FakeServer {
	t.Helper()
	f := &FakeServer{routes: make(map[string]route)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// APIRoot returns the base URL with the default path prefix
func (f *FakeServer) APIRoot() string {
	return f.URL + "/mediaserver"
}

// Handle registers a JSON response for a route
func (f *FakeServer) Handle(method, path string, status int, body interface{}) {
	var raw string
	switch b := body.(type) {
	case string:
		raw = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			panic(fmt.Sprintf("fake server: cannot encode body for %s %s: %v", method, path, err))
		}
		raw = string(data)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = route{status: status, body: raw}
}

// Calls returns a copy of the recorded requests
func (f *FakeServer) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo returns the recorded requests for one method, in arrival order
func (f *FakeServer) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeServer) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/mediaserver")

	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, Call{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.RawQuery,
		Body:   string(body),
	})
	rt, ok := f.routes[r.Method+" "+path]
	f.mu.Unlock()

	if !ok {
		if r.Method == http.MethodGet {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		rt = route{status: http.StatusOK, body: "{}"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rt.status)
	w.Write([]byte(rt.body))
}

// AssertCount verifies the count of records in a table
func AssertCount(t *testing.T, db *gorm.DB, model interface{}, expected int64, message string) {
	t.Helper()
	var count int64
	db.Model(model).Count(&count)
	if count != expected {
		t.Fatalf("%s: expected count %d, got %d", message, expected, count)
	}
}

// Background returns a context cancelled at test cleanup
func Background(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
