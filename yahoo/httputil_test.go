package yahoo

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// testLogger keeps the fetch logging out of the test output.
func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

// tempCache points the disk cache at a private directory for one test.
func tempCache(t *testing.T) {
	t.Helper()
	old := cacheDir
	cacheDir = t.TempDir()
	t.Cleanup(func() { cacheDir = old })
}

func TestDiskCache_SecondReadComesFromDisk(t *testing.T) {
	tempCache(t)

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `{"value": 42}`)
	}))
	defer srv.Close()

	client := daily(testLogger())
	var payload struct {
		Value int `json:"value"`
	}
	for run := 1; run <= 2; run++ {
		payload.Value = 0
		if err := jwget(client, srv.URL+"/quote", &payload); err != nil {
			t.Fatalf("run %d: jwget() error: %v", run, err)
		}
		if payload.Value != 42 {
			t.Errorf("run %d: value = %d, want 42", run, payload.Value)
		}
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}
}

func TestDiskCache_ErrorResponsesAreNotCached(t *testing.T) {
	tempCache(t)

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := daily(testLogger())
	var payload any
	for run := 1; run <= 2; run++ {
		if err := jwget(client, srv.URL, &payload); err == nil {
			t.Fatalf("run %d: jwget() returned nil error on a 503", run)
		}
	}
	if hits != 2 {
		t.Errorf("server hits = %d, want 2", hits)
	}
}

func TestJwget_SendsBrowserAgent(t *testing.T) {
	tempCache(t)

	agent := ""
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	var payload any
	if err := jwget(srv.Client(), srv.URL, &payload); err != nil {
		t.Fatalf("jwget() error: %v", err)
	}
	if !strings.HasPrefix(agent, "Mozilla/5.0") {
		t.Errorf("User-Agent = %q, want a browser string", agent)
	}
}

func TestJwget_RejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	var payload any
	err := jwget(srv.Client(), srv.URL+"/nope", &payload)
	if err == nil {
		t.Fatal("jwget() returned nil error on a 404")
	}
	if !strings.Contains(err.Error(), "cannot http GET") {
		t.Errorf("error = %q, want it to mention the failed GET", err)
	}
}
