package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Skryldev/boxing-ring/db"
	"github.com/Skryldev/boxing-ring/fight"
	"github.com/Skryldev/boxing-ring/metrics"
	"github.com/Skryldev/boxing-ring/models"
	"github.com/Skryldev/boxing-ring/random"
	"github.com/Skryldev/boxing-ring/repo"
	"github.com/Skryldev/boxing-ring/ring"
)

type fixture struct {
	srv   *Server
	store *repo.BoxerStore
}

func newFixture(t *testing.T, rng random.Source) fixture {
	t.Helper()

	database, err := db.Open(db.Config{DSN: ":memory:", DriverName: "sqlite3", MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := repo.EnsureSchema(context.Background(), database, "sqlite3"); err != nil {
		t.Fatalf("schema: %v", err)
	}

	store := repo.NewBoxerStore(database, nil)
	engine := fight.NewEngine(rng, store)
	srv := New(store, ring.New(engine, nil), Config{
		ServiceName: "boxing-test",
		Metrics:     metrics.New(metrics.Config{Enabled: true}),
	})
	return fixture{srv: srv, store: store}
}

func (f fixture) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	} else {
		out["raw"] = string(raw)
	}
	return resp.StatusCode, out
}

const (
	aliJSON   = `{"name":"Ali","weight":200,"height":70,"reach":74,"age":28}`
	tysonJSON = `{"name":"Tyson","weight":220,"height":71,"reach":71,"age":25}`
)

func TestProbes(t *testing.T) {
	f := newFixture(t, random.Fixed(0.5))

	if code, body := f.do(t, http.MethodGet, "/", ""); code != 200 || body["response"] != "Hello, World!" {
		t.Fatalf("hello: %d %v", code, body)
	}
	if code, body := f.do(t, http.MethodGet, "/repeat?input=jab", ""); code != 200 || body["body"] != "jab" {
		t.Fatalf("repeat: %d %v", code, body)
	}
	for _, p := range []string{"/health", "/healthcheck"} {
		if code, body := f.do(t, http.MethodGet, p, ""); code != 200 || body["body"] != "OK" {
			t.Fatalf("%s: %d %v", p, code, body)
		}
	}
	if code, _ := f.do(t, http.MethodGet, "/ready", ""); code != 200 {
		t.Fatalf("ready: %d", code)
	}
}

func TestBoxerLifecycle(t *testing.T) {
	f := newFixture(t, random.Fixed(0.5))

	code, body := f.do(t, http.MethodPost, "/api/boxers", aliJSON)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %v", code, body)
	}
	boxer := body["boxer"].(map[string]any)
	if boxer["weight_class"] != string(models.Middleweight) || boxer["fights"].(float64) != 0 {
		t.Fatalf("unexpected boxer view: %v", boxer)
	}

	if code, _ := f.do(t, http.MethodPost, "/api/boxers", aliJSON); code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", code)
	}
	if code, _ := f.do(t, http.MethodPost, "/api/boxers", `{"name":"Kid","weight":100,"height":60,"reach":60,"age":20}`); code != http.StatusBadRequest {
		t.Fatalf("invalid weight: expected 400, got %d", code)
	}

	if code, body := f.do(t, http.MethodGet, "/api/boxers/1", ""); code != 200 || body["boxer"].(map[string]any)["name"] != "Ali" {
		t.Fatalf("get by id: %d %v", code, body)
	}
	if code, _ := f.do(t, http.MethodGet, "/api/boxers/name/Ali", ""); code != 200 {
		t.Fatalf("get by name: %d", code)
	}
	if code, _ := f.do(t, http.MethodGet, "/api/boxers/abc", ""); code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", code)
	}

	if code, body := f.do(t, http.MethodGet, "/api/boxers", ""); code != 200 || len(body["boxers"].([]any)) != 1 {
		t.Fatalf("list: %d %v", code, body)
	}

	if code, _ := f.do(t, http.MethodDelete, "/api/boxers/1", ""); code != 200 {
		t.Fatalf("delete: %d", code)
	}
	if code, _ := f.do(t, http.MethodDelete, "/api/boxers/1", ""); code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", code)
	}
}

func TestRingFightUpdatesLeaderboard(t *testing.T) {
	f := newFixture(t, random.Fixed(0.99))
	f.do(t, http.MethodPost, "/api/boxers", aliJSON)
	f.do(t, http.MethodPost, "/api/boxers", tysonJSON)

	if code, _ := f.do(t, http.MethodPost, "/api/ring/fight", ""); code != http.StatusConflict {
		t.Fatalf("fight in empty ring: expected 409, got %d", code)
	}

	if code, body := f.do(t, http.MethodPost, "/api/ring/enter", `{"name":"Ali"}`); code != 200 || body["state"] != "one_seated" {
		t.Fatalf("enter Ali: %d %v", code, body)
	}
	if code, body := f.do(t, http.MethodPost, "/api/ring/enter", `{"id":2}`); code != 200 || body["state"] != "ready" {
		t.Fatalf("enter Tyson: %d %v", code, body)
	}
	if code, _ := f.do(t, http.MethodPost, "/api/ring/enter", `{"name":"Ali"}`); code != http.StatusConflict {
		t.Fatalf("full ring: expected 409, got %d", code)
	}

	code, body := f.do(t, http.MethodPost, "/api/ring/fight", "")
	if code != 200 || body["winner"] != "Ali" {
		t.Fatalf("fight: %d %v", code, body)
	}

	if _, body := f.do(t, http.MethodGet, "/api/ring", ""); body["state"] != "empty" {
		t.Fatalf("ring not cleared: %v", body)
	}

	code, body = f.do(t, http.MethodGet, "/api/leaderboard?sort=win_pct", "")
	if code != 200 {
		t.Fatalf("leaderboard: %d %v", code, body)
	}
	entries := body["leaderboard"].([]any)
	if len(entries) != 2 || entries[0].(map[string]any)["name"] != "Ali" || entries[0].(map[string]any)["win_pct"].(float64) != 100 {
		t.Fatalf("unexpected leaderboard: %v", entries)
	}

	if code, _ := f.do(t, http.MethodGet, "/api/leaderboard?sort=height", ""); code != http.StatusBadRequest {
		t.Fatalf("bad sort key: expected 400, got %d", code)
	}
}

func TestFightRandomFailure(t *testing.T) {
	failing := random.Func(func(context.Context) (float64, error) {
		return 0, &random.Error{Kind: random.ErrParse, Cause: errors.New(`"abc" is not a number`)}
	})
	f := newFixture(t, failing)
	f.do(t, http.MethodPost, "/api/boxers", aliJSON)
	f.do(t, http.MethodPost, "/api/boxers", tysonJSON)
	f.do(t, http.MethodPost, "/api/ring/enter", `{"name":"Ali"}`)
	f.do(t, http.MethodPost, "/api/ring/enter", `{"name":"Tyson"}`)

	if code, _ := f.do(t, http.MethodPost, "/api/ring/fight", ""); code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", code)
	}

	b, err := f.store.GetByName(context.Background(), "Ali")
	if err != nil {
		t.Fatal(err)
	}
	if b.Fights != 0 {
		t.Fatalf("stats changed after failed fight: %+v", b)
	}
}

func TestEnterRingErrors(t *testing.T) {
	f := newFixture(t, random.Fixed(0.5))
	if code, _ := f.do(t, http.MethodPost, "/api/ring/enter", `{}`); code != http.StatusBadRequest {
		t.Fatalf("empty request: expected 400, got %d", code)
	}
	if code, _ := f.do(t, http.MethodPost, "/api/ring/enter", `{"name":"Nobody"}`); code != http.StatusNotFound {
		t.Fatalf("unknown boxer: expected 404, got %d", code)
	}
	if code, _ := f.do(t, http.MethodPost, "/api/ring/clear", ""); code != 200 {
		t.Fatalf("clear: %d", code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, random.Fixed(0.5))
	f.do(t, http.MethodGet, "/health", "")

	code, body := f.do(t, http.MethodGet, "/metrics", "")
	if code != 200 || !strings.Contains(body["raw"].(string), "boxing_http_requests_total") {
		t.Fatalf("metrics: %d %v", code, body)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.Errorf(models.ErrTypeConstraint, "x"), 400},
		{models.Errorf(models.ErrCapacity, "x"), 409},
		{models.Errorf(models.ErrPrecondition, "x"), 409},
		{&random.Error{Kind: random.ErrTimeout}, 504},
		{&random.Error{Kind: random.ErrUnavailable}, 502},
		{errors.New("boom"), 500},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Fatalf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
