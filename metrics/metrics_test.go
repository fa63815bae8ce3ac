package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Skryldev/boxing-ring/models"
	"github.com/Skryldev/boxing-ring/random"
)

func TestDisabledCollectorIsNoop(t *testing.T) {
	c := New(Config{Enabled: false})
	if c != nil {
		t.Fatal("expected nil collector when disabled")
	}
	// None of these may panic.
	c.RecordQuery("SELECT 1", time.Millisecond, true)
	c.ObserveRandomFetch(time.Millisecond, nil)
	c.ObserveFight(nil)
	c.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	if c.Handler() != nil || c.Registry() != nil {
		t.Fatal("disabled collector must not expose a handler")
	}
}

func TestObserveFightCountsByResult(t *testing.T) {
	c := New(Config{Enabled: true})
	c.ObserveFight(nil)
	c.ObserveFight(nil)
	c.ObserveFight(fmt.Errorf("fight: draw: %w", &random.Error{Kind: random.ErrTimeout}))

	if got := testutil.ToFloat64(c.fights.WithLabelValues(ResultOK)); got != 2 {
		t.Fatalf("expected 2 ok fights, got %v", got)
	}
	if got := testutil.ToFloat64(c.fights.WithLabelValues(ResultTimeout)); got != 1 {
		t.Fatalf("expected 1 timed out fight, got %v", got)
	}
}

func TestRecordQueryLabelsByVerb(t *testing.T) {
	c := New(Config{Enabled: true})
	c.RecordQuery("\n\t\tSELECT id FROM boxers", time.Millisecond, true)
	c.RecordQuery("UPDATE boxers SET wins = wins + 1", time.Millisecond, false)

	if got := testutil.CollectAndCount(c.queryDuration); got != 2 {
		t.Fatalf("expected 2 series, got %d", got)
	}
}

func TestResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ResultOK},
		{&random.Error{Kind: random.ErrUnavailable}, ResultUnavailable},
		{&random.Error{Kind: random.ErrParse}, ResultParse},
		{models.Errorf(models.ErrNotFound, "x"), ResultNotFound},
		{models.Errorf(models.ErrValidation, "x"), ResultInvalid},
		{errors.New("boom"), ResultError},
	}
	for _, tt := range tests {
		if got := Result(tt.err); got != tt.want {
			t.Fatalf("Result(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New(Config{Enabled: true, ServiceName: "boxing-test"})
	c.RecordHTTPRequest("GET", "/api/boxers", 200, 3*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	if !strings.Contains(text, `boxing_http_requests_total{method="GET",route="/api/boxers",service="boxing-test",status="200"} 1`) {
		t.Fatalf("request counter missing from exposition:\n%s", text)
	}
}
