package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	m := New()
	m.Observe("search_providers", 3*time.Millisecond, nil)
	m.Observe("search_providers", time.Millisecond, errors.New("boom"))
	m.Observe("list_facets", time.Millisecond, nil)

	if got := testutil.ToFloat64(m.Requests.WithLabelValues("search_providers", "ok")); got != 1 {
		t.Errorf("ok requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("search_providers", "error")); got != 1 {
		t.Errorf("error requests = %v, want 1", got)
	}
}

func TestReloadedAndChecked(t *testing.T) {
	m := New()
	m.Reloaded(42, nil)
	m.Reloaded(0, errors.New("db locked"))
	m.Checked(3, 1)

	if got := testutil.ToFloat64(m.Providers); got != 42 {
		t.Errorf("providers = %v, want 42 (failed reload keeps the last size)", got)
	}
	if got := testutil.ToFloat64(m.Reloads.WithLabelValues("error")); got != 1 {
		t.Errorf("failed reloads = %v", got)
	}
	if got := testutil.ToFloat64(m.SourceChecks.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed checks = %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.Providers.Set(7)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "directory_providers 7") {
		t.Errorf("metrics output missing gauge:\n%s", body)
	}
}
