package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAuthDecision(t *testing.T) {
	before := testutil.ToFloat64(authDecisionsTotal.WithLabelValues("deny", "token_expired"))
	ObserveAuthDecision(false, "token_expired")
	after := testutil.ToFloat64(authDecisionsTotal.WithLabelValues("deny", "token_expired"))
	if after != before+1 {
		t.Fatalf("deny counter = %v, want %v", after, before+1)
	}

	before = testutil.ToFloat64(authDecisionsTotal.WithLabelValues("allow", ""))
	ObserveAuthDecision(true, "ignored")
	after = testutil.ToFloat64(authDecisionsTotal.WithLabelValues("allow", ""))
	if after != before+1 {
		t.Fatalf("allow counter = %v, want %v", after, before+1)
	}
}

func TestObserveLoginOutcomes(t *testing.T) {
	before := testutil.ToFloat64(loginsTotal.WithLabelValues("failure"))
	ObserveLogin(false)
	after := testutil.ToFloat64(loginsTotal.WithLabelValues("failure"))
	if after != before+1 {
		t.Fatalf("failure counter = %v, want %v", after, before+1)
	}

	before = testutil.ToFloat64(tokenRefreshesTotal.WithLabelValues("success"))
	ObserveRefresh(true)
	after = testutil.ToFloat64(tokenRefreshesTotal.WithLabelValues("success"))
	if after != before+1 {
		t.Fatalf("success counter = %v, want %v", after, before+1)
	}
}

func TestSetReady(t *testing.T) {
	SetReady(true)
	if got := testutil.ToFloat64(ready); got != 1 {
		t.Fatalf("ready = %v, want 1", got)
	}
	SetReady(false)
	if got := testutil.ToFloat64(ready); got != 0 {
		t.Fatalf("ready = %v, want 0", got)
	}
}

func TestInstrumentCountsRequests(t *testing.T) {
	h := Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/ping", "418"))
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/ping", "418"))
	if after != before+1 {
		t.Fatalf("request counter = %v, want %v", after, before+1)
	}
}
