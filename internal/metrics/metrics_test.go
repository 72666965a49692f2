package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentHandlerUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/api/profile/{uid}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/profile/{uid}", "404"))
	for _, uid := range []string{"a", "b"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/profile/"+uid, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/profile/{uid}", "404"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(ledgerOperations.WithLabelValues("withdraw", "ok"))
	RecordOperation("withdraw", "ok", 0)
	RecordOperation("withdraw", "ok", 3*time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(ledgerOperations.WithLabelValues("withdraw", "ok"))-before)
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordOperation("signup", "ok", time.Millisecond)

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "balance_ledger_service_operations_total")
}
