// Package api_test contains unit tests for the operational HTTP surface.
package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/api"
	"github.com/slotscout/slotscout/internal/centre"
	"github.com/slotscout/slotscout/internal/collector"
)

type fakeLedger struct {
	rows    []centre.Centre
	loadErr error
}

func (l *fakeLedger) LoadAll() ([]centre.Centre, error) {
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	return l.rows, nil
}

func (l *fakeLedger) Path() string { return "data/centres.csv" }

func doGet(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := api.NewServer(&fakeLedger{}, &api.RunStatus{}, zap.NewNop())
	rec := doGet(t, srv.Handler(), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv := api.NewServer(&fakeLedger{}, &api.RunStatus{}, zap.NewNop())
	rec := doGet(t, srv.Handler(), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestListCentres(t *testing.T) {
	t.Parallel()

	ledger := &fakeLedger{rows: []centre.Centre{
		{Name: "Hendon", Postcode: "NW9 5LL", Availability: centre.Available},
		{Name: "Barnet", Postcode: "EN5 5BL", Availability: centre.NotAvailable},
	}}
	srv := api.NewServer(ledger, &api.RunStatus{}, zap.NewNop())
	rec := doGet(t, srv.Handler(), "/v1/centres")

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Ledger  string          `json:"ledger"`
		Count   int             `json:"count"`
		Centres []centre.Centre `json:"centres"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "data/centres.csv", payload.Ledger)
	assert.Equal(t, 2, payload.Count)
	require.Len(t, payload.Centres, 2)
	assert.Equal(t, "Hendon", payload.Centres[0].Name)
}

func TestListCentresLedgerFailure(t *testing.T) {
	t.Parallel()

	srv := api.NewServer(&fakeLedger{loadErr: errors.New("corrupt")}, &api.RunStatus{}, zap.NewNop())
	rec := doGet(t, srv.Handler(), "/v1/centres")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRunStatusLifecycle(t *testing.T) {
	t.Parallel()

	status := &api.RunStatus{}
	srv := api.NewServer(&fakeLedger{}, status, zap.NewNop())

	rec := doGet(t, srv.Handler(), "/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ran":false}`, rec.Body.String())

	status.Record(collector.Result{
		AreasProcessed:     84,
		EntitiesSeen:       412,
		NewUniquesStored:   7,
		TotalUniquesStored: 319,
		LedgerPath:         "data/centres.csv",
	})

	rec = doGet(t, srv.Handler(), "/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Ran    bool             `json:"ran"`
		Result collector.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.True(t, payload.Ran)
	assert.Equal(t, 84, payload.Result.AreasProcessed)
	assert.Equal(t, 7, payload.Result.NewUniquesStored)
}
