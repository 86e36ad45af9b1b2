package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
	"github.com/mwhitfield/tripatlas/backend/internal/handler"
)

// mockDirectory is a test double for handler.AirportDirectory.
type mockDirectory struct {
	lookup func(ctx context.Context, code string) (domain.Airport, error)
	search func(ctx context.Context, query string, limit int) ([]domain.AirportSuggestion, error)
}

func (m *mockDirectory) Lookup(ctx context.Context, code string) (domain.Airport, error) {
	return m.lookup(ctx, code)
}
func (m *mockDirectory) Search(ctx context.Context, query string, limit int) ([]domain.AirportSuggestion, error) {
	return m.search(ctx, query, limit)
}

var _ handler.AirportDirectory = (*mockDirectory)(nil)

// ---- GET /api/airports/search ----------------------------------------------

func TestSearchAirports_200(t *testing.T) {
	var gotQuery string
	var gotLimit int
	dir := &mockDirectory{
		search: func(_ context.Context, query string, limit int) ([]domain.AirportSuggestion, error) {
			gotQuery, gotLimit = query, limit
			return []domain.AirportSuggestion{
				{Code: "JFK", Name: "John F Kennedy Intl, New York", City: "John F Kennedy Intl", Lat: 40.6413, Lng: -73.7781},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/airports/search?q=jfk&limit=5", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, dir, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jfk", gotQuery)
	assert.Equal(t, 5, gotLimit)

	var results []domain.AirportSuggestion
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&results))
	require.Len(t, results, 1)
	assert.Equal(t, "JFK", results[0].Code)
}

func TestSearchAirports_BlankQuery(t *testing.T) {
	dir := &mockDirectory{
		search: func(context.Context, string, int) ([]domain.AirportSuggestion, error) {
			return []domain.AirportSuggestion{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/airports/search", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, dir, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

// ---- GET /api/airports/{code} ----------------------------------------------

func TestValidateAirport_Known(t *testing.T) {
	dir := &mockDirectory{
		lookup: func(_ context.Context, code string) (domain.Airport, error) {
			assert.Equal(t, "JFK", code)
			return domain.Airport{Code: "JFK", Name: "John F Kennedy Intl", Lat: 40.6413, Lng: -73.7781}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/airports/JFK", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, dir, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var airport domain.Airport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&airport))
	assert.Equal(t, "John F Kennedy Intl", airport.Name)
}

// TestValidateAirport_StoreFailure: only a genuine miss maps to the null
// body; a store failure keeps its 503 so it is not mistaken for an invalid
// code.
func TestValidateAirport_StoreFailure(t *testing.T) {
	dir := &mockDirectory{
		lookup: func(context.Context, string) (domain.Airport, error) {
			return domain.Airport{}, fmt.Errorf("directory.Lookup: %w", domain.ErrStoreUnavailable)
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/airports/JFK", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, dir, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp struct {
		Error *handler.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "store_unavailable", resp.Error.Code)
}

// TestValidateAirport_Unknown: an unknown code answers 200 with a JSON null
// body, which the UI reads as "invalid code".
func TestValidateAirport_Unknown(t *testing.T) {
	dir := &mockDirectory{
		lookup: func(context.Context, string) (domain.Airport, error) {
			return domain.Airport{}, domain.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/airports/XXX", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, dir, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `null`, rec.Body.String())
}
