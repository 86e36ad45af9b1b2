package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
	"github.com/mwhitfield/tripatlas/backend/internal/handler"
)

// mockGeocoder is a test double for handler.Geocoder.
type mockGeocoder struct {
	geocode func(ctx context.Context, address string) (domain.ResolvedLocation, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (domain.ResolvedLocation, error) {
	return m.geocode(ctx, address)
}

var _ handler.Geocoder = (*mockGeocoder)(nil)

func TestSearchLocations_FlightDelegatesToAirports(t *testing.T) {
	dir := &mockDirectory{
		search: func(_ context.Context, query string, _ int) ([]domain.AirportSuggestion, error) {
			assert.Equal(t, "jfk", query)
			return []domain.AirportSuggestion{{Code: "JFK", Name: "John F Kennedy Intl"}}, nil
		},
	}
	geo := &mockGeocoder{
		geocode: func(context.Context, string) (domain.ResolvedLocation, error) {
			t.Fatal("flight mode must not geocode")
			return domain.ResolvedLocation{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/locations/search?q=jfk&mode=flight", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, dir, geo, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var results []domain.AirportSuggestion
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&results))
	require.Len(t, results, 1)
	assert.Equal(t, "JFK", results[0].Code)
}

// TestSearchLocations_DefaultModeIsFlight: with no mode parameter the search
// behaves as flight mode.
func TestSearchLocations_DefaultModeIsFlight(t *testing.T) {
	called := false
	dir := &mockDirectory{
		search: func(context.Context, string, int) ([]domain.AirportSuggestion, error) {
			called = true
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/locations/search?q=jfk", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, dir, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestSearchLocations_GroundModeGeocodes(t *testing.T) {
	geo := &mockGeocoder{
		geocode: func(_ context.Context, address string) (domain.ResolvedLocation, error) {
			assert.Equal(t, "Paris", address)
			return domain.ResolvedLocation{Name: "Paris, France", Lat: 48.8566, Lng: 2.3522}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/locations/search?q=Paris&mode=train", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, geo, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var results []domain.ResolvedLocation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&results))
	require.Len(t, results, 1)
	assert.Equal(t, "Paris, France", results[0].Name)
}

// TestSearchLocations_GroundModeIgnoresLimit: the geocoder returns at most
// one match, so a limit parameter on a ground-mode search changes nothing.
func TestSearchLocations_GroundModeIgnoresLimit(t *testing.T) {
	geo := &mockGeocoder{
		geocode: func(_ context.Context, address string) (domain.ResolvedLocation, error) {
			return domain.ResolvedLocation{Name: "Lyon, France", Lat: 45.764, Lng: 4.8357}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/locations/search?q=Lyon&mode=car&limit=5", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, geo, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var results []domain.ResolvedLocation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&results))
	require.Len(t, results, 1)
	assert.Equal(t, "Lyon, France", results[0].Name)
}

func TestSearchLocations_GeocodeMissIsEmptyList(t *testing.T) {
	geo := &mockGeocoder{
		geocode: func(context.Context, string) (domain.ResolvedLocation, error) {
			return domain.ResolvedLocation{}, domain.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/locations/search?q=Atlantis&mode=ferry", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, geo, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSearchLocations_422_UnknownMode(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/locations/search?q=x&mode=teleport", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error *handler.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "validation_error", resp.Error.Code)
}
