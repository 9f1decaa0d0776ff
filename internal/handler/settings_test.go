package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/jairsl2206/restaurant-sub000/internal/handler"
)

type mockSettingsService struct {
	values map[string]string
	err    error
}

func (m *mockSettingsService) All(_ context.Context) (map[string]string, error) {
	return m.values, m.err
}

func (m *mockSettingsService) Set(_ context.Context, values map[string]string) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	for k, v := range values {
		m.values[k] = v
	}
	return m.values, nil
}

func setupSettingsRouter(svc handler.SettingsServicer) *chi.Mux {
	h := handler.NewSettingsHandler(svc)
	r := chi.NewRouter()
	r.Route("/settings", h.RegisterRoutes)
	return r
}

func TestSettingsGet(t *testing.T) {
	svc := &mockSettingsService{values: map[string]string{"restaurant_name": "La Esquina", "staff_phone": "5500000000"}}

	rr := doJSON(t, setupSettingsRouter(svc), "GET", "/settings", nil)
	assertStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["restaurant_name"] != "La Esquina" || resp["staff_phone"] != "5500000000" {
		t.Errorf("settings: got %v", resp)
	}
}

func TestSettingsUpdate(t *testing.T) {
	svc := &mockSettingsService{values: map[string]string{"restaurant_name": "La Esquina"}}

	rr := doJSON(t, setupSettingsRouter(svc), "PUT", "/settings", map[string]string{"restaurant_name": "El Rincón"})
	assertStatus(t, rr, http.StatusOK)

	if resp := decodeResponse(t, rr); resp["restaurant_name"] != "El Rincón" {
		t.Errorf("restaurant_name: got %v", resp["restaurant_name"])
	}
}

func TestSettingsUpdate_Empty(t *testing.T) {
	rr := doJSON(t, setupSettingsRouter(&mockSettingsService{}), "PUT", "/settings", map[string]string{})
	assertStatus(t, rr, http.StatusBadRequest)
	assertError(t, rr, "no settings given")
}

func TestSettingsGet_DatabaseError(t *testing.T) {
	rr := doJSON(t, setupSettingsRouter(&mockSettingsService{err: errDB}), "GET", "/settings", nil)
	assertStatus(t, rr, http.StatusInternalServerError)
}
