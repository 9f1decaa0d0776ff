package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/jairsl2206/restaurant-sub000/internal/database"
	"github.com/jairsl2206/restaurant-sub000/internal/enum"
	"github.com/jairsl2206/restaurant-sub000/internal/order"
)

type mockSettingsStore struct {
	values  map[string]string
	getErr  error
	upserts int
}

func (m *mockSettingsStore) ListSettings(context.Context) ([]database.Setting, error) {
	out := make([]database.Setting, 0, len(m.values))
	for k, v := range m.values {
		out = append(out, database.Setting{Key: k, Value: v})
	}
	return out, nil
}

func (m *mockSettingsStore) GetSetting(_ context.Context, key string) (database.Setting, error) {
	if m.getErr != nil {
		return database.Setting{}, m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return database.Setting{}, pgx.ErrNoRows
	}
	return database.Setting{Key: key, Value: v}, nil
}

func (m *mockSettingsStore) UpsertSetting(_ context.Context, arg database.UpsertSettingParams) (database.Setting, error) {
	m.upserts++
	m.values[arg.Key] = arg.Value
	return database.Setting{Key: arg.Key, Value: arg.Value}, nil
}

func TestSettingsAll_OverlaysDefaults(t *testing.T) {
	store := &mockSettingsStore{values: map[string]string{enum.SettingRestaurantName: "La Cocina"}}
	svc := NewSettingsService(store, map[string]string{
		enum.SettingRestaurantName: "Restaurante",
		enum.SettingStaffPhone:     "+5210000000000",
	})

	got, err := svc.All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[enum.SettingRestaurantName] != "La Cocina" || got[enum.SettingStaffPhone] != "+5210000000000" {
		t.Errorf("unexpected settings: %v", got)
	}
}

func TestSettingsSet(t *testing.T) {
	store := &mockSettingsStore{values: map[string]string{}}
	svc := NewSettingsService(store, nil)

	got, err := svc.Set(context.Background(), map[string]string{enum.SettingStaffPhone: " +5211111111111 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[enum.SettingStaffPhone] != "+5211111111111" {
		t.Errorf("expected trimmed value, got %q", got[enum.SettingStaffPhone])
	}
}

func TestSettingsSet_UnknownKeyWritesNothing(t *testing.T) {
	store := &mockSettingsStore{values: map[string]string{}}
	svc := NewSettingsService(store, nil)

	_, err := svc.Set(context.Background(), map[string]string{
		enum.SettingStaffPhone: "+521",
		"theme":                "dark",
	})
	if !errors.Is(err, order.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.upserts != 0 {
		t.Errorf("expected no writes, got %d", store.upserts)
	}
}

func TestSettingsStaffDirectory(t *testing.T) {
	store := &mockSettingsStore{values: map[string]string{enum.SettingStaffPhone: "+5212222222222"}}
	svc := NewSettingsService(store, map[string]string{
		enum.SettingStaffPhone:     "+5210000000000",
		enum.SettingRestaurantName: "Restaurante",
	})
	ctx := context.Background()

	if got := svc.StaffPhone(ctx); got != "+5212222222222" {
		t.Errorf("stored value should win, got %q", got)
	}
	if got := svc.RestaurantName(ctx); got != "Restaurante" {
		t.Errorf("missing row should fall back to default, got %q", got)
	}

	store.getErr = errBoom
	if got := svc.StaffPhone(ctx); got != "+5210000000000" {
		t.Errorf("read error should fall back to default, got %q", got)
	}
}
