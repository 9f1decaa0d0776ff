package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jairsl2206/restaurant-sub000/internal/database"
	"github.com/jairsl2206/restaurant-sub000/internal/enum"
	"github.com/jairsl2206/restaurant-sub000/internal/logger"
	"github.com/jairsl2206/restaurant-sub000/internal/order"
)

// SettingsStore defines the DB methods needed by the settings service.
// Satisfied by *database.Queries.
type SettingsStore interface {
	ListSettings(ctx context.Context) ([]database.Setting, error)
	GetSetting(ctx context.Context, key string) (database.Setting, error)
	UpsertSetting(ctx context.Context, arg database.UpsertSettingParams) (database.Setting, error)
}

// SettingsService reads and writes the restaurant's key/value settings.
// Stored values override the defaults it was built with.
type SettingsService struct {
	store    SettingsStore
	defaults map[string]string
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(store SettingsStore, defaults map[string]string) *SettingsService {
	if defaults == nil {
		defaults = map[string]string{}
	}
	return &SettingsService{store: store, defaults: defaults}
}

// All returns every setting, defaults included.
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	rows, err := s.store.ListSettings(ctx)
	if err != nil {
		return nil, dbError("list settings", err)
	}
	out := make(map[string]string, len(s.defaults)+len(rows))
	for k, v := range s.defaults {
		out[k] = v
	}
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// Set stores known keys. Unknown keys are rejected before anything is written.
func (s *SettingsService) Set(ctx context.Context, values map[string]string) (map[string]string, error) {
	for k := range values {
		if !enum.IsSettingKey(k) {
			return nil, &order.ValidationError{Msg: "unknown setting: " + k}
		}
	}
	for k, v := range values {
		if _, err := s.store.UpsertSetting(ctx, database.UpsertSettingParams{Key: k, Value: strings.TrimSpace(v)}); err != nil {
			return nil, dbError("upsert setting "+k, err)
		}
	}
	return s.All(ctx)
}

// StaffPhone is the number notified of new delivery and pickup orders.
func (s *SettingsService) StaffPhone(ctx context.Context) string {
	return s.value(ctx, enum.SettingStaffPhone)
}

// RestaurantName signs customer notifications.
func (s *SettingsService) RestaurantName(ctx context.Context) string {
	return s.value(ctx, enum.SettingRestaurantName)
}

func (s *SettingsService) value(ctx context.Context, key string) string {
	row, err := s.store.GetSetting(ctx, key)
	if err == nil {
		return row.Value
	}
	if !isNoRows(err) {
		logger.FromCtx(ctx).Warn("read setting", zap.String("key", key), zap.Error(err))
	}
	return s.defaults[key]
}
