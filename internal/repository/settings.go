package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/agenda/internal/kvstore"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// SettingsKey is the fallback store key holding user settings.
const SettingsKey = "app_config"

// Settings stores user preferences in the fallback store. Reads are cached
// until Reset.
type Settings struct {
	kv  *kvstore.Store
	log *zap.Logger

	mu     sync.Mutex
	cached *types.Settings
}

// NewSettings returns a settings repository over kv.
func NewSettings(kv *kvstore.Store, opts ...Option) *Settings {
	o := newOptions(opts)
	return &Settings{kv: kv, log: o.log}
}

// Get returns the stored settings with empty fields filled from
// types.DefaultSettings. The first read persists the defaults.
func (r *Settings) Get(ctx context.Context) (types.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked()
}

func (r *Settings) getLocked() (types.Settings, error) {
	if r.cached != nil {
		return *r.cached, nil
	}

	var stored types.Settings
	found, err := r.kv.Get(SettingsKey, &stored)
	switch {
	case errors.Is(err, types.ErrMalformedRecord):
		r.log.Warn("discarding unreadable settings", zap.Error(err))
		found = false
	case err != nil:
		return types.Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	s := mergeSettings(types.DefaultSettings(), stored)
	if !found {
		if err := r.kv.Set(SettingsKey, s); err != nil {
			return types.Settings{}, fmt.Errorf("saving default settings: %w", err)
		}
	}
	r.cached = &s
	return s, nil
}

// Update merges patch onto the current settings and stores the result.
func (r *Settings) Update(ctx context.Context, patch types.SettingsPatch) (types.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.getLocked()
	if err != nil {
		return types.Settings{}, err
	}
	patch.ApplyTo(&s)
	s = mergeSettings(types.DefaultSettings(), s)
	if err := r.kv.Set(SettingsKey, s); err != nil {
		return types.Settings{}, fmt.Errorf("saving settings: %w", err)
	}
	r.cached = &s
	return s, nil
}

// Reset drops the cached settings so the next Get reads the store.
func (r *Settings) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
}

// mergeSettings overlays the non-empty fields of over onto def.
func mergeSettings(def, over types.Settings) types.Settings {
	if over.WeatherCity != "" {
		def.WeatherCity = over.WeatherCity
	}
	if over.WeatherCountry != "" {
		def.WeatherCountry = over.WeatherCountry
	}
	if over.HolidayCountry != "" {
		def.HolidayCountry = over.HolidayCountry
	}
	return def
}
