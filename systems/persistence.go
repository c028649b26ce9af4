package systems

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SpeedyZooba/blocky-climb/config"
	"github.com/quasilyte/gdata"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const settingsKey = "input"

// InputSettings are the client input preferences kept between runs.
type InputSettings struct {
	Sensitivity     float64 `json:"sensitivity"`
	SmoothingWindow int     `json:"smoothingWindowMs"`
	InvertPitch     bool    `json:"invertPitch"`
}

func SettingsFromConfig(c config.InputConfig) InputSettings {
	return InputSettings{
		Sensitivity:     c.Sensitivity,
		SmoothingWindow: int(c.SmoothingWindow / time.Millisecond),
		InvertPitch:     c.InvertPitch,
	}
}

// Window is the look smoothing window.
func (s InputSettings) Window() time.Duration {
	return time.Duration(s.SmoothingWindow) * time.Millisecond
}

// Scale multiplies the sensitivity, keeping it within sane bounds.
func (s InputSettings) Scale(factor float64) InputSettings {
	s.Sensitivity *= factor
	switch {
	case s.Sensitivity < 0.01:
		s.Sensitivity = 0.01
	case s.Sensitivity > 10:
		s.Sensitivity = 10
	}
	return s
}

// decodeSettings reads saved settings over defaults. Out of range values
// keep the default.
func decodeSettings(data []byte, defaults InputSettings) (InputSettings, error) {
	saved := defaults
	if err := json.Unmarshal(data, &saved); err != nil {
		return defaults, fmt.Errorf("parse saved settings: %w", err)
	}
	if saved.Sensitivity <= 0 {
		saved.Sensitivity = defaults.Sensitivity
	}
	if saved.SmoothingWindow < 0 {
		saved.SmoothingWindow = defaults.SmoothingWindow
	}
	return saved, nil
}

// SettingsStore persists InputSettings through gdata. A nil store loads the
// defaults and saves nothing.
type SettingsStore struct {
	manager *gdata.Manager
	log     zerolog.Logger
}

func OpenSettings(appName string) (*SettingsStore, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("open settings storage: %w", err)
	}
	return &SettingsStore{
		manager: m,
		log:     log.With().Str("component", "settings").Logger(),
	}, nil
}

// Load returns the saved settings, or defaults when none are stored.
func (st *SettingsStore) Load(defaults InputSettings) InputSettings {
	if st == nil || st.manager == nil {
		return defaults
	}

	data, err := st.manager.LoadItem(settingsKey)
	if err != nil {
		st.log.Warn().Err(err).Msg("could not load settings")
		return defaults
	}
	if len(data) == 0 {
		return defaults
	}

	saved, err := decodeSettings(data, defaults)
	if err != nil {
		st.log.Warn().Err(err).Msg("could not parse saved settings")
		return defaults
	}
	return saved
}

// Save writes s to disk.
func (st *SettingsStore) Save(s InputSettings) error {
	if st == nil || st.manager == nil {
		return nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("serialize settings: %w", err)
	}
	if err := st.manager.SaveItem(settingsKey, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	st.log.Debug().Float64("sensitivity", s.Sensitivity).Bool("invertPitch", s.InvertPitch).Msg("settings saved")
	return nil
}
