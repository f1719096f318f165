package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/winescan/internal/config"
	"github.com/ensigniasec/winescan/internal/validate"
)

// Stats holds the per-user scan counters the scan screen maintains.
type Stats struct {
	TotalScans     int       `json:"total_scans" validate:"gte=0"`
	LastScanAt     time.Time `json:"last_scan_at,omitempty"`
	LastWineID     string    `json:"last_wine_id,omitempty" validate:"omitempty,wineid"`
	CancelledScans int       `json:"cancelled_scans" validate:"gte=0"`
}

// Data represents the structure of the profile file.
type Data struct {
	UserID    string   `json:"user_id,omitempty" validate:"omitempty,uuid4"`
	Onboarded bool     `json:"onboarded"`
	Stats     Stats    `json:"stats"`
	Favorites []string `json:"favorites" validate:"dive,wineid"`
}

// Storage handles the loading and saving of the profile file.
type Storage struct {
	Path string `validate:"required,filepath"`
	Data Data
}

// NewStorage creates a new Storage instance, loading the file if it exists.
func NewStorage(path string) (*Storage, error) {
	expandedPath, err := config.ExpandTilde(path)
	if err != nil {
		return nil, err
	}

	s := &Storage{
		Path: expandedPath,
		Data: Data{
			Favorites: []string{},
		},
	}

	if err := s.Load(); err != nil {
		// If the file doesn't exist, we can ignore the error.
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// Ensure UserID present: generate one on first use.
	if s.Data.UserID == "" {
		s.Data.UserID = uuid.NewString()
	}

	return s, nil
}

// NewOrExistingStorage returns existing storage if the file exists, or creates a new one otherwise.
// When creating a new storage, it writes the initial structure to disk immediately.
func NewOrExistingStorage(path string) (*Storage, error) {
	expandedPath, err := config.ExpandTilde(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(expandedPath); err == nil {
		return NewStorage(path)
	} else if os.IsNotExist(err) {
		s, err := NewStorage(path)
		if err != nil {
			return nil, err
		}
		// Persist initial profile (user id and empty counters) to disk.
		if err := s.Save(); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, err
}

func (s *Storage) Load() error {
	logrus.Debug("Loading profile file from: ", s.Path)
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &s.Data); err != nil {
		return err
	}
	if s.Data.Favorites == nil {
		s.Data.Favorites = []string{}
	}

	// Validate loaded data and self-heal when possible.
	if err := validate.Struct(s.Data); err != nil {
		changed := false
		if s.Data.UserID == "" || validate.Var(s.Data.UserID, "uuid4") != nil {
			logrus.Warn("Invalid user_id found in profile; regenerating.")
			s.Data.UserID = uuid.NewString()
			changed = true
		}
		if validate.Var(s.Data.Favorites, "dive,wineid") != nil {
			logrus.Warn("Invalid favorites found in profile; dropping malformed entries.")
			s.Data.Favorites = slices.DeleteFunc(s.Data.Favorites, func(id string) bool {
				return !validate.IsWineID(id)
			})
			changed = true
		}
		if validate.Struct(s.Data.Stats) != nil {
			logrus.Warn("Invalid scan stats found in profile; resetting counters.")
			s.Data.Stats = Stats{}
			changed = true
		}
		if changed {
			if err := s.Save(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Save writes the profile data to the file.
func (s *Storage) Save() error {
	logrus.Debug("Saving profile file to: ", s.Path)
	// Ensure parent directory exists.
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.Data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.Path, data, 0o600)
}

// RecordScan counts a successful scan of wineID and persists it.
func (s *Storage) RecordScan(wineID string, at time.Time) error {
	s.Data.Stats.TotalScans++
	s.Data.Stats.LastScanAt = at.UTC()
	s.Data.Stats.LastWineID = wineID
	s.Data.Onboarded = true
	return s.Save()
}

// RecordCancelled counts a scan that was reset before finding a wine.
func (s *Storage) RecordCancelled() error {
	s.Data.Stats.CancelledScans++
	return s.Save()
}

// ResetProfile clears counters and favorites but keeps the user id.
func (s *Storage) ResetProfile() error {
	logrus.Debug("Resetting profile")
	s.Data.Stats = Stats{}
	s.Data.Favorites = []string{}
	s.Data.Onboarded = false
	return s.Save()
}
