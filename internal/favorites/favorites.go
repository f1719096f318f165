package favorites

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/winescan/internal/catalog"
	"github.com/ensigniasec/winescan/internal/storage"
)

// ErrUnknownWine is returned when adding a wine the catalog does not contain.
var ErrUnknownWine = errors.New("wine is not in the catalog")

// Lookup resolves wine ids. *catalog.Catalog and *catalog.Live both satisfy
// it; a Live lookup follows catalog reloads.
type Lookup interface {
	Get(id string) (catalog.Wine, error)
	Contains(id string) bool
}

// Manager handles the logic for the favorites commands.
type Manager struct {
	Storage *storage.Storage
	Catalog Lookup
}

// NewManager creates a new Manager over the profile at storagePath.
func NewManager(storagePath string, cat Lookup) (*Manager, error) {
	s, err := storage.NewStorage(storagePath)
	if err != nil {
		return nil, err
	}

	return &Manager{Storage: s, Catalog: cat}, nil
}

// IsFavorite reports whether wineID is saved.
func (m *Manager) IsFavorite(wineID string) bool {
	return slices.Contains(m.Storage.Data.Favorites, wineID)
}

// ViewFavorites prints the saved wines to the provided writer.
func (m *Manager) ViewFavorites(w io.Writer) {
	if len(m.Storage.Data.Favorites) == 0 {
		fmt.Fprintln(w, "No favorite wines yet.")
		return
	}

	for _, id := range m.Storage.Data.Favorites {
		wine, err := m.Catalog.Get(id)
		if err != nil {
			// Favorites can outlive a custom catalog; show the bare id.
			fmt.Fprintf(w, "  - %s (not in current catalog)\n", id)
			continue
		}
		fmt.Fprintf(w, "  - %s  %s, %s (%s)\n", id, wine.Label(), wine.Winery, wine.Region)
	}
}

// AddFavorite saves wineID. Adding an existing favorite is a no-op.
func (m *Manager) AddFavorite(wineID string) error {
	logrus.Debugf("Adding to favorites: id=%s", wineID)
	if !m.Catalog.Contains(wineID) {
		return fmt.Errorf("%w: %s", ErrUnknownWine, wineID)
	}
	if m.IsFavorite(wineID) {
		return nil
	}
	m.Storage.Data.Favorites = append(m.Storage.Data.Favorites, wineID)
	return m.Storage.Save()
}

// RemoveFavorite deletes wineID. It reports whether anything was removed.
func (m *Manager) RemoveFavorite(wineID string) (bool, error) {
	logrus.Debugf("Removing from favorites: id=%s", wineID)
	i := slices.Index(m.Storage.Data.Favorites, wineID)
	if i < 0 {
		return false, nil
	}
	m.Storage.Data.Favorites = slices.Delete(m.Storage.Data.Favorites, i, i+1)
	return true, m.Storage.Save()
}

// ToggleFavorite adds or removes wineID and returns the new membership.
func (m *Manager) ToggleFavorite(wineID string) (bool, error) {
	if m.IsFavorite(wineID) {
		_, err := m.RemoveFavorite(wineID)
		return false, err
	}
	if err := m.AddFavorite(wineID); err != nil {
		return false, err
	}
	return true, nil
}

// ResetFavorites clears all favorites.
func (m *Manager) ResetFavorites() error {
	logrus.Debug("Resetting favorites")
	m.Storage.Data.Favorites = []string{}
	return m.Storage.Save()
}
