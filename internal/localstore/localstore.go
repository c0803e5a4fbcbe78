// Package localstore is a small per-user scratch store: a JSON file
// holding a customer's recent orders and their remembered delivery
// location. It is a convenience cache, not a source of truth.
package localstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"campuseats/internal/models"
)

const maxRecentOrders = 20

type fileData struct {
	RecentOrders map[string][]models.Order   `json:"recent_orders"`
	Locations    map[string]DeliveryLocation `json:"locations"`
}

// DeliveryLocation is a previously chosen delivery target.
type DeliveryLocation struct {
	Building string `json:"building"`
	Room     string `json:"room"`
}

// Store reads and writes one scratch file. Safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	data fileData
}

// Open loads (or creates) the scratch file at path.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		data: fileData{
			RecentOrders: make(map[string][]models.Order),
			Locations:    make(map[string]DeliveryLocation),
		},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		// a corrupt scratch file is discarded, not fatal
		return s, nil
	}
	if s.data.RecentOrders == nil {
		s.data.RecentOrders = make(map[string][]models.Order)
	}
	if s.data.Locations == nil {
		s.data.Locations = make(map[string]DeliveryLocation)
	}
	return s, nil
}

func (s *Store) flushLocked() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// SaveOrders remembers a user's most recent orders.
func (s *Store) SaveOrders(identity string, orders []models.Order) error {
	if len(orders) > maxRecentOrders {
		orders = orders[:maxRecentOrders]
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.RecentOrders[identity] = orders
	return s.flushLocked()
}

// LoadOrders returns a user's remembered orders. The data may be
// stale; callers should refresh from the order store afterwards.
func (s *Store) LoadOrders(identity string) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.RecentOrders[identity]
}

// SaveDeliveryLocation remembers the last chosen delivery target.
func (s *Store) SaveDeliveryLocation(identity string, loc DeliveryLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Locations[identity] = loc
	return s.flushLocked()
}

// LoadDeliveryLocation returns the remembered delivery target.
func (s *Store) LoadDeliveryLocation(identity string) (DeliveryLocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.data.Locations[identity]
	return loc, ok
}
