package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rahulbansal29/Landchain/internal/models"
)

// MemoryPropertyStore keeps properties in process memory. It is the
// default backend; the mint orchestrator's per-property critical sections
// live in the inventory service, not here.
type MemoryPropertyStore struct {
	mu         sync.RWMutex
	properties map[int64]*models.Property
	nextID     int64
}

func NewMemoryPropertyStore() *MemoryPropertyStore {
	return &MemoryPropertyStore{
		properties: make(map[int64]*models.Property),
		nextID:     1,
	}
}

func (s *MemoryPropertyStore) Create(_ context.Context, property *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	property.ID = s.nextID
	s.nextID++
	if property.CreatedAt.IsZero() {
		property.CreatedAt = time.Now()
	}
	copied := *property
	s.properties[property.ID] = &copied
	return nil
}

func (s *MemoryPropertyStore) Get(_ context.Context, id int64) (*models.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	property, ok := s.properties[id]
	if !ok {
		return nil, fmt.Errorf("property %d: %w", id, models.ErrNotFound)
	}
	copied := *property
	return &copied, nil
}

func (s *MemoryPropertyStore) List(_ context.Context) ([]*models.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*models.Property, 0, len(s.properties))
	for _, property := range s.properties {
		copied := *property
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *MemoryPropertyStore) Update(_ context.Context, property *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[property.ID]; !ok {
		return fmt.Errorf("property %d: %w", property.ID, models.ErrNotFound)
	}
	copied := *property
	s.properties[property.ID] = &copied
	return nil
}

func (s *MemoryPropertyStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[id]; !ok {
		return fmt.Errorf("property %d: %w", id, models.ErrNotFound)
	}
	delete(s.properties, id)
	return nil
}
