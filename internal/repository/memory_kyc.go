package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rahulbansal29/Landchain/internal/models"
)

// MemoryKYCStore keeps KYC workflow records in process memory, keyed by
// canonical wallet address.
type MemoryKYCStore struct {
	mu      sync.RWMutex
	records map[string]*models.KYCRecord
}

func NewMemoryKYCStore() *MemoryKYCStore {
	return &MemoryKYCStore{records: make(map[string]*models.KYCRecord)}
}

func (s *MemoryKYCStore) Put(_ context.Context, record *models.KYCRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.records[record.Wallet] = &copied
	return nil
}

func (s *MemoryKYCStore) Get(_ context.Context, wallet string) (*models.KYCRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[wallet]
	if !ok {
		return nil, fmt.Errorf("KYC record for %s: %w", wallet, models.ErrNotFound)
	}
	copied := *record
	return &copied, nil
}

func (s *MemoryKYCStore) List(_ context.Context) ([]*models.KYCRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*models.KYCRecord) bool { return true }), nil
}

func (s *MemoryKYCStore) ListByStatus(_ context.Context, status models.KYCStatus) ([]*models.KYCRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(r *models.KYCRecord) bool { return r.Status == status }), nil
}

func (s *MemoryKYCStore) collect(match func(*models.KYCRecord) bool) []*models.KYCRecord {
	var list []*models.KYCRecord
	for _, record := range s.records {
		if match(record) {
			copied := *record
			list = append(list, &copied)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Wallet < list[j].Wallet })
	return list
}
