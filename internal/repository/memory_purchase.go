package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/pkg/validation"
)

// MemoryPurchaseStore keeps purchase records in process memory. Records
// are append-only apart from the single PENDING -> MINTED transition.
type MemoryPurchaseStore struct {
	mu        sync.RWMutex
	purchases map[int64]*models.PurchaseRequest
	nextID    int64
}

func NewMemoryPurchaseStore() *MemoryPurchaseStore {
	return &MemoryPurchaseStore{
		purchases: make(map[int64]*models.PurchaseRequest),
		nextID:    1,
	}
}

func (s *MemoryPurchaseStore) Create(_ context.Context, purchase *models.PurchaseRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	purchase.ID = s.nextID
	s.nextID++
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now()
	}
	copied := *purchase
	s.purchases[purchase.ID] = &copied
	return nil
}

func (s *MemoryPurchaseStore) Get(_ context.Context, id int64) (*models.PurchaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	purchase, ok := s.purchases[id]
	if !ok {
		return nil, fmt.Errorf("purchase %d: %w", id, models.ErrNotFound)
	}
	copied := *purchase
	return &copied, nil
}

func (s *MemoryPurchaseStore) List(_ context.Context) ([]*models.PurchaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*models.PurchaseRequest) bool { return true }), nil
}

func (s *MemoryPurchaseStore) ListByStatus(_ context.Context, status models.PurchaseStatus) ([]*models.PurchaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(p *models.PurchaseRequest) bool { return p.Status == status }), nil
}

func (s *MemoryPurchaseStore) ListByWallet(_ context.Context, wallet string, status models.PurchaseStatus) ([]*models.PurchaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(p *models.PurchaseRequest) bool {
		return validation.SameAddress(p.Wallet, wallet) && p.Status == status
	}), nil
}

func (s *MemoryPurchaseStore) PendingTokens(_ context.Context, propertyID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, purchase := range s.purchases {
		if purchase.PropertyID == propertyID && purchase.Status == models.PurchasePending {
			total += purchase.Tokens
		}
	}
	return total, nil
}

func (s *MemoryPurchaseStore) MarkMinted(_ context.Context, id int64, txHash string, mintedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	purchase, ok := s.purchases[id]
	if !ok {
		return fmt.Errorf("purchase %d: %w", id, models.ErrNotFound)
	}
	if purchase.Status != models.PurchasePending {
		return fmt.Errorf("purchase %d is %s: %w", id, purchase.Status, models.ErrStateConflict)
	}
	purchase.Status = models.PurchaseMinted
	purchase.TxHash = txHash
	purchase.MintedAt = &mintedAt
	return nil
}

// collect copies matching records sorted by ID. Caller must hold the lock.
func (s *MemoryPurchaseStore) collect(match func(*models.PurchaseRequest) bool) []*models.PurchaseRequest {
	var list []*models.PurchaseRequest
	for _, purchase := range s.purchases {
		if match(purchase) {
			copied := *purchase
			list = append(list, &copied)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
