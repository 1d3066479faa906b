package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/pkg/logger"
)

// Service owns property lifecycle and the per-property critical sections
// that keep (TokensAvailable, Status) and the pending-token sum consistent
// under concurrent purchase and mint traffic. Locks are striped per
// property, so different properties never contend.
type Service struct {
	logger     *logger.Logger
	properties models.PropertyRepository

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewService(properties models.PropertyRepository, logger *logger.Logger) *Service {
	return &Service{
		logger:     logger,
		properties: properties,
		locks:      make(map[int64]*sync.Mutex),
	}
}

// WithProperty runs fn while holding the property's mutex. Every
// read-validate-write sequence over one property's supply must run inside
// this scope; the external settlement call must not.
func (s *Service) WithProperty(propertyID int64, fn func() error) error {
	lock := s.lockFor(propertyID)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

func (s *Service) lockFor(propertyID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[propertyID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[propertyID] = lock
	}
	return lock
}

// Create registers a new property with its full supply available.
func (s *Service) Create(ctx context.Context, property *models.Property) (*models.Property, error) {
	if property.Name == "" {
		return nil, fmt.Errorf("property name is required: %w", models.ErrValidation)
	}
	if property.TotalTokens <= 0 {
		return nil, fmt.Errorf("totalTokens must be positive: %w", models.ErrValidation)
	}
	if property.TokenPrice <= 0 {
		return nil, fmt.Errorf("tokenPrice must be positive: %w", models.ErrValidation)
	}
	if property.TotalValue == 0 {
		property.TotalValue = property.TotalTokens * property.TokenPrice
	}
	property.TokensAvailable = property.TotalTokens
	property.Status = models.PropertyActive
	property.CreatedAt = time.Now()

	if err := s.properties.Create(ctx, property); err != nil {
		return nil, err
	}
	s.logger.Info("Property created ", "id ", property.ID, " name ", property.Name)
	return property, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Property, error) {
	return s.properties.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*models.Property, error) {
	return s.properties.List(ctx)
}

// Update edits descriptive fields and pricing. Supply counters and
// status are owned by Reserve/Commit and cannot be set here.
func (s *Service) Update(ctx context.Context, id int64, changes *models.PropertyUpdate) (*models.Property, error) {
	var updated *models.Property
	err := s.WithProperty(id, func() error {
		property, err := s.properties.Get(ctx, id)
		if err != nil {
			return err
		}
		if changes.Name != nil {
			if *changes.Name == "" {
				return fmt.Errorf("property name is required: %w", models.ErrValidation)
			}
			property.Name = *changes.Name
		}
		if changes.Address != nil {
			property.Address = *changes.Address
		}
		if changes.Description != nil {
			property.Description = *changes.Description
		}
		if changes.MetadataURI != nil {
			property.MetadataURI = *changes.MetadataURI
		}
		if changes.TokenPrice != nil {
			if *changes.TokenPrice <= 0 {
				return fmt.Errorf("tokenPrice must be positive: %w", models.ErrValidation)
			}
			property.TokenPrice = *changes.TokenPrice
		}
		if err := s.properties.Update(ctx, property); err != nil {
			return err
		}
		updated = property
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (*models.Property, error) {
	var deleted *models.Property
	err := s.WithProperty(id, func() error {
		property, err := s.properties.Get(ctx, id)
		if err != nil {
			return err
		}
		deleted = property
		return s.properties.Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	s.dropLock(id)
	return deleted, nil
}

// dropLock releases the stripe entry for a deleted property so the map
// does not grow without bound.
func (s *Service) dropLock(propertyID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, propertyID)
}

// Reserve validates that n tokens could be taken from the property's
// current supply. It does not change state; Commit applies the decrement
// after settlement confirms.
func (s *Service) Reserve(ctx context.Context, propertyID, n int64) error {
	return s.WithProperty(propertyID, func() error {
		property, err := s.properties.Get(ctx, propertyID)
		if err != nil {
			return err
		}
		return s.ReserveLocked(property, n)
	})
}

// ReserveLocked is the validation half of Reserve for callers already
// inside WithProperty.
func (s *Service) ReserveLocked(property *models.Property, n int64) error {
	if property.Status != models.PropertyActive {
		return fmt.Errorf("property %d is %s: %w", property.ID, property.Status, models.ErrStateConflict)
	}
	if n > property.TokensAvailable {
		return fmt.Errorf("only %d tokens available: %w", property.TokensAvailable, models.ErrSupplyExhausted)
	}
	return nil
}

// Commit decrements the property's available supply by n, clamped at
// zero, and flips the status to SOLD_OUT when the supply is exhausted.
func (s *Service) Commit(ctx context.Context, propertyID, n int64) error {
	return s.WithProperty(propertyID, func() error {
		return s.CommitLocked(ctx, propertyID, n)
	})
}

// CommitLocked is Commit for callers already inside WithProperty.
func (s *Service) CommitLocked(ctx context.Context, propertyID, n int64) error {
	property, err := s.properties.Get(ctx, propertyID)
	if err != nil {
		return err
	}
	property.TokensAvailable -= n
	if property.TokensAvailable <= 0 {
		property.TokensAvailable = 0
		property.Status = models.PropertySoldOut
	}
	return s.properties.Update(ctx, property)
}
