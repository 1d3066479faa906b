package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rahulbansal29/Landchain/internal/models"
)

// MemoryChallengeStore keeps auth challenges in process memory, keyed by
// canonical wallet address. Challenges are ephemeral and have no
// persistent backend.
type MemoryChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]*models.AuthChallenge
}

func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{challenges: make(map[string]*models.AuthChallenge)}
}

func (s *MemoryChallengeStore) Put(_ context.Context, challenge *models.AuthChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *challenge
	s.challenges[challenge.Wallet] = &copied
	return nil
}

func (s *MemoryChallengeStore) Get(_ context.Context, wallet string) (*models.AuthChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge, ok := s.challenges[wallet]
	if !ok {
		return nil, fmt.Errorf("challenge for %s: %w", wallet, models.ErrNotFound)
	}
	copied := *challenge
	return &copied, nil
}

func (s *MemoryChallengeStore) Delete(_ context.Context, wallet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, wallet)
	return nil
}

func (s *MemoryChallengeStore) DeleteIssuedBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for wallet, challenge := range s.challenges {
		if challenge.IssuedAt.Before(cutoff) {
			delete(s.challenges, wallet)
			deleted++
		}
	}
	return deleted, nil
}
