package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rahulbansal29/Landchain/internal/metrics"
	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/pkg/validation"
)

// MintPurchase settles a PENDING purchase on the external ledger and
// commits it. The flow is validate under the property lock, mint outside
// it, then re-validate and commit under the lock again. A settlement
// failure leaves the purchase PENDING and retryable.
func (s *Service) MintPurchase(ctx context.Context, purchaseID int64) (*models.PurchaseRequest, error) {
	if err := s.acquire(purchaseID); err != nil {
		return nil, err
	}
	defer s.release(purchaseID)

	purchase, err := s.purchases.Get(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.Status != models.PurchasePending {
		return nil, fmt.Errorf("purchase %d is %s: %w", purchaseID, purchase.Status, models.ErrStateConflict)
	}

	// Pre-validate supply before paying for a transaction that commit
	// would then have to reconcile. Tokens already out for settlement on
	// other mints count against the supply.
	if err := s.reserveForSettlement(ctx, purchase.PropertyID, purchase.Tokens); err != nil {
		return nil, err
	}
	defer s.endSettle(purchase.PropertyID, purchase.Tokens)

	// The approval snapshot on the request is advisory; the mint gate is
	// the live oracle.
	approved, err := s.kyc.IsApproved(ctx, purchase.Wallet)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, fmt.Errorf("wallet %s: %w", purchase.Wallet, models.ErrKYCNotApproved)
	}

	txHash, err := s.chain.Mint(ctx, purchase.Wallet, purchase.Tokens)
	if err != nil {
		metrics.Mints.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.logger.Error("Mint settlement failed, purchase stays pending ", "purchase ", purchaseID, " error ", err)
		return nil, err
	}

	if err := s.commitMint(ctx, purchase, txHash); err != nil {
		return nil, err
	}
	metrics.Mints.WithLabelValues(metrics.OutcomeSettled).Inc()
	s.logger.Info("Purchase minted ", "purchase ", purchaseID, " wallet ", purchase.Wallet, " tokens ", purchase.Tokens, " tx ", txHash)
	if s.notifier != nil {
		s.notifier.Notify(&models.Event{
			Type:       models.EventMintSettled,
			Wallet:     purchase.Wallet,
			PropertyID: purchase.PropertyID,
			Tokens:     purchase.Tokens,
			TxHash:     txHash,
		})
	}
	return purchase, nil
}

// BuyDirect mints tokens for an already-approved wallet without a prior
// request, recording the purchase as MINTED in one step.
func (s *Service) BuyDirect(ctx context.Context, wallet string, propertyID, tokens int64) (*models.PurchaseRequest, error) {
	canonical, err := validation.CanonicalAddress(wallet)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrValidation)
	}
	if tokens <= 0 {
		return nil, fmt.Errorf("tokens must be positive: %w", models.ErrValidation)
	}

	property, err := s.inventory.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if err := s.reserveForSettlement(ctx, propertyID, tokens); err != nil {
		return nil, err
	}
	defer s.endSettle(propertyID, tokens)

	approved, err := s.kyc.IsApproved(ctx, canonical)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, fmt.Errorf("wallet %s: %w", canonical, models.ErrKYCNotApproved)
	}

	txHash, err := s.chain.Mint(ctx, canonical, tokens)
	if err != nil {
		metrics.Mints.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, err
	}

	now := time.Now()
	purchase := &models.PurchaseRequest{
		Wallet:        canonical,
		PropertyID:    propertyID,
		Tokens:        tokens,
		TokenPrice:    property.TokenPrice,
		MoneyAmount:   tokens * property.TokenPrice,
		Status:        models.PurchaseMinted,
		IsKYCApproved: true,
		TxHash:        txHash,
		CreatedAt:     now,
		MintedAt:      &now,
	}

	err = s.inventory.WithProperty(propertyID, func() error {
		s.checkCommitSupply(ctx, propertyID, tokens, txHash)
		if err := s.inventory.CommitLocked(ctx, propertyID, tokens); err != nil {
			return err
		}
		return s.purchases.Create(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}

	metrics.Mints.WithLabelValues(metrics.OutcomeSettled).Inc()
	s.logger.Info("Direct purchase minted ", "wallet ", canonical, " property ", propertyID, " tokens ", tokens, " tx ", txHash)
	if s.notifier != nil {
		s.notifier.Notify(&models.Event{
			Type:       models.EventMintSettled,
			Wallet:     canonical,
			PropertyID: propertyID,
			Tokens:     tokens,
			TxHash:     txHash,
		})
	}
	return purchase, nil
}

// commitMint transitions the purchase to MINTED and decrements supply
// inside one property critical section.
func (s *Service) commitMint(ctx context.Context, purchase *models.PurchaseRequest, txHash string) error {
	return s.inventory.WithProperty(purchase.PropertyID, func() error {
		s.checkCommitSupply(ctx, purchase.PropertyID, purchase.Tokens, txHash)
		if err := s.inventory.CommitLocked(ctx, purchase.PropertyID, purchase.Tokens); err != nil {
			return err
		}
		now := time.Now()
		if err := s.purchases.MarkMinted(ctx, purchase.ID, txHash, now); err != nil {
			// Supply moved but the record did not; reconciliation will
			// surface the on-chain-only mint.
			s.logger.Error("Tokens minted on chain but purchase record update failed ", "purchase ", purchase.ID, " tx ", txHash, " error ", err)
			return err
		}
		purchase.Status = models.PurchaseMinted
		purchase.TxHash = txHash
		purchase.MintedAt = &now
		return nil
	})
}

// checkCommitSupply logs when supply shrank between settlement and
// commit. The commit still happens, clamped at zero, so the books track
// what the chain already did.
func (s *Service) checkCommitSupply(ctx context.Context, propertyID, tokens int64, txHash string) {
	property, err := s.inventory.Get(ctx, propertyID)
	if err != nil {
		return
	}
	if tokens > property.TokensAvailable {
		s.logger.Error("Supply diverged between settlement and commit ",
			"property ", propertyID, " tokens ", tokens, " available ", property.TokensAvailable, " tx ", txHash)
	}
}

// reserveForSettlement validates supply under the property lock, counting
// tokens other settlements already have in flight, and registers this
// amount until the caller calls endSettle.
func (s *Service) reserveForSettlement(ctx context.Context, propertyID, tokens int64) error {
	return s.inventory.WithProperty(propertyID, func() error {
		property, err := s.inventory.Get(ctx, propertyID)
		if err != nil {
			return err
		}
		if err := s.inventory.ReserveLocked(property, tokens); err != nil {
			return err
		}
		if settling := s.settlingTokens(propertyID); tokens > property.TokensAvailable-settling {
			return fmt.Errorf("only %d tokens available with %d settling: %w",
				property.TokensAvailable, settling, models.ErrSupplyExhausted)
		}
		s.beginSettle(propertyID, tokens)
		return nil
	})
}

func (s *Service) beginSettle(propertyID, tokens int64) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	s.settling[propertyID] += tokens
}

func (s *Service) endSettle(propertyID, tokens int64) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	s.settling[propertyID] -= tokens
	if s.settling[propertyID] <= 0 {
		delete(s.settling, propertyID)
	}
}

func (s *Service) settlingTokens(propertyID int64) int64 {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	return s.settling[propertyID]
}

func (s *Service) acquire(purchaseID int64) error {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, busy := s.inflight[purchaseID]; busy {
		return fmt.Errorf("purchase %d mint already in flight: %w", purchaseID, models.ErrStateConflict)
	}
	s.inflight[purchaseID] = struct{}{}
	return nil
}

func (s *Service) release(purchaseID int64) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	delete(s.inflight, purchaseID)
}
