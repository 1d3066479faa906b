package ledger

import (
	"context"
	"time"

	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/pkg/validation"
)

// ReconciliationReport compares MINTED purchase records against the mint
// events the token contract actually emitted.
type ReconciliationReport struct {
	CheckedAt    time.Time                 `json:"checkedAt"`
	FromBlock    uint64                    `json:"fromBlock"`
	MatchedCount int                       `json:"matchedCount"`
	OnChainOnly  []models.MintEvent        `json:"onChainOnly"`
	LocalOnly    []*models.PurchaseRequest `json:"localOnly"`
}

// Consistent reports whether the books and the chain agree.
func (r *ReconciliationReport) Consistent() bool {
	return len(r.OnChainOnly) == 0 && len(r.LocalOnly) == 0
}

// Reconcile matches local MINTED records to on-chain mint events by
// transaction hash, falling back to wallet and amount for events settled
// outside this service.
func (s *Service) Reconcile(ctx context.Context) (*ReconciliationReport, error) {
	events, err := s.chain.MintEvents(ctx, s.reconcileFromBlock)
	if err != nil {
		return nil, err
	}
	minted, err := s.purchases.ListByStatus(ctx, models.PurchaseMinted)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		CheckedAt:   time.Now(),
		FromBlock:   s.reconcileFromBlock,
		OnChainOnly: []models.MintEvent{},
		LocalOnly:   []*models.PurchaseRequest{},
	}

	byTxHash := make(map[string]*models.PurchaseRequest, len(minted))
	unmatched := make(map[int64]*models.PurchaseRequest, len(minted))
	for _, purchase := range minted {
		if purchase.TxHash != "" {
			byTxHash[purchase.TxHash] = purchase
		}
		unmatched[purchase.ID] = purchase
	}

	for _, event := range events {
		if purchase, ok := byTxHash[event.TxHash]; ok {
			delete(unmatched, purchase.ID)
			report.MatchedCount++
			continue
		}
		if purchase := matchByShape(unmatched, event); purchase != nil {
			delete(unmatched, purchase.ID)
			report.MatchedCount++
			continue
		}
		report.OnChainOnly = append(report.OnChainOnly, event)
	}
	for _, purchase := range minted {
		if _, still := unmatched[purchase.ID]; still {
			report.LocalOnly = append(report.LocalOnly, purchase)
		}
	}

	if !report.Consistent() {
		s.logger.Warn("Reconciliation found divergence ",
			"onChainOnly ", len(report.OnChainOnly), " localOnly ", len(report.LocalOnly))
	}
	return report, nil
}

func matchByShape(unmatched map[int64]*models.PurchaseRequest, event models.MintEvent) *models.PurchaseRequest {
	for _, purchase := range unmatched {
		if purchase.Tokens == event.Tokens && validation.SameAddress(purchase.Wallet, event.Wallet) {
			return purchase
		}
	}
	return nil
}
