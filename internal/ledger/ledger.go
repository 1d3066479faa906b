package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rahulbansal29/Landchain/internal/inventory"
	"github.com/rahulbansal29/Landchain/internal/metrics"
	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/pkg/logger"
	"github.com/rahulbansal29/Landchain/pkg/validation"
)

// ApprovalChecker answers whether a wallet may receive tokens right now.
// It must consult the live oracle, not a cache.
type ApprovalChecker interface {
	IsApproved(ctx context.Context, wallet string) (bool, error)
}

// Service is the purchase ledger and mint orchestrator. It records
// purchase requests, moves them through PENDING -> MINTED via the external
// settlement ledger, and aggregates holdings.
type Service struct {
	logger    *logger.Logger
	purchases models.PurchaseRepository
	inventory *inventory.Service
	chain     models.MintLedger
	kyc       ApprovalChecker
	notifier  models.Notifier

	// reconcileFromBlock is where the reconciliation pass starts
	// scanning for on-chain mint events.
	reconcileFromBlock uint64

	// inflight guards against concurrent mint submissions for the same
	// purchase while its settlement call is in flight. settling tracks,
	// per property, the token amounts whose settlement has started but
	// not yet committed, so other mints and direct buys count them
	// against the remaining supply.
	inflightMu sync.Mutex
	inflight   map[int64]struct{}
	settling   map[int64]int64
}

func NewService(
	purchases models.PurchaseRepository,
	inv *inventory.Service,
	chain models.MintLedger,
	kyc ApprovalChecker,
	notifier models.Notifier,
	reconcileFromBlock uint64,
	logger *logger.Logger,
) *Service {
	return &Service{
		logger:             logger,
		purchases:          purchases,
		inventory:          inv,
		chain:              chain,
		kyc:                kyc,
		notifier:           notifier,
		reconcileFromBlock: reconcileFromBlock,
		inflight:           make(map[int64]struct{}),
		settling:           make(map[int64]int64),
	}
}

// RequestPurchase validates a purchase against the property's remaining
// supply minus all other PENDING requests (reserve-aware policy) and
// appends a PENDING record. Pending or missing KYC does not block the
// request, only the mint; the snapshot taken here is advisory.
func (s *Service) RequestPurchase(ctx context.Context, wallet string, propertyID, tokens int64) (*models.PurchaseRequest, error) {
	canonical, err := validation.CanonicalAddress(wallet)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrValidation)
	}
	if tokens <= 0 {
		return nil, fmt.Errorf("tokens must be positive: %w", models.ErrValidation)
	}

	// Snapshot the oracle outside the property lock; an oracle outage
	// degrades the snapshot to false instead of failing the request.
	approved, err := s.kyc.IsApproved(ctx, canonical)
	if err != nil {
		s.logger.Warn("KYC snapshot unavailable, recording as not approved ", "wallet ", canonical, " error ", err)
		approved = false
	}

	purchase := &models.PurchaseRequest{
		Wallet:        canonical,
		PropertyID:    propertyID,
		Tokens:        tokens,
		Status:        models.PurchasePending,
		IsKYCApproved: approved,
		CreatedAt:     time.Now(),
	}

	err = s.inventory.WithProperty(propertyID, func() error {
		property, err := s.inventory.Get(ctx, propertyID)
		if err != nil {
			return err
		}
		if property.Status != models.PropertyActive {
			return fmt.Errorf("property %d is %s: %w", propertyID, property.Status, models.ErrStateConflict)
		}
		pending, err := s.purchases.PendingTokens(ctx, propertyID)
		if err != nil {
			return err
		}
		available := property.TokensAvailable - pending
		if tokens > available {
			return fmt.Errorf("only %d tokens available after pending requests: %w", available, models.ErrSupplyExhausted)
		}
		purchase.TokenPrice = property.TokenPrice
		purchase.MoneyAmount = tokens * property.TokenPrice
		return s.purchases.Create(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}

	metrics.PurchaseRequests.Inc()
	s.logger.Info("Purchase requested ", "id ", purchase.ID, " wallet ", canonical, " property ", propertyID, " tokens ", tokens)
	if s.notifier != nil {
		s.notifier.Notify(&models.Event{
			Type:       models.EventPurchaseRequested,
			Wallet:     canonical,
			PropertyID: propertyID,
			Tokens:     tokens,
		})
	}
	return purchase, nil
}

// ListPending returns PENDING purchases joined with their properties.
func (s *Service) ListPending(ctx context.Context) ([]*models.PurchaseView, error) {
	pending, err := s.purchases.ListByStatus(ctx, models.PurchasePending)
	if err != nil {
		return nil, err
	}
	return s.withProperties(ctx, pending), nil
}

// HoldingsFor aggregates the wallet's MINTED purchases per property.
func (s *Service) HoldingsFor(ctx context.Context, wallet string) ([]*models.Holding, error) {
	canonical, err := validation.CanonicalAddress(wallet)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrValidation)
	}
	minted, err := s.purchases.ListByWallet(ctx, canonical, models.PurchaseMinted)
	if err != nil {
		return nil, err
	}
	return s.buildHoldings(ctx, minted), nil
}

// InvestorsSummary aggregates across all wallets with at least one MINTED
// purchase.
func (s *Service) InvestorsSummary(ctx context.Context) ([]*models.InvestorSummary, error) {
	minted, err := s.purchases.ListByStatus(ctx, models.PurchaseMinted)
	if err != nil {
		return nil, err
	}

	byWallet := make(map[string][]*models.PurchaseRequest)
	for _, purchase := range minted {
		byWallet[purchase.Wallet] = append(byWallet[purchase.Wallet], purchase)
	}

	summaries := make([]*models.InvestorSummary, 0, len(byWallet))
	for wallet, purchases := range byWallet {
		summary := &models.InvestorSummary{Wallet: wallet}
		for _, purchase := range purchases {
			summary.TotalTokens += purchase.Tokens
			summary.TotalInvested += purchase.MoneyAmount
		}
		summary.Holdings = s.buildHoldings(ctx, purchases)
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Wallet < summaries[j].Wallet })
	return summaries, nil
}

// Stats counts purchases for the analytics endpoint.
type Stats struct {
	TotalRequests   int   `json:"totalRequests"`
	Pending         int   `json:"pending"`
	Minted          int   `json:"minted"`
	TokensMinted    int64 `json:"tokensMinted"`
	AmountMinted    int64 `json:"amountMinted"`
	UniqueInvestors int   `json:"uniqueInvestors"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	purchases, err := s.purchases.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{TotalRequests: len(purchases)}
	investors := make(map[string]struct{})
	for _, purchase := range purchases {
		switch purchase.Status {
		case models.PurchasePending:
			stats.Pending++
		case models.PurchaseMinted:
			stats.Minted++
			stats.TokensMinted += purchase.Tokens
			stats.AmountMinted += purchase.MoneyAmount
			investors[purchase.Wallet] = struct{}{}
		}
	}
	stats.UniqueInvestors = len(investors)
	return stats, nil
}

func (s *Service) buildHoldings(ctx context.Context, minted []*models.PurchaseRequest) []*models.Holding {
	byProperty := make(map[int64]*models.Holding)
	for _, purchase := range minted {
		holding, ok := byProperty[purchase.PropertyID]
		if !ok {
			holding = &models.Holding{PropertyID: purchase.PropertyID}
			byProperty[purchase.PropertyID] = holding
		}
		holding.TokensHeld += purchase.Tokens
		holding.TotalInvested += purchase.MoneyAmount
	}

	holdings := make([]*models.Holding, 0, len(byProperty))
	for _, holding := range byProperty {
		if property, err := s.inventory.Get(ctx, holding.PropertyID); err == nil {
			holding.Property = models.NewPropertyView(property)
			if property.TotalTokens > 0 {
				holding.OwnershipPercent = float64(holding.TokensHeld) / float64(property.TotalTokens) * 100
			}
		}
		holdings = append(holdings, holding)
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].PropertyID < holdings[j].PropertyID })
	return holdings
}

func (s *Service) withProperties(ctx context.Context, purchases []*models.PurchaseRequest) []*models.PurchaseView {
	views := make([]*models.PurchaseView, 0, len(purchases))
	for _, purchase := range purchases {
		view := &models.PurchaseView{PurchaseRequest: purchase}
		if property, err := s.inventory.Get(ctx, purchase.PropertyID); err == nil {
			view.Property = models.NewPropertyView(property)
		}
		views = append(views, view)
	}
	return views
}
