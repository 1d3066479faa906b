package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulbansal29/Landchain/internal/inventory"
	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/internal/repository"
	"github.com/rahulbansal29/Landchain/pkg/logger"
)

const (
	walletA = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	walletB = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

// fakeChain is a MintLedger test double. Fields override individual calls.
type fakeChain struct {
	mu      sync.Mutex
	mints   int
	mintFn  func(ctx context.Context, wallet string, tokens int64) (string, error)
	events  []models.MintEvent
	balance string
}

func (f *fakeChain) Mint(ctx context.Context, wallet string, tokens int64) (string, error) {
	f.mu.Lock()
	f.mints++
	n := f.mints
	f.mu.Unlock()
	if f.mintFn != nil {
		return f.mintFn(ctx, wallet, tokens)
	}
	return fmt.Sprintf("0xtx%d", n), nil
}

func (f *fakeChain) BalanceOf(context.Context, string) (string, error) {
	return f.balance, nil
}

func (f *fakeChain) TokenInfo(context.Context) (*models.TokenInfo, error) {
	return &models.TokenInfo{Name: "Landchain SPV", Symbol: "LSPV", Decimals: 18}, nil
}

func (f *fakeChain) MintEvents(context.Context, uint64) ([]models.MintEvent, error) {
	return f.events, nil
}

// fakeKYC is an ApprovalChecker double keyed by wallet.
type fakeKYC struct {
	approved map[string]bool
	err      error
}

func (f *fakeKYC) IsApproved(_ context.Context, wallet string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.approved[wallet], nil
}

type fixture struct {
	svc       *Service
	inv       *inventory.Service
	purchases *repository.MemoryPurchaseStore
	chain     *fakeChain
	kyc       *fakeKYC
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	inv := inventory.NewService(repository.NewMemoryPropertyStore(), logger.NewNop())
	purchases := repository.NewMemoryPurchaseStore()
	chain := &fakeChain{}
	checker := &fakeKYC{approved: map[string]bool{walletA: true, walletB: true}}
	svc := NewService(purchases, inv, chain, checker, nil, 0, logger.NewNop())
	return &fixture{svc: svc, inv: inv, purchases: purchases, chain: chain, kyc: checker}
}

func (f *fixture) createProperty(t *testing.T, totalTokens, price int64) *models.Property {
	t.Helper()
	property, err := f.inv.Create(context.Background(), &models.Property{
		Name: "Dockside Lofts", TotalTokens: totalTokens, TokenPrice: price,
	})
	require.NoError(t, err)
	return property
}

func TestRequestPurchase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	purchase, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, models.PurchasePending, purchase.Status)
	assert.Equal(t, int64(50), purchase.TokenPrice)
	assert.Equal(t, int64(500), purchase.MoneyAmount)
	assert.True(t, purchase.IsKYCApproved)

	// Requests never move supply; only a settled mint does.
	got, err := f.inv.Get(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.TokensAvailable)
}

func TestRequestPurchaseValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	_, err := f.svc.RequestPurchase(ctx, "junk", property.ID, 10)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.svc.RequestPurchase(ctx, walletA, property.ID, 0)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.svc.RequestPurchase(ctx, walletA, 42, 10)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRequestPurchaseCountsPendingAgainstSupply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	_, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 60)
	require.NoError(t, err)

	// 60 of 100 are already spoken for.
	_, err = f.svc.RequestPurchase(ctx, walletB, property.ID, 50)
	assert.ErrorIs(t, err, models.ErrSupplyExhausted)

	_, err = f.svc.RequestPurchase(ctx, walletB, property.ID, 40)
	assert.NoError(t, err)
}

func TestRequestPurchaseSnapshotDegradesOnOracleError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)
	f.kyc.err = fmt.Errorf("registry unreachable")

	purchase, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 10)
	require.NoError(t, err)
	assert.False(t, purchase.IsKYCApproved)
}

func TestConcurrentRequestsNeverOversell(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 10)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	accepted := 0
	for err := range errs {
		if err == nil {
			accepted++
		} else {
			assert.ErrorIs(t, err, models.ErrSupplyExhausted)
		}
	}
	assert.Equal(t, 10, accepted)

	pending, err := f.purchases.PendingTokens(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), pending)
}

func TestHoldingsFor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)
	other := f.createProperty(t, 200, 10)

	for _, req := range []struct {
		propertyID int64
		tokens     int64
	}{
		{property.ID, 10},
		{property.ID, 15},
		{other.ID, 20},
	} {
		purchase, err := f.svc.RequestPurchase(ctx, walletA, req.propertyID, req.tokens)
		require.NoError(t, err)
		_, err = f.svc.MintPurchase(ctx, purchase.ID)
		require.NoError(t, err)
	}

	holdings, err := f.svc.HoldingsFor(ctx, walletA)
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	assert.Equal(t, property.ID, holdings[0].PropertyID)
	assert.Equal(t, int64(25), holdings[0].TokensHeld)
	assert.Equal(t, int64(1250), holdings[0].TotalInvested)
	assert.InDelta(t, 25.0, holdings[0].OwnershipPercent, 0.001)

	assert.Equal(t, other.ID, holdings[1].PropertyID)
	assert.Equal(t, int64(20), holdings[1].TokensHeld)
	assert.InDelta(t, 10.0, holdings[1].OwnershipPercent, 0.001)
}

func TestInvestorsSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	for _, req := range []struct {
		wallet string
		tokens int64
	}{
		{walletA, 10},
		{walletB, 20},
	} {
		purchase, err := f.svc.RequestPurchase(ctx, req.wallet, property.ID, req.tokens)
		require.NoError(t, err)
		_, err = f.svc.MintPurchase(ctx, purchase.ID)
		require.NoError(t, err)
	}

	summaries, err := f.svc.InvestorsSummary(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byWallet := map[string]*models.InvestorSummary{}
	for _, summary := range summaries {
		byWallet[summary.Wallet] = summary
	}
	assert.Equal(t, int64(10), byWallet[walletA].TotalTokens)
	assert.Equal(t, int64(500), byWallet[walletA].TotalInvested)
	assert.Equal(t, int64(20), byWallet[walletB].TotalTokens)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	first, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 10)
	require.NoError(t, err)
	_, err = f.svc.MintPurchase(ctx, first.ID)
	require.NoError(t, err)
	_, err = f.svc.RequestPurchase(ctx, walletB, property.ID, 20)
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalRequests)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Minted)
	assert.Equal(t, int64(10), stats.TokensMinted)
	assert.Equal(t, int64(500), stats.AmountMinted)
	assert.Equal(t, 1, stats.UniqueInvestors)
}
