package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulbansal29/Landchain/internal/models"
)

func TestMintPurchase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	purchase, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 30)
	require.NoError(t, err)

	minted, err := f.svc.MintPurchase(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseMinted, minted.Status)
	assert.NotEmpty(t, minted.TxHash)
	require.NotNil(t, minted.MintedAt)

	got, err := f.inv.Get(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), got.TokensAvailable)

	stored, err := f.purchases.Get(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseMinted, stored.Status)
}

func TestMintPurchaseAlreadyMinted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	purchase, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 30)
	require.NoError(t, err)
	_, err = f.svc.MintPurchase(ctx, purchase.ID)
	require.NoError(t, err)

	_, err = f.svc.MintPurchase(ctx, purchase.ID)
	assert.ErrorIs(t, err, models.ErrStateConflict)
	assert.Equal(t, 1, f.chain.mints)
}

func TestMintPurchaseNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.MintPurchase(context.Background(), 42)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMintPurchaseRejectsStaleKYCSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	purchase, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 30)
	require.NoError(t, err)
	require.True(t, purchase.IsKYCApproved)

	// Approval revoked between request and mint.
	f.kyc.approved[walletA] = false

	_, err = f.svc.MintPurchase(ctx, purchase.ID)
	assert.ErrorIs(t, err, models.ErrKYCNotApproved)
	assert.Equal(t, 0, f.chain.mints)

	stored, err := f.purchases.Get(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchasePending, stored.Status)
}

func TestMintPurchasePreservesApprovalSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	f.kyc.approved[walletA] = false
	purchase, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 30)
	require.NoError(t, err)
	require.False(t, purchase.IsKYCApproved)

	// Approval granted between request and mint; the request-time
	// snapshot stays on the record as history.
	f.kyc.approved[walletA] = true
	_, err = f.svc.MintPurchase(ctx, purchase.ID)
	require.NoError(t, err)

	stored, err := f.purchases.Get(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseMinted, stored.Status)
	assert.False(t, stored.IsKYCApproved)
}

func TestMintPurchaseSettlementFailureStaysPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	purchase, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 30)
	require.NoError(t, err)

	f.chain.mintFn = func(context.Context, string, int64) (string, error) {
		return "", fmt.Errorf("rpc timeout: %w", models.ErrSettlement)
	}
	_, err = f.svc.MintPurchase(ctx, purchase.ID)
	assert.ErrorIs(t, err, models.ErrSettlement)

	stored, err := f.purchases.Get(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchasePending, stored.Status)

	got, err := f.inv.Get(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.TokensAvailable)

	// The purchase stays retryable after the ledger recovers.
	f.chain.mintFn = nil
	minted, err := f.svc.MintPurchase(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseMinted, minted.Status)
}

func TestMintPurchaseExhaustedSupply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	first, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 60)
	require.NoError(t, err)
	second, err := f.svc.RequestPurchase(ctx, walletB, property.ID, 40)
	require.NoError(t, err)
	_, err = f.svc.MintPurchase(ctx, first.ID)
	require.NoError(t, err)
	_, err = f.svc.MintPurchase(ctx, second.ID)
	require.NoError(t, err)

	got, err := f.inv.Get(ctx, property.ID)
	require.NoError(t, err)
	require.Equal(t, models.PropertySoldOut, got.Status)

	// Sold out: nothing further can be bought or minted.
	_, err = f.svc.BuyDirect(ctx, walletA, property.ID, 1)
	assert.ErrorIs(t, err, models.ErrStateConflict)
}

func TestConcurrentMintOfSamePurchase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	purchase, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 30)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.MintPurchase(ctx, purchase.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, models.ErrStateConflict)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.chain.mints)

	got, err := f.inv.Get(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), got.TokensAvailable)
}

func TestBuyDirect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	purchase, err := f.svc.BuyDirect(ctx, walletA, property.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseMinted, purchase.Status)
	assert.Equal(t, int64(1250), purchase.MoneyAmount)
	assert.NotEmpty(t, purchase.TxHash)
	require.NotNil(t, purchase.MintedAt)

	got, err := f.inv.Get(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(75), got.TokensAvailable)
}

func TestBuyDirectRequiresApproval(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)
	f.kyc.approved[walletA] = false

	_, err := f.svc.BuyDirect(ctx, walletA, property.ID, 25)
	assert.ErrorIs(t, err, models.ErrKYCNotApproved)
	assert.Equal(t, 0, f.chain.mints)
}

func TestBuyDirectSupplyExhausted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	_, err := f.svc.BuyDirect(ctx, walletA, property.ID, 101)
	assert.ErrorIs(t, err, models.ErrSupplyExhausted)
	assert.Equal(t, 0, f.chain.mints)
}

func TestBuyDirectCountsInFlightSettlement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	purchase, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 80)
	require.NoError(t, err)

	settling := make(chan struct{})
	proceed := make(chan struct{})
	f.chain.mintFn = func(context.Context, string, int64) (string, error) {
		close(settling)
		<-proceed
		return "0xslow", nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.MintPurchase(ctx, purchase.ID)
		done <- err
	}()
	<-settling

	// 80 tokens are out for settlement, so only 20 remain sellable even
	// though the supply counter has not moved yet.
	_, err = f.svc.BuyDirect(ctx, walletB, property.ID, 30)
	assert.ErrorIs(t, err, models.ErrSupplyExhausted)

	close(proceed)
	require.NoError(t, <-done)

	f.chain.mintFn = nil
	bought, err := f.svc.BuyDirect(ctx, walletB, property.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseMinted, bought.Status)

	got, err := f.inv.Get(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.TokensAvailable)
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	purchase, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 30)
	require.NoError(t, err)
	minted, err := f.svc.MintPurchase(ctx, purchase.ID)
	require.NoError(t, err)

	f.chain.events = []models.MintEvent{
		{Wallet: walletA, Tokens: 30, TxHash: minted.TxHash, BlockNumber: 10},
	}
	report, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, 1, report.MatchedCount)
}

func TestReconcileDivergence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	purchase, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 30)
	require.NoError(t, err)
	_, err = f.svc.MintPurchase(ctx, purchase.ID)
	require.NoError(t, err)

	// The chain reports a mint this service never recorded, and misses
	// the one it did.
	f.chain.events = []models.MintEvent{
		{Wallet: walletB, Tokens: 99, TxHash: "0xrogue", BlockNumber: 11},
	}
	report, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, report.Consistent())
	require.Len(t, report.OnChainOnly, 1)
	assert.Equal(t, "0xrogue", report.OnChainOnly[0].TxHash)
	require.Len(t, report.LocalOnly, 1)
	assert.Equal(t, purchase.ID, report.LocalOnly[0].ID)
}

func TestReconcileMatchesByShapeWithoutTxHash(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	property := f.createProperty(t, 100, 50)

	purchase, err := f.svc.RequestPurchase(ctx, walletA, property.ID, 30)
	require.NoError(t, err)
	_, err = f.svc.MintPurchase(ctx, purchase.ID)
	require.NoError(t, err)

	// Same wallet and amount under a different hash still pairs up.
	f.chain.events = []models.MintEvent{
		{Wallet: walletA, Tokens: 30, TxHash: "0xother", BlockNumber: 12},
	}
	report, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, 1, report.MatchedCount)
}
