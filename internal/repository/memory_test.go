package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulbansal29/Landchain/internal/models"
)

func TestMemoryPropertyStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPropertyStore()

	first := &models.Property{Name: "Dockside Lofts", TotalTokens: 1000, TokensAvailable: 1000, TokenPrice: 50, Status: models.PropertyActive}
	require.NoError(t, store.Create(ctx, first))
	assert.Equal(t, int64(1), first.ID)

	second := &models.Property{Name: "Hillview Estate", TotalTokens: 500, TokensAvailable: 500, TokenPrice: 120, Status: models.PropertyActive}
	require.NoError(t, store.Create(ctx, second))
	assert.Equal(t, int64(2), second.ID)

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Dockside Lofts", got.Name)

	// Mutating the returned copy must not leak into the store.
	got.TokensAvailable = 0
	again, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), again.TokensAvailable)

	// Update persists supply, status, and the descriptive edits alike.
	again.TokensAvailable = 900
	again.Name = "Dockside Lofts II"
	again.Description = "refurbished"
	again.MetadataURI = "ipfs://dockside"
	again.TokenPrice = 75
	require.NoError(t, store.Update(ctx, again))
	updated, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(900), updated.TokensAvailable)
	assert.Equal(t, "Dockside Lofts II", updated.Name)
	assert.Equal(t, "refurbished", updated.Description)
	assert.Equal(t, "ipfs://dockside", updated.MetadataURI)
	assert.Equal(t, int64(75), updated.TokenPrice)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(2), list[1].ID)

	require.NoError(t, store.Delete(ctx, 2))
	_, err = store.Get(ctx, 2)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, 2), models.ErrNotFound)
}

func TestMemoryPurchaseStoreMarkMinted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPurchaseStore()

	purchase := &models.PurchaseRequest{
		Wallet:     "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		PropertyID: 1,
		Tokens:     10,
		Status:     models.PurchasePending,
	}
	require.NoError(t, store.Create(ctx, purchase))
	require.Equal(t, int64(1), purchase.ID)

	mintedAt := time.Now()
	require.NoError(t, store.MarkMinted(ctx, purchase.ID, "0xabc", mintedAt))

	got, err := store.Get(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseMinted, got.Status)
	assert.Equal(t, "0xabc", got.TxHash)
	require.NotNil(t, got.MintedAt)
	// The request-time approval snapshot is history and survives the mint.
	assert.False(t, got.IsKYCApproved)

	// The transition is one-way.
	assert.ErrorIs(t, store.MarkMinted(ctx, purchase.ID, "0xdef", time.Now()), models.ErrStateConflict)
	assert.ErrorIs(t, store.MarkMinted(ctx, 42, "0xdef", time.Now()), models.ErrNotFound)
}

func TestMemoryPurchaseStorePendingTokens(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPurchaseStore()

	for _, tokens := range []int64{10, 25, 5} {
		require.NoError(t, store.Create(ctx, &models.PurchaseRequest{
			Wallet: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", PropertyID: 7, Tokens: tokens, Status: models.PurchasePending,
		}))
	}
	require.NoError(t, store.Create(ctx, &models.PurchaseRequest{
		Wallet: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", PropertyID: 8, Tokens: 99, Status: models.PurchasePending,
	}))
	require.NoError(t, store.MarkMinted(ctx, 3, "0xabc", time.Now()))

	pending, err := store.PendingTokens(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(35), pending)
}

func TestMemoryPurchaseStoreListByWallet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPurchaseStore()

	wallet := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	other := "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	require.NoError(t, store.Create(ctx, &models.PurchaseRequest{Wallet: wallet, PropertyID: 1, Tokens: 10, Status: models.PurchasePending}))
	require.NoError(t, store.Create(ctx, &models.PurchaseRequest{Wallet: other, PropertyID: 1, Tokens: 20, Status: models.PurchasePending}))
	require.NoError(t, store.MarkMinted(ctx, 1, "0xabc", time.Now()))

	// Address comparison ignores case.
	minted, err := store.ListByWallet(ctx, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", models.PurchaseMinted)
	require.NoError(t, err)
	require.Len(t, minted, 1)
	assert.Equal(t, int64(1), minted[0].ID)
}

func TestMemoryKYCStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryKYCStore()

	wallet := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	require.NoError(t, store.Put(ctx, &models.KYCRecord{Wallet: wallet, Status: models.KYCPending, UpdatedAt: time.Now()}))

	got, err := store.Get(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, models.KYCPending, got.Status)

	// Put overwrites the whole record.
	require.NoError(t, store.Put(ctx, &models.KYCRecord{Wallet: wallet, Status: models.KYCApproved, UpdatedAt: time.Now()}))
	got, err = store.Get(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, models.KYCApproved, got.Status)

	pending, err := store.ListByStatus(ctx, models.KYCPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = store.Get(ctx, "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemoryChallengeStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryChallengeStore()

	wallet := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	old := &models.AuthChallenge{Wallet: wallet, Nonce: "aaaa", IssuedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, store.Put(ctx, old))

	// A new challenge replaces the old one.
	fresh := &models.AuthChallenge{Wallet: wallet, Nonce: "bbbb", IssuedAt: time.Now()}
	require.NoError(t, store.Put(ctx, fresh))
	got, err := store.Get(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, "bbbb", got.Nonce)

	stale := &models.AuthChallenge{Wallet: "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", Nonce: "cccc", IssuedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, store.Put(ctx, stale))

	deleted, err := store.DeleteIssuedBefore(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	require.NoError(t, store.Delete(ctx, wallet))
	_, err = store.Get(ctx, wallet)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
