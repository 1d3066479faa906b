package models

import (
	"context"
	"time"
)

// Store contracts. All implementations return ErrNotFound (wrapped) for
// missing entities and own their internal locking; cross-entity atomicity
// (inventory vs. pending purchases) is the inventory service's job, not
// the stores'.

type PropertyRepository interface {
	// Create assigns a monotonic ID and persists the property.
	Create(ctx context.Context, property *Property) error
	Get(ctx context.Context, id int64) (*Property, error)
	List(ctx context.Context) ([]*Property, error)
	Update(ctx context.Context, property *Property) error
	Delete(ctx context.Context, id int64) error
}

type PurchaseRepository interface {
	// Create assigns a monotonic ID and appends the record.
	Create(ctx context.Context, purchase *PurchaseRequest) error
	Get(ctx context.Context, id int64) (*PurchaseRequest, error)
	List(ctx context.Context) ([]*PurchaseRequest, error)
	ListByStatus(ctx context.Context, status PurchaseStatus) ([]*PurchaseRequest, error)
	ListByWallet(ctx context.Context, wallet string, status PurchaseStatus) ([]*PurchaseRequest, error)
	// PendingTokens sums the tokens of all PENDING purchases for a
	// property.
	PendingTokens(ctx context.Context, propertyID int64) (int64, error)
	// MarkMinted applies the single PENDING -> MINTED transition. It
	// fails with ErrStateConflict if the purchase is not PENDING.
	MarkMinted(ctx context.Context, id int64, txHash string, mintedAt time.Time) error
}

type KYCRepository interface {
	// Put creates or overwrites the record for its wallet.
	Put(ctx context.Context, record *KYCRecord) error
	Get(ctx context.Context, wallet string) (*KYCRecord, error)
	List(ctx context.Context) ([]*KYCRecord, error)
	ListByStatus(ctx context.Context, status KYCStatus) ([]*KYCRecord, error)
}

type ChallengeRepository interface {
	// Put overwrites any prior challenge for the wallet.
	Put(ctx context.Context, challenge *AuthChallenge) error
	Get(ctx context.Context, wallet string) (*AuthChallenge, error)
	Delete(ctx context.Context, wallet string) error
	// DeleteIssuedBefore removes challenges issued before the cutoff and
	// returns how many were removed.
	DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int, error)
}
