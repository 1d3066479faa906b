package models

import "time"

type PurchaseStatus string

const (
	PurchasePending PurchaseStatus = "PENDING"
	PurchaseMinted  PurchaseStatus = "MINTED"
)

// PurchaseRequest records one purchase and its progression from request to
// settlement. Records are immutable except for the single PENDING -> MINTED
// transition applied by the mint orchestrator; they are never deleted.
type PurchaseRequest struct {
	// ID is assigned monotonically by the store.
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// Wallet is the buyer's address in canonical checksummed form.
	Wallet string `json:"wallet" gorm:"column:wallet;index;not null"`
	// PropertyID references the purchased property.
	PropertyID int64 `json:"propertyId" gorm:"column:property_id;index;not null"`
	// Tokens is the number of tokens requested.
	Tokens int64 `json:"tokens" gorm:"column:tokens;not null"`
	// TokenPrice is snapshotted from the property at request time; later
	// price changes do not affect this record.
	TokenPrice int64 `json:"tokenPrice" gorm:"column:token_price;not null"`
	// MoneyAmount is Tokens * TokenPrice.
	MoneyAmount int64 `json:"moneyAmount" gorm:"column:money_amount;not null"`
	// Status is PENDING until settled on the external ledger.
	Status PurchaseStatus `json:"status" gorm:"column:status;index;not null"`
	// IsKYCApproved is the oracle snapshot taken at request time. Advisory
	// only: the mint orchestrator re-checks the live oracle.
	IsKYCApproved bool `json:"isKYCApproved" gorm:"column:is_kyc_approved"`
	// TxHash is set once, when the purchase is MINTED.
	TxHash    string     `json:"txHash,omitempty" gorm:"column:tx_hash"`
	CreatedAt time.Time  `json:"createdAt" gorm:"column:created_at"`
	MintedAt  *time.Time `json:"mintedAt,omitempty" gorm:"column:minted_at"`
}

// PurchaseView joins a purchase with a summary of its property, the shape
// the admin review endpoints return.
type PurchaseView struct {
	*PurchaseRequest
	Property *PropertyView `json:"property"`
}

// Holding aggregates the MINTED purchases of one wallet for one property.
type Holding struct {
	PropertyID       int64         `json:"propertyId"`
	TokensHeld       int64         `json:"tokensHeld"`
	TotalInvested    int64         `json:"totalInvested"`
	OwnershipPercent float64       `json:"ownershipPercent"`
	Property         *PropertyView `json:"property,omitempty"`
}

// InvestorSummary aggregates all MINTED purchases of one wallet.
type InvestorSummary struct {
	Wallet        string     `json:"wallet"`
	TotalTokens   int64      `json:"totalTokens"`
	TotalInvested int64      `json:"totalInvested"`
	Holdings      []*Holding `json:"holdings"`
}
