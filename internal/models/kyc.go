package models

import "time"

type KYCStatus string

const (
	KYCPending  KYCStatus = "PENDING"
	KYCApproved KYCStatus = "APPROVED"
	KYCRevoked  KYCStatus = "REVOKED"
	// KYCNone is reported for wallets with no local record.
	KYCNone KYCStatus = "NONE"
)

// Metadata bounds. The metadata bag is opaque to the core; only its size
// is enforced.
const (
	MaxKYCMetadataKeys     = 32
	MaxKYCMetadataValueLen = 1024
)

// KYCRecord tracks the local approval workflow for a wallet. The local
// status is a cache; the on-chain registry is authoritative for whether a
// wallet may receive tokens.
type KYCRecord struct {
	// Wallet is the canonical checksummed address, the record key.
	Wallet string `json:"wallet" gorm:"column:wallet;primaryKey"`
	// Status is the local workflow state.
	Status KYCStatus `json:"status" gorm:"column:status;index;not null"`
	// Metadata is an opaque, size-bounded key-value bag supplied at
	// submission. The core does not validate its contents.
	Metadata map[string]string `json:"metadata" gorm:"column:metadata;serializer:json"`
	// UpdatedAt is the time of the last workflow transition.
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

// KYCStatusView combines the live oracle answer with the local cache. The
// two may disagree transiently; money-moving callers must use the live
// value.
type KYCStatusView struct {
	Wallet          string     `json:"wallet"`
	OnChainApproved bool       `json:"isApproved"`
	LocalStatus     KYCStatus  `json:"localStatus"`
	UpdatedAt       *time.Time `json:"lastUpdated,omitempty"`
}
