package models

import "fmt"

type EventType string

const (
	EventPurchaseRequested EventType = "purchase_requested"
	EventMintSettled       EventType = "mint_settled"
	EventKYCApproved       EventType = "kyc_approved"
	EventKYCRevoked        EventType = "kyc_revoked"
)

// Event is an operator notification emitted after a state change. Delivery
// failures are logged and never block the triggering operation.
type Event struct {
	Type       EventType `json:"type"`
	Wallet     string    `json:"wallet"`
	PropertyID int64     `json:"propertyId,omitempty"`
	Tokens     int64     `json:"tokens,omitempty"`
	TxHash     string    `json:"txHash,omitempty"`
}

func (e *Event) String() string {
	switch e.Type {
	case EventPurchaseRequested:
		return fmt.Sprintf("Purchase requested: %d tokens of property #%d by %s", e.Tokens, e.PropertyID, e.Wallet)
	case EventMintSettled:
		return fmt.Sprintf("Mint settled: %d tokens of property #%d to %s (tx %s)", e.Tokens, e.PropertyID, e.Wallet, e.TxHash)
	case EventKYCApproved:
		return fmt.Sprintf("KYC approved for %s (tx %s)", e.Wallet, e.TxHash)
	case EventKYCRevoked:
		return fmt.Sprintf("KYC revoked for %s (tx %s)", e.Wallet, e.TxHash)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Wallet)
}

// Notifier delivers operator notifications.
type Notifier interface {
	Notify(event *Event)
}
