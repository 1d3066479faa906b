package models

import "time"

type PropertyStatus string

const (
	PropertyActive  PropertyStatus = "ACTIVE"
	PropertySoldOut PropertyStatus = "SOLD_OUT"
)

// Property represents a registered property whose ownership is sold as
// fractional tokens. Invariant: 0 <= TokensAvailable <= TotalTokens.
// TokensAvailable is mutated only by the mint orchestrator's commit step
// (via the inventory service) so the invariant holds at every observable
// instant.
type Property struct {
	// ID is assigned monotonically by the store.
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// Name is the display name of the property.
	Name string `json:"name" gorm:"column:name;not null"`
	// Address is the postal address of the property.
	Address string `json:"address" gorm:"column:address"`
	// Description is a free-form description.
	Description string `json:"description" gorm:"column:description"`
	// TotalValue is the valuation in currency minor units.
	TotalValue int64 `json:"totalValue" gorm:"column:total_value"`
	// TotalTokens is the full token supply for this property.
	TotalTokens int64 `json:"totalTokens" gorm:"column:total_tokens;not null"`
	// TokensAvailable is the locally cached remaining supply.
	TokensAvailable int64 `json:"tokensAvailable" gorm:"column:tokens_available;not null"`
	// TokenPrice is the price per token in currency minor units.
	TokenPrice int64 `json:"tokenPrice" gorm:"column:token_price;not null"`
	// MetadataURI points at off-chain property metadata.
	MetadataURI string `json:"metadataURI" gorm:"column:metadata_uri"`
	// Status is ACTIVE until the supply is exhausted, then SOLD_OUT.
	Status    PropertyStatus `json:"status" gorm:"column:status;not null"`
	CreatedAt time.Time      `json:"createdAt" gorm:"column:created_at"`
}

func (p *Property) TokensSold() int64 {
	return p.TotalTokens - p.TokensAvailable
}

func (p *Property) PercentageFunded() float64 {
	if p.TotalTokens == 0 {
		return 0
	}
	return float64(p.TokensSold()) / float64(p.TotalTokens) * 100
}

func (p *Property) OwnershipPerToken() float64 {
	if p.TotalTokens == 0 {
		return 0
	}
	return 100 / float64(p.TotalTokens)
}

// PropertyUpdate carries the editable fields for a property update. Nil
// fields are left unchanged; supply counters and status are not editable.
type PropertyUpdate struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
	MetadataURI *string `json:"metadataURI"`
	TokenPrice  *int64  `json:"tokenPrice"`
}

// PropertyView is a Property plus its derived sale statistics, as returned
// by the read endpoints.
type PropertyView struct {
	*Property
	TokensSold        int64   `json:"tokensSold"`
	PercentageFunded  float64 `json:"percentageFunded"`
	OwnershipPerToken float64 `json:"ownershipPerToken"`
}

func NewPropertyView(p *Property) *PropertyView {
	return &PropertyView{
		Property:          p,
		TokensSold:        p.TokensSold(),
		PercentageFunded:  p.PercentageFunded(),
		OwnershipPerToken: p.OwnershipPerToken(),
	}
}
