package entity

import (
	"time"
)

// SaleArgs and AuctionArgs arrive as the opaque message attached to an NFT
// approval. Exactly one of the two must be present in ApprovalArgs.

type SaleArgs struct {
	Conditions SaleConditions `json:"conditions" validate:"required,min=1"`
	TokenType  string         `json:"tokenType,omitempty"`

	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`

	Origins Origins `json:"origins,omitempty"`
}

type AuctionArgs struct {
	TokenType   string `json:"tokenType,omitempty"`
	MinimalStep uint64 `json:"minimalStep" validate:"required,gt=0"`
	StartPrice  uint64 `json:"startPrice" validate:"required,gt=0"`

	Start       *time.Time    `json:"start,omitempty"`
	Duration    time.Duration `json:"duration" validate:"required,gt=0"`
	BuyoutPrice *uint64       `json:"buyoutPrice,omitempty"`

	Origins Origins `json:"origins,omitempty"`
}

type ApprovalArgs struct {
	Sale    *SaleArgs    `json:"sale,omitempty"`
	Auction *AuctionArgs `json:"auction,omitempty"`
}
