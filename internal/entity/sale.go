package entity

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
)

// Currency identifies the token a price is denominated in. The native chain
// currency is CurrencyNative, anything else is the account of a fungible
// token contract.
type Currency string

const CurrencyNative Currency = "zil"

const KeyDelimiter = "||"

// SaleConditions is the per-currency price table of a sale. Prices are
// fee-exclusive.
type SaleConditions map[Currency]uint64

type Sale struct {
	Owner       string `json:"owner"`
	ApprovalID  uint64 `json:"approvalId"`
	NFTContract string `json:"nftContract"`
	TokenID     string `json:"tokenId"`

	Conditions SaleConditions `json:"conditions"`
	Bids       Bids           `json:"bids"`
	CreatedAt  time.Time      `json:"createdAt"`
	TokenType  string         `json:"tokenType,omitempty"`

	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`

	Origins Origins `json:"origins,omitempty"`
}

func (s Sale) Key() string {
	return ListingKey(s.NFTContract, s.TokenID)
}

func (s Sale) Slug() string {
	return CreateListingSlug(s.NFTContract, s.TokenID)
}

// InLimits reports whether the sale is inside its availability window.
func (s Sale) InLimits(now time.Time) bool {
	if s.Start != nil && !s.Start.Before(now) {
		return false
	}
	if s.End != nil && !now.Before(*s.End) {
		return false
	}
	return true
}

func ListingKey(nftContract, tokenID string) string {
	return nftContract + KeyDelimiter + tokenID
}

func CreateListingSlug(nftContract, tokenID string) string {
	return slug.Make(fmt.Sprintf("listing-%s-%s", nftContract, tokenID))
}
