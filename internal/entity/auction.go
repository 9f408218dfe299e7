package entity

import (
	"time"
)

type Auction struct {
	Owner       string `json:"owner"`
	ApprovalID  uint64 `json:"approvalId"`
	NFTContract string `json:"nftContract"`
	TokenID     string `json:"tokenId"`

	Bid       *Bid      `json:"bid,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	Currency    Currency `json:"currency"`
	MinimalStep uint64   `json:"minimalStep"`
	StartPrice  uint64   `json:"startPrice"`
	BuyoutPrice *uint64  `json:"buyoutPrice,omitempty"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Origins Origins `json:"origins,omitempty"`
}

// InProgress reports whether bids can be added at the given time. The end
// bound is inclusive so a buyout that forces end=now leaves the auction
// finishable but no longer biddable one tick later.
func (a Auction) InProgress(now time.Time) bool {
	return a.Start.Before(now) && !now.After(a.End)
}
