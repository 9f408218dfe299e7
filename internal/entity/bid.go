package entity

import (
	"time"
)

// Origins maps a beneficiary account to its fee weight out of 10,000.
type Origins map[string]uint32

type Bid struct {
	Owner string `json:"owner"`
	Price uint64 `json:"price"`

	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`

	Origins Origins `json:"origins,omitempty"`
}

// InLimits reports whether the bid is actionable at the given time.
func (b Bid) InLimits(now time.Time) bool {
	if now.Before(b.Start) {
		return false
	}
	if b.End != nil && !now.Before(*b.End) {
		return false
	}
	return true
}

// Bids holds the ordered bid history of a listing, oldest first, per currency.
type Bids map[Currency][]Bid

func (b Bids) Count() int {
	total := 0
	for _, bids := range b {
		total += len(bids)
	}
	return total
}
