package market

import (
	"errors"
	"fmt"

	"github.com/ZilDuck/nft-marketplace/internal/entity"
)

// Validation and precondition failures are reported before any state is
// mutated; the caller sees the reason and nothing is partially applied.
var (
	ErrSaleNotInLimits      = errors.New("either the sale is finished or it hasn't started yet")
	ErrBidNotInLimits       = errors.New("out of time limit of the bid")
	ErrOwnListing           = errors.New("cannot bid on your own listing")
	ErrZeroDeposit          = errors.New("attached deposit must be greater than 0")
	ErrMaxOriginsExceeded   = errors.New("max origins exceeded")
	ErrNotSaleOwner         = errors.New("must be sale owner")
	ErrNotAuctionOwner      = errors.New("only the auction owner can cancel the auction")
	ErrAuctionHasBid        = errors.New("can't cancel the auction after the first bid is made")
	ErrAuctionNotInProgress = errors.New("auction is not in progress")
	ErrAuctionNotOver       = errors.New("auction can be finalized only after the end time")
	ErrAuctionNoBid         = errors.New("can finalize only if there is a bid")
	ErrNoBids               = errors.New("no bids")
	ErrBidNotFound          = errors.New("no such bid")
	ErrBidNotEnded          = errors.New("the bid hasn't ended yet")
	ErrBidWithoutEnd        = errors.New("the bid doesn't have an end")
	ErrIncorrectStart       = errors.New("incorrect start time")
	ErrBadApprovalArgs      = errors.New("not valid args")
	ErrInsufficientStorage  = errors.New("insufficient storage paid")
	ErrTokenTypeMismatch    = errors.New("token type should be substr of token id")
)

func errUnsupportedCurrency(currency entity.Currency) error {
	return fmt.Errorf("token %s not supported by this market", currency)
}

func errBidTooLow(lastPrice uint64) error {
	return fmt.Errorf("can't pay less than or equal to current bid price: %d", lastPrice)
}

func errBidBelowMinimum(minDeposit uint64) error {
	return fmt.Errorf("should bid at least %d", minDeposit)
}

func errIncorrectDuration(min, max string) error {
	return fmt.Errorf("incorrect duration, should be between %s and %s", min, max)
}
