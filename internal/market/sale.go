package market

import (
	"strings"
	"time"

	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"go.uber.org/zap"
)

func (m *Market) startSale(args entity.SaleArgs, tokenID, owner string, approvalID uint64, nftContract string) (entity.Sale, error) {
	for currency := range args.Conditions {
		if !m.supportsCurrency(currency) {
			return entity.Sale{}, errUnsupportedCurrency(currency)
		}
	}
	if args.TokenType != "" && !strings.Contains(tokenID, args.TokenType) {
		return entity.Sale{}, ErrTokenTypeMismatch
	}

	now := m.now()
	start := now
	if args.Start != nil {
		start = *args.Start
	}

	sale := entity.Sale{
		Owner:       owner,
		ApprovalID:  approvalID,
		NFTContract: nftContract,
		TokenID:     tokenID,
		Conditions:  args.Conditions,
		Bids:        make(entity.Bids),
		CreatedAt:   now,
		TokenType:   args.TokenType,
		Start:       &start,
		End:         args.End,
		Origins:     args.Origins,
	}
	m.sales.Put(sale)

	zap.L().With(
		zap.String("key", sale.Key()),
		zap.String("owner", owner),
	).Info("Market: Sale opened")

	return sale, nil
}

// UpdatePrice sets the sale's price for one of its currencies.
func (m *Market) UpdatePrice(caller, nftContract, tokenID string, currency entity.Currency, price uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sale, err := m.sales.Get(entity.ListingKey(nftContract, tokenID))
	if err != nil {
		return err
	}
	if caller != sale.Owner {
		return ErrNotSaleOwner
	}
	if !m.supportsCurrency(currency) {
		return errUnsupportedCurrency(currency)
	}

	sale.Conditions[currency] = price
	m.sales.Put(sale)

	return nil
}

// Offer buys the NFT outright when the attached deposit matches the listed
// price with fees; any other deposit becomes a bid.
func (m *Market) Offer(caller, nftContract, tokenID string, currency entity.Currency, deposit uint64, start *time.Time, duration *time.Duration, origins entity.Origins) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := entity.ListingKey(nftContract, tokenID)
	sale, err := m.sales.Get(key)
	if err != nil {
		return err
	}
	if !sale.InLimits(m.now()) {
		return ErrSaleNotInLimits
	}
	if caller == sale.Owner {
		return ErrOwnListing
	}
	price, ok := sale.Conditions[currency]
	if !ok {
		return errUnsupportedCurrency(currency)
	}
	if deposit == 0 {
		return ErrZeroDeposit
	}

	priceWithFees, err := m.fees.PriceWithFees(price, origins)
	if err != nil {
		return err
	}
	if deposit == priceWithFees {
		removed, err := m.sales.Remove(key)
		if err != nil {
			return err
		}
		m.settle(removed, currency, deposit, caller, origins, removed.Bids)
		return nil
	}

	bidStart := m.now()
	if start != nil {
		bidStart = *start
	}
	var bidEnd *time.Time
	if duration != nil {
		end := bidStart.Add(*duration)
		bidEnd = &end
	}
	if err := m.addBid(&sale, deposit, currency, caller, bidStart, bidEnd, origins); err != nil {
		return err
	}
	m.sales.Put(sale)

	return nil
}

// AcceptOffer settles the sale against the latest bid for the currency. The
// history is strictly increasing, so the latest bid is also the highest.
func (m *Market) AcceptOffer(caller, nftContract, tokenID string, currency entity.Currency) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := entity.ListingKey(nftContract, tokenID)
	sale, err := m.sales.Get(key)
	if err != nil {
		return err
	}
	if caller != sale.Owner {
		return ErrNotSaleOwner
	}
	if !sale.InLimits(m.now()) {
		return ErrSaleNotInLimits
	}
	bids, ok := sale.Bids[currency]
	if !ok || len(bids) == 0 {
		return ErrNoBids
	}
	bid := bids[len(bids)-1]
	if !bid.InLimits(m.now()) {
		return ErrBidNotInLimits
	}

	// Listing removal is the point of no return; everything left in the
	// history afterwards is refunded during settlement.
	removed, err := m.sales.Remove(key)
	if err != nil {
		return err
	}
	if len(bids) == 1 {
		delete(removed.Bids, currency)
	} else {
		removed.Bids[currency] = bids[:len(bids)-1]
	}
	m.settle(removed, currency, bid.Price, bid.Owner, bid.Origins, removed.Bids)

	return nil
}

// RemoveSale deletes the sale and refunds every outstanding bid. While the
// sale is inside its window only the owner may remove it; afterwards anyone
// can.
func (m *Market) RemoveSale(caller, nftContract, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := entity.ListingKey(nftContract, tokenID)
	sale, err := m.sales.Get(key)
	if err != nil {
		return err
	}
	if sale.InLimits(m.now()) && caller != sale.Owner {
		return ErrNotSaleOwner
	}

	if _, err := m.sales.Remove(key); err != nil {
		return err
	}
	m.refundAllBids(sale.Bids)

	zap.L().With(
		zap.String("key", key),
		zap.String("caller", caller),
	).Info("Market: Sale removed")

	return nil
}
