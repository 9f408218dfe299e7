package market

import (
	"time"

	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"go.uber.org/zap"
)

// addBid appends a bid to the sale's history for the given currency. The
// fee-exclusive actual amount must be strictly greater than the last stored
// bid's; when the history exceeds its cap the oldest bid is refunded and
// evicted. The caller persists the sale afterwards.
func (m *Market) addBid(sale *entity.Sale, amount uint64, currency entity.Currency, buyer string, start time.Time, end *time.Time, origins entity.Origins) error {
	if !m.supportsCurrency(currency) {
		return errUnsupportedCurrency(currency)
	}

	totalOrigins := TotalOrigins(origins)
	if totalOrigins >= m.fees.MaxTotalOrigins {
		return ErrMaxOriginsExceeded
	}
	actualAmount := m.fees.ActualAmount(amount, totalOrigins)

	if sale.Bids == nil {
		sale.Bids = make(entity.Bids)
	}
	bids := sale.Bids[currency]
	if len(bids) > 0 {
		current := bids[len(bids)-1]
		currentAmount := m.fees.ActualAmount(current.Price, TotalOrigins(current.Origins))
		if actualAmount <= currentAmount {
			return errBidTooLow(current.Price)
		}
	}

	bids = append(bids, entity.Bid{
		Owner:   buyer,
		Price:   amount,
		Start:   start,
		End:     end,
		Origins: origins,
	})
	if len(bids) > m.cfg.BidHistoryLength {
		// Refund the earliest bid before evicting it.
		earliest := bids[0]
		m.refundBid(currency, earliest.Owner, earliest.Price)
		bids = bids[1:]
	}
	sale.Bids[currency] = bids

	zap.L().With(
		zap.String("key", sale.Key()),
		zap.String("currency", string(currency)),
		zap.String("buyer", buyer),
		zap.Uint64("amount", amount),
	).Info("Market: Bid added")

	return nil
}

// RemoveBid removes the caller's own bid matching the given price and
// refunds it.
func (m *Market) RemoveBid(caller, nftContract, tokenID string, currency entity.Currency, price uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.removeStoredBid(nftContract, tokenID, currency, caller, price); err != nil {
		return err
	}
	m.refundBid(currency, caller, price)

	return nil
}

// CancelBid removes and refunds another account's bid once its validity
// window has passed. Callable by anyone.
func (m *Market) CancelBid(nftContract, tokenID string, currency entity.Currency, owner string, price uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sale, err := m.sales.Get(entity.ListingKey(nftContract, tokenID))
	if err != nil {
		return err
	}
	bid, ok := findBid(sale.Bids[currency], owner, price)
	if !ok {
		return ErrBidNotFound
	}
	if bid.End == nil {
		return ErrBidWithoutEnd
	}
	if m.now().Before(*bid.End) {
		return ErrBidNotEnded
	}

	if _, err := m.removeStoredBid(nftContract, tokenID, currency, owner, price); err != nil {
		return err
	}
	m.refundBid(currency, owner, price)

	return nil
}

// CancelExpiredBids removes and refunds every bid in the currency bucket
// whose validity end has passed.
func (m *Market) CancelExpiredBids(nftContract, tokenID string, currency entity.Currency) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := entity.ListingKey(nftContract, tokenID)
	sale, err := m.sales.Get(key)
	if err != nil {
		return err
	}
	bids, ok := sale.Bids[currency]
	if !ok {
		return ErrNoBids
	}

	now := m.now()
	kept := bids[:0]
	for _, bid := range bids {
		if bid.End != nil && !now.Before(*bid.End) {
			m.refundBid(currency, bid.Owner, bid.Price)
			continue
		}
		kept = append(kept, bid)
	}

	if len(kept) == 0 {
		delete(sale.Bids, currency)
	} else {
		sale.Bids[currency] = kept
	}
	m.sales.Put(sale)

	return nil
}

// removeStoredBid takes the unique bid matching owner and price out of the
// sale's history, dropping the currency bucket when it empties.
func (m *Market) removeStoredBid(nftContract, tokenID string, currency entity.Currency, owner string, price uint64) (entity.Bid, error) {
	key := entity.ListingKey(nftContract, tokenID)
	sale, err := m.sales.Get(key)
	if err != nil {
		return entity.Bid{}, err
	}
	bids, ok := sale.Bids[currency]
	if !ok {
		return entity.Bid{}, ErrNoBids
	}

	for i, bid := range bids {
		if bid.Owner != owner || bid.Price != price {
			continue
		}
		if len(bids) == 1 {
			delete(sale.Bids, currency)
		} else {
			sale.Bids[currency] = append(bids[:i:i], bids[i+1:]...)
		}
		m.sales.Put(sale)
		return bid, nil
	}

	return entity.Bid{}, ErrBidNotFound
}

func (m *Market) refundAllBids(bids entity.Bids) {
	for currency, bucket := range bids {
		for _, bid := range bucket {
			m.refundBid(currency, bid.Owner, bid.Price)
		}
	}
}

func (m *Market) refundBid(currency entity.Currency, owner string, price uint64) {
	m.transfers.Transfer(currency, owner, price)

	zap.L().With(
		zap.String("currency", string(currency)),
		zap.String("owner", owner),
		zap.Uint64("price", price),
	).Info("Market: Bid refunded")
}

func findBid(bids []entity.Bid, owner string, price uint64) (entity.Bid, bool) {
	for _, bid := range bids {
		if bid.Owner == owner && bid.Price == price {
			return bid, true
		}
	}
	return entity.Bid{}, false
}
