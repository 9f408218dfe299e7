package market

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"go.uber.org/zap"
)

func (m *Market) startAuction(args entity.AuctionArgs, tokenID, owner string, approvalID uint64, nftContract string) (uint64, entity.Auction, error) {
	if args.Duration < m.cfg.ExtensionDuration || args.Duration > m.cfg.MaxAuctionDuration {
		return 0, entity.Auction{}, errIncorrectDuration(
			m.cfg.ExtensionDuration.String(), m.cfg.MaxAuctionDuration.String())
	}
	currency, err := m.tokenTypeToCurrency(args.TokenType)
	if err != nil {
		return 0, entity.Auction{}, err
	}

	now := m.now()
	start := now
	if args.Start != nil {
		start = *args.Start
	}
	if start.Before(now) {
		return 0, entity.Auction{}, ErrIncorrectStart
	}

	auction := entity.Auction{
		Owner:       owner,
		ApprovalID:  approvalID,
		NFTContract: nftContract,
		TokenID:     tokenID,
		CreatedAt:   now,
		Currency:    currency,
		MinimalStep: args.MinimalStep,
		StartPrice:  args.StartPrice,
		BuyoutPrice: args.BuyoutPrice,
		Start:       start,
		End:         start.Add(args.Duration),
		Origins:     args.Origins,
	}
	id := m.auctions.Create(auction)

	zap.L().With(
		zap.Uint64("auctionId", id),
		zap.String("tokenId", tokenID),
		zap.String("owner", owner),
	).Info("Market: Auction opened")

	return id, auction, nil
}

// AuctionAddBid places a bid on a live auction, refunding the previous one.
// A deposit covering the buyout price closes the auction immediately;
// otherwise a bid landing in the final stretch extends the end (soft close).
func (m *Market) AuctionAddBid(caller string, auctionID uint64, deposit uint64, tokenType string, origins entity.Origins) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	currency, err := m.tokenTypeToCurrency(tokenType)
	if err != nil {
		return err
	}
	auction, err := m.auctions.Get(auctionID)
	if err != nil {
		return err
	}
	if currency != auction.Currency {
		return errUnsupportedCurrency(currency)
	}
	now := m.now()
	if !auction.InProgress(now) {
		return ErrAuctionNotInProgress
	}
	if caller == auction.Owner {
		return ErrOwnListing
	}
	if TotalOrigins(origins) >= m.fees.MaxTotalOrigins {
		return ErrMaxOriginsExceeded
	}

	minDeposit, err := m.fees.PriceWithFees(m.minimalNextBid(auction), origins)
	if err != nil {
		return err
	}
	if deposit < minDeposit {
		return errBidBelowMinimum(minDeposit)
	}

	if auction.Bid != nil {
		m.refundBid(auction.Currency, auction.Bid.Owner, auction.Bid.Price)
	}

	boughtOut := false
	if auction.BuyoutPrice != nil {
		buyout, err := m.fees.PriceWithFees(*auction.BuyoutPrice, origins)
		if err == nil && buyout <= deposit {
			auction.End = now
			boughtOut = true
		}
	}

	auction.Bid = &entity.Bid{
		Owner:   caller,
		Price:   deposit,
		Start:   now,
		Origins: origins,
	}
	if !boughtOut && auction.End.Sub(now) < m.cfg.ExtensionDuration {
		auction.End = now.Add(m.cfg.ExtensionDuration)
	}
	m.auctions.Put(auctionID, auction)

	zap.L().With(
		zap.Uint64("auctionId", auctionID),
		zap.String("buyer", caller),
		zap.Uint64("deposit", deposit),
		zap.Bool("boughtOut", boughtOut),
	).Info("Market: Auction bid added")

	return nil
}

// CancelAuction deletes the auction before any bid lands. Owner only.
func (m *Market) CancelAuction(caller string, auctionID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	auction, err := m.auctions.Get(auctionID)
	if err != nil {
		return err
	}
	if caller != auction.Owner {
		return ErrNotAuctionOwner
	}
	if auction.Bid != nil {
		return ErrAuctionHasBid
	}

	_, err = m.auctions.Remove(auctionID)
	return err
}

// FinishAuction settles an ended auction against its bid. Callable by anyone.
func (m *Market) FinishAuction(auctionID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	auction, err := m.auctions.Get(auctionID)
	if err != nil {
		return err
	}
	if !m.now().After(auction.End) {
		return ErrAuctionNotOver
	}
	if auction.Bid == nil {
		return ErrAuctionNoBid
	}

	// Point of no return.
	if _, err := m.auctions.Remove(auctionID); err != nil {
		return err
	}

	bid := *auction.Bid
	st := Settlement{
		ID:          correlationID(),
		Currency:    auction.Currency,
		Buyer:       bid.Owner,
		Price:       bid.Price,
		Seller:      auction.Owner,
		NFTContract: auction.NFTContract,
		TokenID:     auction.TokenID,
	}
	m.beginSettlement(st, auction.ApprovalID, bid.Origins, auction.Origins)

	return nil
}

// minimalNextBid is the fee-exclusive floor for the next bid: the current
// bid's actual amount plus the minimal step, or the start price before any
// bid lands.
func (m *Market) minimalNextBid(auction entity.Auction) uint64 {
	if auction.Bid == nil {
		return auction.StartPrice
	}
	actual := m.fees.ActualAmount(auction.Bid.Price, TotalOrigins(auction.Bid.Origins))
	return actual + auction.MinimalStep
}
