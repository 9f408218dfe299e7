package market

import (
	"testing"
	"time"

	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferValidations(t *testing.T) {
	m, _, _, clock := newTestMarket(t)
	openSale(t, m, clock, 10000)

	t.Run("unknown listing", func(t *testing.T) {
		err := m.Offer(buyer, nftContract, "missing", entity.CurrencyNative, 100, nil, nil, nil)
		assert.Error(t, err)
	})

	t.Run("own listing", func(t *testing.T) {
		err := m.Offer(seller, nftContract, tokenID, entity.CurrencyNative, 100, nil, nil, nil)
		assert.ErrorIs(t, err, ErrOwnListing)
	})

	t.Run("currency not listed", func(t *testing.T) {
		err := m.Offer(buyer, nftContract, tokenID, currencyWrapped, 100, nil, nil, nil)
		assert.Error(t, err)
	})

	t.Run("zero deposit", func(t *testing.T) {
		err := m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 0, nil, nil, nil)
		assert.ErrorIs(t, err, ErrZeroDeposit)
	})
}

func TestOfferOutsideWindow(t *testing.T) {
	m, _, _, _ := newTestMarket(t)

	require.NoError(t, m.StorageDeposit(seller, m.StorageAmount()))
	_, err := m.OnApprove(nftContract, tokenID, seller, 1, entity.ApprovalArgs{
		Sale: &entity.SaleArgs{Conditions: entity.SaleConditions{entity.CurrencyNative: 10000}},
	})
	require.NoError(t, err)

	// The window opens strictly after the listing time.
	err = m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 10300, nil, nil, nil)
	assert.ErrorIs(t, err, ErrSaleNotInLimits)
}

// An offer matching the listed price with fees buys the token outright: the
// sale leaves storage at once and the payout request goes out.
func TestOfferAtExactPriceSettles(t *testing.T) {
	m, tokens, transfers, clock := newTestMarket(t)
	openSale(t, m, clock, 10000)

	priceWithFees, err := m.PriceWithFees(10000, nil)
	require.NoError(t, err)

	err = m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, priceWithFees, nil, nil, nil)
	require.NoError(t, err)

	_, err = m.GetSale(nftContract, tokenID)
	assert.Error(t, err)

	require.Len(t, tokens.requests, 1)
	req := tokens.requests[0]
	assert.Equal(t, nftContract, req.NFTContract)
	assert.Equal(t, tokenID, req.TokenID)
	assert.Equal(t, buyer, req.Receiver)
	assert.Equal(t, uint64(1), req.ApprovalID)
	assert.Equal(t, priceWithFees, req.Balance)
	assert.Equal(t, 10, req.MaxPayout)

	tokens.resolveLast(t, chain.PayoutResult{Payout: entity.Payout{
		seller:        10000,
		"marketplace": 300,
	}})

	assert.ElementsMatch(t, []transferRecord{
		{entity.CurrencyNative, seller, 10000},
		{entity.CurrencyNative, "marketplace", 300},
	}, transfers.transfers)
}

func TestOfferBelowPriceBecomesBid(t *testing.T) {
	m, tokens, _, clock := newTestMarket(t)
	openSale(t, m, clock, 10000)

	err := m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 5000, nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, tokens.requests)

	sale, err := m.GetSale(nftContract, tokenID)
	require.NoError(t, err)
	require.Len(t, sale.Bids[entity.CurrencyNative], 1)

	bid := sale.Bids[entity.CurrencyNative][0]
	assert.Equal(t, buyer, bid.Owner)
	assert.Equal(t, uint64(5000), bid.Price)
	assert.Nil(t, bid.End)
}

func TestOfferBidWithDuration(t *testing.T) {
	m, _, _, clock := newTestMarket(t)
	openSale(t, m, clock, 10000)

	duration := time.Hour
	err := m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 5000, nil, &duration, nil)
	require.NoError(t, err)

	sale, err := m.GetSale(nftContract, tokenID)
	require.NoError(t, err)

	bid := sale.Bids[entity.CurrencyNative][0]
	require.NotNil(t, bid.End)
	assert.Equal(t, bid.Start.Add(time.Hour), *bid.End)
}

func TestUpdatePrice(t *testing.T) {
	m, _, _, clock := newTestMarket(t)
	openSale(t, m, clock, 10000)

	assert.ErrorIs(t, m.UpdatePrice(buyer, nftContract, tokenID, entity.CurrencyNative, 1), ErrNotSaleOwner)

	require.NoError(t, m.UpdatePrice(seller, nftContract, tokenID, entity.CurrencyNative, 20000))
	require.NoError(t, m.UpdatePrice(seller, nftContract, tokenID, currencyWrapped, 15000))

	sale, err := m.GetSale(nftContract, tokenID)
	require.NoError(t, err)
	assert.Equal(t, uint64(20000), sale.Conditions[entity.CurrencyNative])
	assert.Equal(t, uint64(15000), sale.Conditions[currencyWrapped])
}

// Accepting an offer settles against the newest bid and leaves the rest of
// the history in the settlement payload, to be refunded on success.
func TestAcceptOffer(t *testing.T) {
	m, tokens, transfers, clock := newTestMarket(t)
	openSale(t, m, clock, 1000000)

	require.NoError(t, m.Offer("carol", nftContract, tokenID, entity.CurrencyNative, 5000, nil, nil, nil))
	require.NoError(t, m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 7000, nil, nil, nil))

	assert.ErrorIs(t, m.AcceptOffer(buyer, nftContract, tokenID, entity.CurrencyNative), ErrNotSaleOwner)
	assert.ErrorIs(t, m.AcceptOffer(seller, nftContract, tokenID, currencyWrapped), ErrNoBids)

	require.NoError(t, m.AcceptOffer(seller, nftContract, tokenID, entity.CurrencyNative))

	_, err := m.GetSale(nftContract, tokenID)
	assert.Error(t, err)

	require.Len(t, tokens.requests, 1)
	assert.Equal(t, buyer, tokens.requests[0].Receiver)
	assert.Equal(t, uint64(7000), tokens.requests[0].Balance)

	tokens.resolveLast(t, chain.PayoutResult{Payout: entity.Payout{seller: 6999}})

	// Carol's outbid deposit comes back alongside the payout.
	assert.Contains(t, transfers.transfers, transferRecord{entity.CurrencyNative, "carol", 5000})
	assert.Contains(t, transfers.transfers, transferRecord{entity.CurrencyNative, seller, 6999})
}

func TestAcceptOfferRequiresActionableBid(t *testing.T) {
	m, _, _, clock := newTestMarket(t)
	openSale(t, m, clock, 1000000)

	duration := time.Hour
	require.NoError(t, m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 5000, nil, &duration, nil))

	clock.Tick(2 * time.Hour)
	assert.ErrorIs(t, m.AcceptOffer(seller, nftContract, tokenID, entity.CurrencyNative), ErrBidNotInLimits)
}

func TestRemoveSaleRefundsBids(t *testing.T) {
	m, _, transfers, clock := newTestMarket(t)
	openSale(t, m, clock, 1000000)

	require.NoError(t, m.Offer("carol", nftContract, tokenID, entity.CurrencyNative, 5000, nil, nil, nil))
	require.NoError(t, m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 7000, nil, nil, nil))

	assert.ErrorIs(t, m.RemoveSale(buyer, nftContract, tokenID), ErrNotSaleOwner)

	require.NoError(t, m.RemoveSale(seller, nftContract, tokenID))

	_, err := m.GetSale(nftContract, tokenID)
	assert.Error(t, err)
	assert.ElementsMatch(t, []transferRecord{
		{entity.CurrencyNative, "carol", 5000},
		{entity.CurrencyNative, buyer, 7000},
	}, transfers.transfers)
}

func TestRemoveSaleByAnyoneAfterWindow(t *testing.T) {
	m, _, _, clock := newTestMarket(t)

	require.NoError(t, m.StorageDeposit(seller, m.StorageAmount()))
	end := clock.Now().Add(time.Hour)
	_, err := m.OnApprove(nftContract, tokenID, seller, 1, entity.ApprovalArgs{
		Sale: &entity.SaleArgs{
			Conditions: entity.SaleConditions{entity.CurrencyNative: 10000},
			End:        &end,
		},
	})
	require.NoError(t, err)

	clock.Tick(2 * time.Hour)
	require.NoError(t, m.RemoveSale(buyer, nftContract, tokenID))
	assert.Zero(t, m.SaleSupply())
}
