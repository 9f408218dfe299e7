package market

import (
	"fmt"
	"testing"
	"time"

	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBidsMustStrictlyIncrease(t *testing.T) {
	m, _, _, clock := newTestMarket(t)
	openSale(t, m, clock, 1000000)

	require.NoError(t, m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 5000, nil, nil, nil))

	// Equal and lower gross amounts are both rejected.
	assert.Error(t, m.Offer("carol", nftContract, tokenID, entity.CurrencyNative, 5000, nil, nil, nil))
	assert.Error(t, m.Offer("carol", nftContract, tokenID, entity.CurrencyNative, 4000, nil, nil, nil))

	require.NoError(t, m.Offer("carol", nftContract, tokenID, entity.CurrencyNative, 5001, nil, nil, nil))
}

// Origins shrink what the seller actually receives, so a nominally higher
// deposit can still lose to the stored bid once fees are stripped.
func TestBidComparisonUsesActualAmount(t *testing.T) {
	m, _, _, clock := newTestMarket(t)
	openSale(t, m, clock, 1000000)

	require.NoError(t, m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 10000, nil, nil, nil))

	err := m.Offer("carol", nftContract, tokenID, entity.CurrencyNative, 10100, nil, nil,
		entity.Origins{"broker": 4000})
	assert.Error(t, err)
}

func TestBidOriginsCapped(t *testing.T) {
	m, _, _, clock := newTestMarket(t)
	openSale(t, m, clock, 1000000)

	err := m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 5000, nil, nil,
		entity.Origins{"broker": 4700})
	assert.ErrorIs(t, err, ErrMaxOriginsExceeded)

	err = m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 5000, nil, nil,
		entity.Origins{"broker": 4699})
	assert.NoError(t, err)
}

// The history holds at most five bids per currency; the sixth evicts and
// refunds the oldest.
func TestBidHistoryEvictsOldest(t *testing.T) {
	m, _, transfers, clock := newTestMarket(t)
	openSale(t, m, clock, 100000000)

	for i := 0; i < 6; i++ {
		bidder := fmt.Sprintf("bidder-%d", i)
		amount := uint64(1000 * (i + 1))
		require.NoError(t, m.Offer(bidder, nftContract, tokenID, entity.CurrencyNative, amount, nil, nil, nil))
	}

	sale, err := m.GetSale(nftContract, tokenID)
	require.NoError(t, err)

	bids := sale.Bids[entity.CurrencyNative]
	require.Len(t, bids, 5)
	assert.Equal(t, "bidder-1", bids[0].Owner)
	assert.Equal(t, "bidder-5", bids[4].Owner)

	require.Len(t, transfers.transfers, 1)
	assert.Equal(t, transferRecord{entity.CurrencyNative, "bidder-0", 1000}, transfers.transfers[0])
}

func TestRemoveBid(t *testing.T) {
	m, _, transfers, clock := newTestMarket(t)
	openSale(t, m, clock, 1000000)

	require.NoError(t, m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 5000, nil, nil, nil))

	assert.ErrorIs(t, m.RemoveBid(buyer, nftContract, tokenID, entity.CurrencyNative, 4999), ErrBidNotFound)
	assert.ErrorIs(t, m.RemoveBid("carol", nftContract, tokenID, entity.CurrencyNative, 5000), ErrBidNotFound)

	require.NoError(t, m.RemoveBid(buyer, nftContract, tokenID, entity.CurrencyNative, 5000))
	assert.Equal(t, transferRecord{entity.CurrencyNative, buyer, 5000}, transfers.transfers[0])

	sale, err := m.GetSale(nftContract, tokenID)
	require.NoError(t, err)
	assert.Empty(t, sale.Bids)
}

func TestCancelBid(t *testing.T) {
	m, _, transfers, clock := newTestMarket(t)
	openSale(t, m, clock, 1000000)

	require.NoError(t, m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 5000, nil, nil, nil))

	// A bid without an end can never be cancelled by a third party.
	assert.ErrorIs(t, m.CancelBid(nftContract, tokenID, entity.CurrencyNative, buyer, 5000), ErrBidWithoutEnd)

	duration := time.Hour
	require.NoError(t, m.Offer("carol", nftContract, tokenID, entity.CurrencyNative, 6000, nil, &duration, nil))

	assert.ErrorIs(t, m.CancelBid(nftContract, tokenID, entity.CurrencyNative, "carol", 6000), ErrBidNotEnded)

	clock.Tick(2 * time.Hour)
	require.NoError(t, m.CancelBid(nftContract, tokenID, entity.CurrencyNative, "carol", 6000))
	assert.Contains(t, transfers.transfers, transferRecord{entity.CurrencyNative, "carol", 6000})
}

func TestCancelExpiredBids(t *testing.T) {
	m, _, transfers, clock := newTestMarket(t)
	openSale(t, m, clock, 100000000)

	short := 30 * time.Minute
	long := 6 * time.Hour
	require.NoError(t, m.Offer("carol", nftContract, tokenID, entity.CurrencyNative, 1000, nil, &short, nil))
	require.NoError(t, m.Offer("dave", nftContract, tokenID, entity.CurrencyNative, 2000, nil, &long, nil))
	require.NoError(t, m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 3000, nil, nil, nil))

	clock.Tick(time.Hour)
	require.NoError(t, m.CancelExpiredBids(nftContract, tokenID, entity.CurrencyNative))

	require.Len(t, transfers.transfers, 1)
	assert.Equal(t, transferRecord{entity.CurrencyNative, "carol", 1000}, transfers.transfers[0])

	sale, err := m.GetSale(nftContract, tokenID)
	require.NoError(t, err)

	bids := sale.Bids[entity.CurrencyNative]
	require.Len(t, bids, 2)
	assert.Equal(t, "dave", bids[0].Owner)
	assert.Equal(t, buyer, bids[1].Owner)
}

func TestCancelExpiredBidsEmptiesBucket(t *testing.T) {
	m, _, _, clock := newTestMarket(t)
	openSale(t, m, clock, 100000000)

	assert.ErrorIs(t, m.CancelExpiredBids(nftContract, tokenID, entity.CurrencyNative), ErrNoBids)

	short := time.Minute
	require.NoError(t, m.Offer(buyer, nftContract, tokenID, entity.CurrencyNative, 1000, nil, &short, nil))

	clock.Tick(time.Hour)
	require.NoError(t, m.CancelExpiredBids(nftContract, tokenID, entity.CurrencyNative))

	sale, err := m.GetSale(nftContract, tokenID)
	require.NoError(t, err)
	assert.Empty(t, sale.Bids)
}
