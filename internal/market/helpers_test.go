package market

import (
	"testing"
	"time"

	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/stretchr/testify/require"
)

const (
	currencyWrapped = entity.Currency("wzil")

	nftContract = "nft.collection"
	tokenID     = "token-1"
	seller      = "alice"
	buyer       = "bob"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Tick(d time.Duration) {
	c.now = c.now.Add(d)
}

// fakeTokenClient records transfer-payout requests without resolving them.
// Tests drive the settlement forward by invoking the captured resolve.
type fakeTokenClient struct {
	requests []chain.TransferPayoutRequest
	resolves []func(chain.PayoutResult)
}

func (f *fakeTokenClient) TransferPayout(req chain.TransferPayoutRequest, resolve func(chain.PayoutResult)) {
	f.requests = append(f.requests, req)
	f.resolves = append(f.resolves, resolve)
}

func (f *fakeTokenClient) resolveLast(t *testing.T, result chain.PayoutResult) {
	t.Helper()
	require.NotEmpty(t, f.resolves, "no settlement in flight")
	f.resolves[len(f.resolves)-1](result)
}

type transferRecord struct {
	Currency entity.Currency
	Receiver string
	Amount   uint64
}

type fakeCurrencyClient struct {
	transfers []transferRecord
}

func (f *fakeCurrencyClient) Transfer(currency entity.Currency, receiver string, amount uint64) {
	f.transfers = append(f.transfers, transferRecord{currency, receiver, amount})
}

func testMarketConfig() config.MarketConfig {
	return config.MarketConfig{
		Account:             "marketplace",
		SupportedCurrencies: []string{string(entity.CurrencyNative), string(currencyWrapped)},
		BidHistoryLength:    5,
		StoragePerSale:      10000,
		MaxPayoutEntries:    10,
		FeeDenominator:      10000,
		ProtocolFee:         300,
		MaxTotalOrigins:     4700,
		ExtensionDuration:   15 * time.Minute,
		MaxAuctionDuration:  1000 * 24 * time.Hour,
	}
}

func newTestMarket(t *testing.T) (*Market, *fakeTokenClient, *fakeCurrencyClient, *fakeClock) {
	t.Helper()

	tokens := &fakeTokenClient{}
	transfers := &fakeCurrencyClient{}
	clock := newFakeClock()

	m := NewMarket(
		testMarketConfig(),
		repository.NewSaleRepository(),
		repository.NewAuctionRepository(),
		repository.NewStorageDepositRepository(),
		tokens,
		transfers,
	)
	m.now = clock.Now

	return m, tokens, transfers, clock
}

func openSale(t *testing.T, m *Market, clock *fakeClock, price uint64) entity.Sale {
	t.Helper()

	require.NoError(t, m.StorageDeposit(seller, m.StorageAmount()))

	result, err := m.OnApprove(nftContract, tokenID, seller, 1, entity.ApprovalArgs{
		Sale: &entity.SaleArgs{
			Conditions: entity.SaleConditions{entity.CurrencyNative: price},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Sale)

	// The availability window opens strictly after the listing time.
	clock.Tick(time.Second)

	return *result.Sale
}

func openAuction(t *testing.T, m *Market, clock *fakeClock, args entity.AuctionArgs) uint64 {
	t.Helper()

	require.NoError(t, m.StorageDeposit(seller, m.StorageAmount()))

	result, err := m.OnApprove(nftContract, tokenID, seller, 1, entity.ApprovalArgs{Auction: &args})
	require.NoError(t, err)
	require.NotNil(t, result.AuctionID)

	clock.Tick(time.Second)

	return *result.AuctionID
}
