package market

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
)

// Read-only views. They fail loudly when the requested listing does not
// exist instead of returning zero values.

func (m *Market) GetSale(nftContract, tokenID string) (entity.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sales.Get(entity.ListingKey(nftContract, tokenID))
}

func (m *Market) GetSales(from, limit int) []entity.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sales.All(from, limit)
}

func (m *Market) GetSalesByOwner(owner string, from, limit int) []entity.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sales.ByOwner(owner, from, limit)
}

func (m *Market) GetSalesByContract(nftContract string, from, limit int) []entity.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sales.ByContract(nftContract, from, limit)
}

func (m *Market) GetSalesByTokenType(tokenType string, from, limit int) []entity.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sales.ByTokenType(tokenType, from, limit)
}

func (m *Market) SaleSupply() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sales.Count()
}

func (m *Market) SaleSupplyByOwner(owner string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sales.CountByOwner(owner)
}

func (m *Market) SaleSupplyByContract(nftContract string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sales.CountByContract(nftContract)
}

func (m *Market) SaleSupplyByTokenType(tokenType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sales.CountByTokenType(tokenType)
}

func (m *Market) GetAuction(auctionID uint64) (entity.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.auctions.Get(auctionID)
}

func (m *Market) GetAuctions(from, limit int) []entity.Auction {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.auctions.All(from, limit)
}

func (m *Market) AuctionSupply() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.auctions.Count()
}

// GetCurrentBuyer returns the account holding the live bid, or empty if no
// bid has landed yet.
func (m *Market) GetCurrentBuyer(auctionID uint64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	auction, err := m.auctions.Get(auctionID)
	if err != nil {
		return "", err
	}
	if auction.Bid == nil {
		return "", nil
	}
	return auction.Bid.Owner, nil
}

// GetCurrentBid returns the fee-exclusive amount of the live bid, or nil if
// there is none.
func (m *Market) GetCurrentBid(auctionID uint64) (*uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	auction, err := m.auctions.Get(auctionID)
	if err != nil {
		return nil, err
	}
	if auction.Bid == nil {
		return nil, nil
	}
	actual := m.fees.ActualAmount(auction.Bid.Price, TotalOrigins(auction.Bid.Origins))
	return &actual, nil
}

// GetMinimalNextBid returns the fee-exclusive floor for the next bid.
func (m *Market) GetMinimalNextBid(auctionID uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	auction, err := m.auctions.Get(auctionID)
	if err != nil {
		return 0, err
	}
	return m.minimalNextBid(auction), nil
}

func (m *Market) CheckAuctionInProgress(auctionID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	auction, err := m.auctions.Get(auctionID)
	if err != nil {
		return false, err
	}
	return auction.InProgress(m.now()), nil
}

// PriceWithFees computes the buyer-side gross for a fee-exclusive price.
func (m *Market) PriceWithFees(price uint64, origins entity.Origins) (uint64, error) {
	return m.fees.PriceWithFees(price, origins)
}
