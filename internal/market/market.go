package market

import (
	"sync"
	"time"

	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"go.uber.org/zap"
)

// Market is the sale/auction lifecycle and settlement engine. All handlers
// run under one mutex, mirroring the serial execution the host runtime
// guarantees per contract; the only suspension point is the asynchronous
// transfer-payout call, which re-enters through Resolve.
type Market struct {
	mu   sync.Mutex
	cfg  config.MarketConfig
	fees FeeTable

	currencies map[entity.Currency]bool

	sales    repository.SaleRepository
	auctions repository.AuctionRepository
	deposits repository.StorageDepositRepository

	tokens    chain.TokenClient
	transfers chain.CurrencyClient

	now func() time.Time
}

func NewMarket(
	cfg config.MarketConfig,
	sales repository.SaleRepository,
	auctions repository.AuctionRepository,
	deposits repository.StorageDepositRepository,
	tokens chain.TokenClient,
	transfers chain.CurrencyClient,
) *Market {
	currencies := make(map[entity.Currency]bool)
	currencies[entity.CurrencyNative] = true
	for _, currency := range cfg.SupportedCurrencies {
		currencies[entity.Currency(currency)] = true
	}

	return &Market{
		cfg:        cfg,
		fees:       NewFeeTable(cfg),
		currencies: currencies,
		sales:      sales,
		auctions:   auctions,
		deposits:   deposits,
		tokens:     tokens,
		transfers:  transfers,
		now:        time.Now,
	}
}

// ApprovalResult reports what an approval notification created.
type ApprovalResult struct {
	Sale      *entity.Sale    `json:"sale,omitempty"`
	AuctionID *uint64         `json:"auctionId,omitempty"`
	Auction   *entity.Auction `json:"auction,omitempty"`
}

// OnApprove handles the NFT contract's approval notification and opens a sale
// or an auction depending on the attached args.
func (m *Market) OnApprove(nftContract, tokenID, owner string, approvalID uint64, args entity.ApprovalArgs) (ApprovalResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if (args.Sale == nil) == (args.Auction == nil) {
		return ApprovalResult{}, ErrBadApprovalArgs
	}

	// The owner must have prepaid storage for one more listing.
	paid := m.deposits.Balance(owner)
	required := uint64(m.sales.CountByOwner(owner)+1) * m.cfg.StoragePerSale
	if paid < required {
		return ApprovalResult{}, ErrInsufficientStorage
	}

	if args.Sale != nil {
		sale, err := m.startSale(*args.Sale, tokenID, owner, approvalID, nftContract)
		if err != nil {
			return ApprovalResult{}, err
		}
		event.EmitEvent(event.SaleOpenedEvent, sale)
		return ApprovalResult{Sale: &sale}, nil
	}

	id, auction, err := m.startAuction(*args.Auction, tokenID, owner, approvalID, nftContract)
	if err != nil {
		return ApprovalResult{}, err
	}
	event.EmitEvent(event.AuctionOpenedEvent, auction)
	return ApprovalResult{AuctionID: &id, Auction: &auction}, nil
}

// StorageDeposit credits the prepaid storage balance of an account.
func (m *Market) StorageDeposit(account string, deposit uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if deposit < m.cfg.StoragePerSale {
		return ErrInsufficientStorage
	}
	m.deposits.Add(account, deposit)

	zap.L().With(
		zap.String("account", account),
		zap.Uint64("deposit", deposit),
	).Info("Market: Storage deposit")

	return nil
}

// StorageWithdraw returns the unused part of an account's storage balance,
// keeping what its open listings still occupy.
func (m *Market) StorageWithdraw(account string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance := m.deposits.Drop(account)
	occupied := uint64(m.sales.CountByOwner(account)) * m.cfg.StoragePerSale
	if balance <= occupied {
		m.deposits.Set(account, balance)
		return 0
	}

	refund := balance - occupied
	m.deposits.Set(account, occupied)
	m.transfers.Transfer(entity.CurrencyNative, account, refund)

	return refund
}

func (m *Market) StorageAmount() uint64 {
	return m.cfg.StoragePerSale
}

// StoragePaid reports the storage balance an account currently holds.
func (m *Market) StoragePaid(account string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.deposits.Balance(account)
}

func (m *Market) supportsCurrency(currency entity.Currency) bool {
	return m.currencies[currency]
}

// tokenTypeToCurrency maps an optional token type to the currency it is
// traded in; empty means the native currency.
func (m *Market) tokenTypeToCurrency(tokenType string) (entity.Currency, error) {
	currency := entity.CurrencyNative
	if tokenType != "" {
		currency = entity.Currency(tokenType)
	}
	if !m.supportsCurrency(currency) {
		return "", errUnsupportedCurrency(currency)
	}
	return currency, nil
}
