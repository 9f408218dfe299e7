package market

import (
	"encoding/json"

	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	uuid "github.com/nu7hatch/gouuid"
	"go.uber.org/zap"
)

// Settlement is the correlation payload of an in-flight settlement: the
// listing is already gone from storage by the time it exists, and the resolve
// step reconstructs everything it needs from this struct alone.
type Settlement struct {
	ID       string          `json:"id"`
	Currency entity.Currency `json:"currency"`
	Buyer    string          `json:"buyer"`
	Price    uint64          `json:"price"`

	Seller      string `json:"seller"`
	NFTContract string `json:"nftContract"`
	TokenID     string `json:"tokenId"`

	// Outstanding bids of the settled sale, refunded once the transfer is
	// confirmed. Empty for auctions.
	RemainingBids entity.Bids `json:"remainingBids,omitempty"`
}

func (m *Market) settle(sale entity.Sale, currency entity.Currency, price uint64, buyer string, buyerOrigins entity.Origins, remaining entity.Bids) {
	st := Settlement{
		ID:            correlationID(),
		Currency:      currency,
		Buyer:         buyer,
		Price:         price,
		Seller:        sale.Owner,
		NFTContract:   sale.NFTContract,
		TokenID:       sale.TokenID,
		RemainingBids: remaining,
	}
	m.beginSettlement(st, sale.ApprovalID, buyerOrigins, sale.Origins)
}

// beginSettlement issues the asynchronous transfer-payout request. The
// listing has already been removed by the caller; from here on the saga can
// only end in a disbursement or a refund.
func (m *Market) beginSettlement(st Settlement, approvalID uint64, buyerOrigins, sellerOrigins entity.Origins) {
	buyer := make(entity.Origins, len(buyerOrigins)+1)
	for account, weight := range buyerOrigins {
		buyer[account] = weight
	}
	buyer[m.cfg.Account] = uint32(m.cfg.ProtocolFee)

	seller := make(entity.Origins, len(sellerOrigins)+1)
	for account, weight := range sellerOrigins {
		seller[account] = weight
	}
	seller[m.cfg.Account] = uint32(m.cfg.ProtocolFee)

	memo, _ := json.Marshal(entity.Fees{Buyer: buyer, Seller: seller})

	zap.L().With(
		zap.String("settlement", st.ID),
		zap.String("tokenId", st.TokenID),
		zap.String("buyer", st.Buyer),
		zap.Uint64("price", st.Price),
	).Info("Market: Settlement initiated")

	m.tokens.TransferPayout(chain.TransferPayoutRequest{
		NFTContract: st.NFTContract,
		TokenID:     st.TokenID,
		Receiver:    st.Buyer,
		ApprovalID:  approvalID,
		Memo:        string(memo),
		Balance:     st.Price,
		MaxPayout:   m.cfg.MaxPayoutEntries,
	}, func(result chain.PayoutResult) {
		m.Resolve(st, result)
	})
}

// Resolve is the settlement callback. A failed transfer, or a payout map
// that is empty, oversized or does not account for the price within 1 unit,
// refunds the buyer; anything else disburses the payout and refunds the
// remaining bids. Returns the amount the host runtime should hand back to
// the buyer's currency flow: the full price for native settlements, zero for
// fungible ones (payouts already went out as transfer instructions).
func (m *Market) Resolve(st Settlement, result chain.PayoutResult) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	payout, ok := m.validPayout(st, result)
	if !ok {
		if st.Currency == entity.CurrencyNative {
			m.transfers.Transfer(st.Currency, st.Buyer, st.Price)
		}
		zap.L().With(
			zap.String("settlement", st.ID),
			zap.String("seller", st.Seller),
			zap.String("nftContract", st.NFTContract),
			zap.String("tokenId", st.TokenID),
			zap.String("currency", string(st.Currency)),
			zap.Uint64("price", st.Price),
			zap.String("buyer", st.Buyer),
		).Warn("Market: Settlement failed, buyer refunded")
		event.EmitEvent(event.SettlementFailedEvent, st)
		return st.Price
	}

	// The buyer is paying for the token; everyone else gets their bids back
	// before the payout goes out.
	m.refundAllBids(st.RemainingBids)

	for receiver, amount := range payout {
		m.transfers.Transfer(st.Currency, receiver, amount)
	}

	zap.L().With(
		zap.String("settlement", st.ID),
		zap.String("tokenId", st.TokenID),
		zap.String("buyer", st.Buyer),
		zap.Uint64("price", st.Price),
		zap.Int("payees", len(payout)),
	).Info("Market: Settlement disbursed")
	event.EmitEvent(event.SettlementPaidEvent, st)

	if st.Currency == entity.CurrencyNative {
		return st.Price
	}
	return 0
}

func (m *Market) validPayout(st Settlement, result chain.PayoutResult) (entity.Payout, bool) {
	if result.Err != nil {
		zap.L().With(zap.Error(result.Err), zap.String("settlement", st.ID)).Warn("Market: Transfer payout failed")
		return nil, false
	}
	payout := result.Payout
	if len(payout) == 0 {
		return nil, false
	}
	if len(payout)+st.RemainingBids.Count() > m.cfg.MaxPayoutEntries {
		zap.L().With(zap.String("settlement", st.ID)).Warn("Market: Too many payouts and bid refunds")
		return nil, false
	}

	total, ok := payout.Total()
	if !ok || total > st.Price {
		return nil, false
	}
	// Up to 1 unit of integer-division remainder goes unclaimed; any larger
	// shortfall means a buggy or malicious token contract.
	if st.Price-total > 1 {
		return nil, false
	}

	return payout, true
}

func correlationID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}
