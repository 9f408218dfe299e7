package chain

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"go.uber.org/zap"
)

// CurrencyClient is the currency transfer primitive: a direct native
// transfer, or a transfer call to a fungible token contract. Transfers are
// fire-and-forget from the marketplace's perspective; failures are the token
// contract's to reconcile.
type CurrencyClient interface {
	Transfer(currency entity.Currency, receiver string, amount uint64)
}

type currencyClient struct {
	rpc *Client
}

func NewCurrencyClient(rpc *Client) CurrencyClient {
	return currencyClient{rpc}
}

type nativeTransferParams struct {
	Receiver string `json:"receiver"`
	Amount   uint64 `json:"amount"`
}

type ftTransferParams struct {
	Contract string `json:"contract"`
	Receiver string `json:"receiver"`
	Amount   uint64 `json:"amount"`
}

func (c currencyClient) Transfer(currency entity.Currency, receiver string, amount uint64) {
	go func() {
		var err error
		if currency == entity.CurrencyNative {
			_, err = c.rpc.Call("TransferNative", nativeTransferParams{receiver, amount})
		} else {
			_, err = c.rpc.Call("FTTransfer", ftTransferParams{string(currency), receiver, amount})
		}
		if err != nil {
			zap.L().With(
				zap.Error(err),
				zap.String("currency", string(currency)),
				zap.String("receiver", receiver),
				zap.Uint64("amount", amount),
			).Error("Chain: Currency transfer failed")
		}
	}()
}
