package chain

import (
	"encoding/json"

	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// TransferPayoutRequest asks the NFT contract to move the token to the buyer
// and report how the gross price splits across royalty and fee recipients.
type TransferPayoutRequest struct {
	NFTContract string `json:"nftContract"`
	TokenID     string `json:"tokenId"`
	Receiver    string `json:"receiver"`
	ApprovalID  uint64 `json:"approvalId"`
	Memo        string `json:"memo,omitempty"`
	Balance     uint64 `json:"balance"`
	MaxPayout   int    `json:"maxPayout"`
}

type PayoutResult struct {
	Payout entity.Payout
	Err    error
}

// TokenClient is the NFT contract collaborator. TransferPayout is
// asynchronous: resolve is invoked exactly once, from another goroutine, when
// the remote call settles either way.
type TokenClient interface {
	TransferPayout(req TransferPayoutRequest, resolve func(PayoutResult))
}

type tokenClient struct {
	rpc *Client
}

func NewTokenClient(rpc *Client) TokenClient {
	return tokenClient{rpc}
}

func (c tokenClient) TransferPayout(req TransferPayoutRequest, resolve func(PayoutResult)) {
	go func() {
		resp, err := c.rpc.Call("NFTTransferPayout", req)
		if err != nil {
			resolve(PayoutResult{Err: errors.Wrap(err, "nft transfer payout")})
			return
		}

		var payout entity.Payout
		if err := json.Unmarshal(resp.Result, &payout); err != nil {
			zap.L().With(zap.Error(err), zap.String("tokenId", req.TokenID)).Warn("Chain: Bad payout response")
			resolve(PayoutResult{Err: errors.Wrap(err, "decode payout")})
			return
		}

		resolve(PayoutResult{Payout: payout})
	}()
}
