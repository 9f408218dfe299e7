package entity

// Payout is the split reported by the NFT contract after a transfer: how much
// of the gross price each recipient receives. Royalties, origin fees and the
// protocol fee are already folded in by the token contract.
type Payout map[string]uint64

func (p Payout) Total() (uint64, bool) {
	var total uint64
	for _, amount := range p {
		next := total + amount
		if next < total {
			return 0, false
		}
		total = next
	}
	return total, true
}

// Fees is the memo handed to the NFT contract with a transfer-payout request.
type Fees struct {
	Buyer  Origins `json:"buyer"`
	Seller Origins `json:"seller"`
}
