package market

import (
	"errors"
	"math"
	"math/big"

	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
)

var ErrAmountOverflow = errors.New("amount overflows")

// FeeTable carries the fee constants of the marketplace. The denominator is
// the weight of 100%; the protocol fee and all origin weights are expressed
// against it.
type FeeTable struct {
	Denominator     uint64
	ProtocolFee     uint64
	MaxTotalOrigins uint64
}

func NewFeeTable(cfg config.MarketConfig) FeeTable {
	return FeeTable{
		Denominator:     cfg.FeeDenominator,
		ProtocolFee:     cfg.ProtocolFee,
		MaxTotalOrigins: cfg.MaxTotalOrigins,
	}
}

// TotalOrigins sums the weights of a fee-share set.
func TotalOrigins(origins entity.Origins) uint64 {
	var total uint64
	for _, weight := range origins {
		total += uint64(weight)
	}
	return total
}

// ActualAmount strips the protocol fee and origin shares from a gross amount,
// leaving the seller-side net. Integer floor division, consistent with
// PriceWithFees up to 1 unit of rounding.
func (f FeeTable) ActualAmount(amount uint64, totalOrigins uint64) uint64 {
	gross := new(big.Int).SetUint64(amount)
	fees := new(big.Int).SetUint64(totalOrigins + f.ProtocolFee)

	originFee := new(big.Int).Mul(gross, fees)
	originFee.Div(originFee, new(big.Int).SetUint64(f.Denominator+totalOrigins+f.ProtocolFee))

	return amount - originFee.Uint64()
}

// PriceWithFees returns the buyer-side gross for a fee-exclusive price:
// price * (denom + protocolFee + totalOrigins) / denom.
func (f FeeTable) PriceWithFees(price uint64, origins entity.Origins) (uint64, error) {
	totalOrigins := TotalOrigins(origins)

	gross := new(big.Int).SetUint64(price)
	gross.Mul(gross, new(big.Int).SetUint64(f.Denominator+f.ProtocolFee+totalOrigins))
	gross.Div(gross, new(big.Int).SetUint64(f.Denominator))

	if gross.Cmp(new(big.Int).SetUint64(math.MaxUint64)) > 0 {
		return 0, ErrAmountOverflow
	}

	return gross.Uint64(), nil
}
