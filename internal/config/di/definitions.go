package di

import (
	"time"

	"github.com/ZilDuck/nft-marketplace/internal/api"
	"github.com/ZilDuck/nft-marketplace/internal/chain"
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/market"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/patrickmn/go-cache"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

var Definitions = []di.Def{
	{
		Name: "cache",
		Build: func(ctn di.Container) (interface{}, error) {
			return cache.New(30*time.Second, time.Minute), nil
		},
	},
	{
		Name: "chain.client",
		Build: func(ctn di.Container) (interface{}, error) {
			cfg := config.Get().Chain
			client, err := chain.NewClient(cfg.Url, cfg.Timeout, cfg.Retries, cfg.Debug)
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to create chain client")
			}
			return client, nil
		},
	},
	{
		Name: "chain.tokens",
		Build: func(ctn di.Container) (interface{}, error) {
			return chain.NewTokenClient(ctn.Get("chain.client").(*chain.Client)), nil
		},
	},
	{
		Name: "chain.currencies",
		Build: func(ctn di.Container) (interface{}, error) {
			return chain.NewCurrencyClient(ctn.Get("chain.client").(*chain.Client)), nil
		},
	},
	{
		Name: "sale.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewSaleRepository(), nil
		},
	},
	{
		Name: "auction.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewAuctionRepository(), nil
		},
	},
	{
		Name: "deposit.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewStorageDepositRepository(), nil
		},
	},
	{
		Name: "market",
		Build: func(ctn di.Container) (interface{}, error) {
			return market.NewMarket(
				config.Get().Market,
				ctn.Get("sale.repo").(repository.SaleRepository),
				ctn.Get("auction.repo").(repository.AuctionRepository),
				ctn.Get("deposit.repo").(repository.StorageDepositRepository),
				ctn.Get("chain.tokens").(chain.TokenClient),
				ctn.Get("chain.currencies").(chain.CurrencyClient),
			), nil
		},
	},
	{
		Name: "api.server",
		Build: func(ctn di.Container) (interface{}, error) {
			return api.NewServer(
				ctn.Get("market").(*market.Market),
				ctn.Get("cache").(*cache.Cache),
			), nil
		},
	},
}

func NewContainer() (di.Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return di.Container(nil), err
	}
	if err := builder.Add(Definitions...); err != nil {
		return di.Container(nil), err
	}

	return builder.Build(), nil
}
