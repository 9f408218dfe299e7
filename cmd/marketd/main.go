package main

import (
	"net/http"

	"github.com/ZilDuck/nft-marketplace/internal/api"
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/ZilDuck/nft-marketplace/internal/config/di"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/internal/market"
	"go.uber.org/zap"
)

func main() {
	config.Init("marketd")

	container, err := di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	event.AddEventListener(event.SaleOpenedEvent, logSaleOpened)
	event.AddEventListener(event.SettlementPaidEvent, logSettlementPaid)
	event.AddEventListener(event.SettlementFailedEvent, logSettlementFailed)

	server := container.Get("api.server").(api.Server)

	zap.L().With(zap.String("port", config.Get().ApiPort)).Info("Marketplace Started")

	if err := http.ListenAndServe(":"+config.Get().ApiPort, server.Router()); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start marketplace")
	}
}

func logSaleOpened(msg interface{}) {
	sale, ok := msg.(entity.Sale)
	if !ok {
		return
	}
	zap.L().With(
		zap.String("key", sale.Key()),
		zap.String("slug", sale.Slug()),
		zap.String("owner", sale.Owner),
	).Info("Sale opened")
}

func logSettlementPaid(msg interface{}) {
	st, ok := msg.(market.Settlement)
	if !ok {
		return
	}
	zap.L().With(
		zap.String("id", st.ID),
		zap.String("nftContract", st.NFTContract),
		zap.String("tokenId", st.TokenID),
		zap.String("buyer", st.Buyer),
		zap.Uint64("price", st.Price),
	).Info("Settlement paid")
}

func logSettlementFailed(msg interface{}) {
	st, ok := msg.(market.Settlement)
	if !ok {
		return
	}
	zap.L().With(
		zap.String("id", st.ID),
		zap.String("nftContract", st.NFTContract),
		zap.String("tokenId", st.TokenID),
		zap.String("buyer", st.Buyer),
		zap.Uint64("price", st.Price),
	).Warn("Settlement failed, buyer refunded")
}
