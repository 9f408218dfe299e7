package event

type Type string

const (
	SaleOpenedEvent       Type = "SaleOpenedEvent"
	AuctionOpenedEvent    Type = "AuctionOpenedEvent"
	SettlementPaidEvent   Type = "SettlementPaidEvent"
	SettlementFailedEvent Type = "SettlementFailedEvent"
)
