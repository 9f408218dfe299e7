package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/market"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Server exposes the marketplace's externally callable surface over HTTP:
// the approval webhook the NFT contract calls, the bidding operations, and
// the read-only views.
type Server struct {
	market   *market.Market
	cache    *cache.Cache
	validate *validator.Validate
}

func NewServer(m *market.Market, c *cache.Cache) Server {
	return Server{market: m, cache: c, validate: validator.New()}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/approvals", s.handleApproval).Methods("POST")

	r.HandleFunc("/storage/deposit", s.handleStorageDeposit).Methods("POST")
	r.HandleFunc("/storage/withdraw", s.handleStorageWithdraw).Methods("POST")
	r.HandleFunc("/storage/amount", s.handleStorageAmount).Methods("GET")
	r.HandleFunc("/storage/paid/{account}", s.handleStoragePaid).Methods("GET")

	r.HandleFunc("/sales", s.handleGetSales).Methods("GET")
	r.HandleFunc("/sales/owner/{owner}", s.handleGetSalesByOwner).Methods("GET")
	r.HandleFunc("/sales/contract/{contractAddr}", s.handleGetSalesByContract).Methods("GET")
	r.HandleFunc("/sales/token-type/{tokenType}", s.handleGetSalesByTokenType).Methods("GET")
	r.HandleFunc("/sales/{contractAddr}/{tokenId}", s.handleGetSale).Methods("GET")
	r.HandleFunc("/sales/{contractAddr}/{tokenId}", s.handleRemoveSale).Methods("DELETE")
	r.HandleFunc("/sales/{contractAddr}/{tokenId}/price", s.handleUpdatePrice).Methods("POST")
	r.HandleFunc("/sales/{contractAddr}/{tokenId}/offer", s.handleOffer).Methods("POST")
	r.HandleFunc("/sales/{contractAddr}/{tokenId}/accept", s.handleAcceptOffer).Methods("POST")
	r.HandleFunc("/sales/{contractAddr}/{tokenId}/bids/remove", s.handleRemoveBid).Methods("POST")
	r.HandleFunc("/sales/{contractAddr}/{tokenId}/bids/cancel", s.handleCancelBid).Methods("POST")
	r.HandleFunc("/sales/{contractAddr}/{tokenId}/bids/cancel-expired", s.handleCancelExpiredBids).Methods("POST")

	r.HandleFunc("/auctions", s.handleGetAuctions).Methods("GET")
	r.HandleFunc("/auctions/{auctionId}", s.handleGetAuction).Methods("GET")
	r.HandleFunc("/auctions/{auctionId}/bids", s.handleAuctionAddBid).Methods("POST")
	r.HandleFunc("/auctions/{auctionId}/cancel", s.handleCancelAuction).Methods("POST")
	r.HandleFunc("/auctions/{auctionId}/finish", s.handleFinishAuction).Methods("POST")
	r.HandleFunc("/auctions/{auctionId}/buyer", s.handleGetCurrentBuyer).Methods("GET")
	r.HandleFunc("/auctions/{auctionId}/bid", s.handleGetCurrentBid).Methods("GET")
	r.HandleFunc("/auctions/{auctionId}/minimal-next-bid", s.handleGetMinimalNextBid).Methods("GET")
	r.HandleFunc("/auctions/{auctionId}/in-progress", s.handleCheckInProgress).Methods("GET")

	r.HandleFunc("/price-with-fees", s.handlePriceWithFees).Methods("POST")

	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

type approvalRequest struct {
	NFTContract string              `json:"nftContract" validate:"required"`
	TokenID     string              `json:"tokenId" validate:"required"`
	Owner       string              `json:"owner" validate:"required"`
	ApprovalID  uint64              `json:"approvalId"`
	Args        entity.ApprovalArgs `json:"args"`
}

func (s Server) handleApproval(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Args.Sale != nil {
		if err := s.validate.Struct(req.Args.Sale); err != nil {
			badRequest(w, err)
			return
		}
	}
	if req.Args.Auction != nil {
		if err := s.validate.Struct(req.Args.Auction); err != nil {
			badRequest(w, err)
			return
		}
	}

	result, err := s.market.OnApprove(req.NFTContract, req.TokenID, req.Owner, req.ApprovalID, req.Args)
	if err != nil {
		badRequest(w, err)
		return
	}
	s.flushViews()
	writeJSON(w, result)
}

type storageRequest struct {
	Account string `json:"account" validate:"required"`
	Amount  uint64 `json:"amount"`
}

func (s Server) handleStorageDeposit(w http.ResponseWriter, r *http.Request) {
	var req storageRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.market.StorageDeposit(req.Account, req.Amount); err != nil {
		badRequest(w, err)
		return
	}
	writeJSON(w, map[string]uint64{"balance": req.Amount})
}

func (s Server) handleStorageWithdraw(w http.ResponseWriter, r *http.Request) {
	var req storageRequest
	if !s.decode(w, r, &req) {
		return
	}
	refund := s.market.StorageWithdraw(req.Account)
	writeJSON(w, map[string]uint64{"refund": refund})
}

func (s Server) handleStorageAmount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]uint64{"storagePerSale": s.market.StorageAmount()})
}

func (s Server) handleStoragePaid(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]
	writeJSON(w, map[string]uint64{"balance": s.market.StoragePaid(account)})
}

type updatePriceRequest struct {
	Caller   string          `json:"caller" validate:"required"`
	Currency entity.Currency `json:"currency" validate:"required"`
	Price    uint64          `json:"price" validate:"required,gt=0"`
}

func (s Server) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	contractAddr, tokenID := listingVars(r)
	var req updatePriceRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.market.UpdatePrice(req.Caller, contractAddr, tokenID, req.Currency, req.Price); err != nil {
		badRequest(w, err)
		return
	}
	s.flushViews()
	w.WriteHeader(http.StatusOK)
}

type offerRequest struct {
	Caller   string          `json:"caller" validate:"required"`
	Currency entity.Currency `json:"currency" validate:"required"`
	Deposit  uint64          `json:"deposit" validate:"required,gt=0"`

	Start    *time.Time     `json:"start,omitempty"`
	Duration *time.Duration `json:"duration,omitempty"`

	Origins entity.Origins `json:"origins,omitempty"`
}

func (s Server) handleOffer(w http.ResponseWriter, r *http.Request) {
	contractAddr, tokenID := listingVars(r)
	var req offerRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.market.Offer(req.Caller, contractAddr, tokenID, req.Currency, req.Deposit, req.Start, req.Duration, req.Origins); err != nil {
		badRequest(w, err)
		return
	}
	s.flushViews()
	w.WriteHeader(http.StatusOK)
}

type acceptOfferRequest struct {
	Caller   string          `json:"caller" validate:"required"`
	Currency entity.Currency `json:"currency" validate:"required"`
}

func (s Server) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	contractAddr, tokenID := listingVars(r)
	var req acceptOfferRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.market.AcceptOffer(req.Caller, contractAddr, tokenID, req.Currency); err != nil {
		badRequest(w, err)
		return
	}
	s.flushViews()
	w.WriteHeader(http.StatusOK)
}

func (s Server) handleRemoveSale(w http.ResponseWriter, r *http.Request) {
	contractAddr, tokenID := listingVars(r)
	caller := r.URL.Query().Get("caller")
	if caller == "" {
		http.Error(w, "caller required", http.StatusBadRequest)
		return
	}
	if err := s.market.RemoveSale(caller, contractAddr, tokenID); err != nil {
		badRequest(w, err)
		return
	}
	s.flushViews()
	w.WriteHeader(http.StatusOK)
}

type bidRequest struct {
	Caller   string          `json:"caller"`
	Owner    string          `json:"owner"`
	Currency entity.Currency `json:"currency" validate:"required"`
	Price    uint64          `json:"price"`
}

func (s Server) handleRemoveBid(w http.ResponseWriter, r *http.Request) {
	contractAddr, tokenID := listingVars(r)
	var req bidRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.market.RemoveBid(req.Caller, contractAddr, tokenID, req.Currency, req.Price); err != nil {
		badRequest(w, err)
		return
	}
	s.flushViews()
	w.WriteHeader(http.StatusOK)
}

func (s Server) handleCancelBid(w http.ResponseWriter, r *http.Request) {
	contractAddr, tokenID := listingVars(r)
	var req bidRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.market.CancelBid(contractAddr, tokenID, req.Currency, req.Owner, req.Price); err != nil {
		badRequest(w, err)
		return
	}
	s.flushViews()
	w.WriteHeader(http.StatusOK)
}

func (s Server) handleCancelExpiredBids(w http.ResponseWriter, r *http.Request) {
	contractAddr, tokenID := listingVars(r)
	var req bidRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.market.CancelExpiredBids(contractAddr, tokenID, req.Currency); err != nil {
		badRequest(w, err)
		return
	}
	s.flushViews()
	w.WriteHeader(http.StatusOK)
}

func (s Server) handleGetSale(w http.ResponseWriter, r *http.Request) {
	contractAddr, tokenID := listingVars(r)
	sale, err := s.market.GetSale(contractAddr, tokenID)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("contractAddr", contractAddr), zap.String("tokenId", tokenID)).Warn("Sale not available")
		http.Error(w, "Sale not available", http.StatusNotFound)
		return
	}
	writeJSON(w, sale)
}

func (s Server) handleGetSales(w http.ResponseWriter, r *http.Request) {
	from, limit := paging(r)
	cacheKey := fmt.Sprintf("sales.%d.%d", from, limit)
	if cached, found := s.cache.Get(cacheKey); found {
		writeJSON(w, cached)
		return
	}

	sales := s.market.GetSales(from, limit)
	s.cache.Set(cacheKey, sales, cache.DefaultExpiration)
	writeJSON(w, sales)
}

func (s Server) handleGetSalesByOwner(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["owner"]
	from, limit := paging(r)
	writeJSON(w, s.market.GetSalesByOwner(owner, from, limit))
}

func (s Server) handleGetSalesByContract(w http.ResponseWriter, r *http.Request) {
	contractAddr := mux.Vars(r)["contractAddr"]
	from, limit := paging(r)
	writeJSON(w, s.market.GetSalesByContract(contractAddr, from, limit))
}

func (s Server) handleGetSalesByTokenType(w http.ResponseWriter, r *http.Request) {
	tokenType := mux.Vars(r)["tokenType"]
	from, limit := paging(r)
	writeJSON(w, s.market.GetSalesByTokenType(tokenType, from, limit))
}

type auctionBidRequest struct {
	Caller    string         `json:"caller" validate:"required"`
	Deposit   uint64         `json:"deposit" validate:"required,gt=0"`
	TokenType string         `json:"tokenType,omitempty"`
	Origins   entity.Origins `json:"origins,omitempty"`
}

func (s Server) handleAuctionAddBid(w http.ResponseWriter, r *http.Request) {
	auctionID, err := auctionIDVar(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	var req auctionBidRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.market.AuctionAddBid(req.Caller, auctionID, req.Deposit, req.TokenType, req.Origins); err != nil {
		badRequest(w, err)
		return
	}
	s.flushViews()
	w.WriteHeader(http.StatusOK)
}

func (s Server) handleCancelAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, err := auctionIDVar(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	var req struct {
		Caller string `json:"caller"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.market.CancelAuction(req.Caller, auctionID); err != nil {
		badRequest(w, err)
		return
	}
	s.flushViews()
	w.WriteHeader(http.StatusOK)
}

func (s Server) handleFinishAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, err := auctionIDVar(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	if err := s.market.FinishAuction(auctionID); err != nil {
		badRequest(w, err)
		return
	}
	s.flushViews()
	w.WriteHeader(http.StatusOK)
}

func (s Server) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, err := auctionIDVar(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	auction, err := s.market.GetAuction(auctionID)
	if err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("auctionId", auctionID)).Warn("Auction not available")
		http.Error(w, "Auction not available", http.StatusNotFound)
		return
	}
	writeJSON(w, auction)
}

func (s Server) handleGetAuctions(w http.ResponseWriter, r *http.Request) {
	from, limit := paging(r)
	cacheKey := fmt.Sprintf("auctions.%d.%d", from, limit)
	if cached, found := s.cache.Get(cacheKey); found {
		writeJSON(w, cached)
		return
	}

	auctions := s.market.GetAuctions(from, limit)
	s.cache.Set(cacheKey, auctions, cache.DefaultExpiration)
	writeJSON(w, auctions)
}

func (s Server) handleGetCurrentBuyer(w http.ResponseWriter, r *http.Request) {
	auctionID, err := auctionIDVar(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	buyer, err := s.market.GetCurrentBuyer(auctionID)
	if err != nil {
		http.Error(w, "Auction not available", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{"buyer": buyer})
}

func (s Server) handleGetCurrentBid(w http.ResponseWriter, r *http.Request) {
	auctionID, err := auctionIDVar(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	bid, err := s.market.GetCurrentBid(auctionID)
	if err != nil {
		http.Error(w, "Auction not available", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]*uint64{"bid": bid})
}

func (s Server) handleGetMinimalNextBid(w http.ResponseWriter, r *http.Request) {
	auctionID, err := auctionIDVar(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	minimal, err := s.market.GetMinimalNextBid(auctionID)
	if err != nil {
		http.Error(w, "Auction not available", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]uint64{"minimalNextBid": minimal})
}

func (s Server) handleCheckInProgress(w http.ResponseWriter, r *http.Request) {
	auctionID, err := auctionIDVar(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	inProgress, err := s.market.CheckAuctionInProgress(auctionID)
	if err != nil {
		http.Error(w, "Auction not available", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]bool{"inProgress": inProgress})
}

type priceWithFeesRequest struct {
	Price   uint64         `json:"price" validate:"required,gt=0"`
	Origins entity.Origins `json:"origins,omitempty"`
}

func (s Server) handlePriceWithFees(w http.ResponseWriter, r *http.Request) {
	var req priceWithFeesRequest
	if !s.decode(w, r, &req) {
		return
	}
	price, err := s.market.PriceWithFees(req.Price, req.Origins)
	if err != nil {
		badRequest(w, err)
		return
	}
	writeJSON(w, map[string]uint64{"priceWithFees": price})
}

func (s Server) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		badRequest(w, err)
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		badRequest(w, err)
		return false
	}
	return true
}

// flushViews drops the cached list views after any mutation.
func (s Server) flushViews() {
	s.cache.Flush()
}

func listingVars(r *http.Request) (string, string) {
	vars := mux.Vars(r)
	return vars["contractAddr"], vars["tokenId"]
}

func auctionIDVar(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)["auctionId"], 10, 64)
}

func paging(r *http.Request) (int, int) {
	from, err := strconv.Atoi(r.URL.Query().Get("from"))
	if err != nil {
		from = 0
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 50
	}
	return from, limit
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to write response")
	}
}

func badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		_, _ = fmt.Fprintf(w, "Page not found")
	})
}
