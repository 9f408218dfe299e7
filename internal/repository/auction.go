package repository

import (
	"errors"

	"github.com/ZilDuck/nft-marketplace/internal/entity"
)

var (
	ErrAuctionNotFound = errors.New("auction not found")
)

// AuctionRepository is the arena of live auctions keyed by a global
// incrementing id.
type AuctionRepository interface {
	Create(auction entity.Auction) uint64
	Get(id uint64) (entity.Auction, error)
	Put(id uint64, auction entity.Auction)
	Remove(id uint64) (entity.Auction, error)

	Count() int
	All(from, limit int) []entity.Auction
}

type auctionRepository struct {
	auctions map[uint64]entity.Auction
	ids      []uint64
	nextID   uint64
}

func NewAuctionRepository() AuctionRepository {
	return &auctionRepository{auctions: make(map[uint64]entity.Auction)}
}

func (r *auctionRepository) Create(auction entity.Auction) uint64 {
	id := r.nextID
	r.nextID++
	r.auctions[id] = auction
	r.ids = append(r.ids, id)
	return id
}

func (r *auctionRepository) Get(id uint64) (entity.Auction, error) {
	auction, ok := r.auctions[id]
	if !ok {
		return entity.Auction{}, ErrAuctionNotFound
	}
	return auction, nil
}

func (r *auctionRepository) Put(id uint64, auction entity.Auction) {
	if _, exists := r.auctions[id]; !exists {
		r.ids = append(r.ids, id)
	}
	r.auctions[id] = auction
}

func (r *auctionRepository) Remove(id uint64) (entity.Auction, error) {
	auction, ok := r.auctions[id]
	if !ok {
		return entity.Auction{}, ErrAuctionNotFound
	}
	delete(r.auctions, id)
	for i, known := range r.ids {
		if known == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
	return auction, nil
}

func (r *auctionRepository) Count() int {
	return len(r.ids)
}

func (r *auctionRepository) All(from, limit int) []entity.Auction {
	if from < 0 || from >= len(r.ids) || limit <= 0 {
		return []entity.Auction{}
	}
	end := from + limit
	if end > len(r.ids) {
		end = len(r.ids)
	}

	auctions := make([]entity.Auction, 0, end-from)
	for _, id := range r.ids[from:end] {
		auctions = append(auctions, r.auctions[id])
	}
	return auctions
}
