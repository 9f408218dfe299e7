package repository

import (
	"errors"

	"github.com/ZilDuck/nft-marketplace/internal/entity"
)

var (
	ErrSaleNotFound = errors.New("sale not found")
)

// SaleRepository is the keyed arena of open sales plus the secondary indices
// used by the discovery views. The market engine is the sole writer; handlers
// already run serially so the repository itself carries no locking.
type SaleRepository interface {
	Get(key string) (entity.Sale, error)
	Put(sale entity.Sale)
	Remove(key string) (entity.Sale, error)

	Count() int
	CountByOwner(owner string) int
	CountByContract(nftContract string) int
	CountByTokenType(tokenType string) int

	All(from, limit int) []entity.Sale
	ByOwner(owner string, from, limit int) []entity.Sale
	ByContract(nftContract string, from, limit int) []entity.Sale
	ByTokenType(tokenType string, from, limit int) []entity.Sale
}

type saleRepository struct {
	sales map[string]entity.Sale
	keys  []string

	byOwner     map[string][]string
	byContract  map[string][]string
	byTokenType map[string][]string
}

func NewSaleRepository() SaleRepository {
	return &saleRepository{
		sales:       make(map[string]entity.Sale),
		byOwner:     make(map[string][]string),
		byContract:  make(map[string][]string),
		byTokenType: make(map[string][]string),
	}
}

func (r *saleRepository) Get(key string) (entity.Sale, error) {
	sale, ok := r.sales[key]
	if !ok {
		return entity.Sale{}, ErrSaleNotFound
	}
	return sale, nil
}

func (r *saleRepository) Put(sale entity.Sale) {
	key := sale.Key()
	if _, exists := r.sales[key]; !exists {
		r.keys = append(r.keys, key)
		r.byOwner[sale.Owner] = append(r.byOwner[sale.Owner], key)
		r.byContract[sale.NFTContract] = append(r.byContract[sale.NFTContract], key)
		if sale.TokenType != "" {
			r.byTokenType[sale.TokenType] = append(r.byTokenType[sale.TokenType], key)
		}
	}
	r.sales[key] = sale
}

func (r *saleRepository) Remove(key string) (entity.Sale, error) {
	sale, ok := r.sales[key]
	if !ok {
		return entity.Sale{}, ErrSaleNotFound
	}
	delete(r.sales, key)
	r.keys = removeKey(r.keys, key)

	r.byOwner[sale.Owner] = removeKey(r.byOwner[sale.Owner], key)
	if len(r.byOwner[sale.Owner]) == 0 {
		delete(r.byOwner, sale.Owner)
	}
	r.byContract[sale.NFTContract] = removeKey(r.byContract[sale.NFTContract], key)
	if len(r.byContract[sale.NFTContract]) == 0 {
		delete(r.byContract, sale.NFTContract)
	}
	if sale.TokenType != "" {
		r.byTokenType[sale.TokenType] = removeKey(r.byTokenType[sale.TokenType], key)
		if len(r.byTokenType[sale.TokenType]) == 0 {
			delete(r.byTokenType, sale.TokenType)
		}
	}

	return sale, nil
}

func (r *saleRepository) Count() int {
	return len(r.keys)
}

func (r *saleRepository) CountByOwner(owner string) int {
	return len(r.byOwner[owner])
}

func (r *saleRepository) CountByContract(nftContract string) int {
	return len(r.byContract[nftContract])
}

func (r *saleRepository) CountByTokenType(tokenType string) int {
	return len(r.byTokenType[tokenType])
}

func (r *saleRepository) All(from, limit int) []entity.Sale {
	return r.page(r.keys, from, limit)
}

func (r *saleRepository) ByOwner(owner string, from, limit int) []entity.Sale {
	return r.page(r.byOwner[owner], from, limit)
}

func (r *saleRepository) ByContract(nftContract string, from, limit int) []entity.Sale {
	return r.page(r.byContract[nftContract], from, limit)
}

func (r *saleRepository) ByTokenType(tokenType string, from, limit int) []entity.Sale {
	return r.page(r.byTokenType[tokenType], from, limit)
}

func (r *saleRepository) page(keys []string, from, limit int) []entity.Sale {
	if from < 0 || from >= len(keys) || limit <= 0 {
		return []entity.Sale{}
	}
	end := from + limit
	if end > len(keys) {
		end = len(keys)
	}

	sales := make([]entity.Sale, 0, end-from)
	for _, key := range keys[from:end] {
		sales = append(sales, r.sales[key])
	}
	return sales
}

func removeKey(keys []string, key string) []string {
	for i, k := range keys {
		if k == key {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}
