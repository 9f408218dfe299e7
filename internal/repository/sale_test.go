package repository

import (
	"fmt"
	"testing"

	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saleFixture(contract, token, owner, tokenType string) entity.Sale {
	return entity.Sale{
		Owner:       owner,
		NFTContract: contract,
		TokenID:     token,
		TokenType:   tokenType,
		Conditions:  entity.SaleConditions{entity.CurrencyNative: 100},
	}
}

func TestSaleRepositoryGetPutRemove(t *testing.T) {
	repo := NewSaleRepository()

	_, err := repo.Get("missing")
	assert.ErrorIs(t, err, ErrSaleNotFound)

	sale := saleFixture("contract-a", "token-1", "alice", "")
	repo.Put(sale)

	got, err := repo.Get(sale.Key())
	require.NoError(t, err)
	assert.Equal(t, sale, got)

	// Putting the same key again overwrites without duplicating.
	sale.Conditions[entity.CurrencyNative] = 200
	repo.Put(sale)
	assert.Equal(t, 1, repo.Count())

	removed, err := repo.Remove(sale.Key())
	require.NoError(t, err)
	assert.Equal(t, uint64(200), removed.Conditions[entity.CurrencyNative])

	_, err = repo.Remove(sale.Key())
	assert.ErrorIs(t, err, ErrSaleNotFound)
	assert.Zero(t, repo.Count())
}

func TestSaleRepositoryIndices(t *testing.T) {
	repo := NewSaleRepository()

	repo.Put(saleFixture("contract-a", "token-1", "alice", "land"))
	repo.Put(saleFixture("contract-a", "token-2", "bob", ""))
	repo.Put(saleFixture("contract-b", "token-3", "alice", "land"))

	assert.Equal(t, 3, repo.Count())
	assert.Equal(t, 2, repo.CountByOwner("alice"))
	assert.Equal(t, 2, repo.CountByContract("contract-a"))
	assert.Equal(t, 2, repo.CountByTokenType("land"))
	assert.Zero(t, repo.CountByOwner("carol"))

	byOwner := repo.ByOwner("alice", 0, 10)
	require.Len(t, byOwner, 2)
	assert.Equal(t, "token-1", byOwner[0].TokenID)
	assert.Equal(t, "token-3", byOwner[1].TokenID)

	_, err := repo.Remove(entity.ListingKey("contract-a", "token-1"))
	require.NoError(t, err)

	assert.Equal(t, 1, repo.CountByOwner("alice"))
	assert.Equal(t, 1, repo.CountByContract("contract-a"))
	assert.Equal(t, 1, repo.CountByTokenType("land"))
}

func TestSaleRepositoryPagination(t *testing.T) {
	repo := NewSaleRepository()

	for i := 0; i < 5; i++ {
		repo.Put(saleFixture("contract-a", fmt.Sprintf("token-%d", i), "alice", ""))
	}

	// Insertion order is the iteration order.
	page := repo.All(0, 2)
	require.Len(t, page, 2)
	assert.Equal(t, "token-0", page[0].TokenID)
	assert.Equal(t, "token-1", page[1].TokenID)

	page = repo.All(3, 10)
	require.Len(t, page, 2)
	assert.Equal(t, "token-3", page[0].TokenID)

	assert.Empty(t, repo.All(5, 10))
	assert.Empty(t, repo.All(-1, 10))
	assert.Empty(t, repo.All(0, 0))
}
