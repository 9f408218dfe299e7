package repository

import (
	"testing"

	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuctionRepositoryIDsIncrement(t *testing.T) {
	repo := NewAuctionRepository()

	first := repo.Create(entity.Auction{Owner: "alice"})
	second := repo.Create(entity.Auction{Owner: "bob"})
	assert.Equal(t, first+1, second)

	got, err := repo.Get(first)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Owner)

	// IDs are never reused after a removal.
	_, err = repo.Remove(first)
	require.NoError(t, err)
	third := repo.Create(entity.Auction{Owner: "carol"})
	assert.Equal(t, second+1, third)
}

func TestAuctionRepositoryRemove(t *testing.T) {
	repo := NewAuctionRepository()

	id := repo.Create(entity.Auction{Owner: "alice"})

	removed, err := repo.Remove(id)
	require.NoError(t, err)
	assert.Equal(t, "alice", removed.Owner)

	_, err = repo.Remove(id)
	assert.ErrorIs(t, err, ErrAuctionNotFound)
	_, err = repo.Get(id)
	assert.ErrorIs(t, err, ErrAuctionNotFound)
}

func TestAuctionRepositoryAll(t *testing.T) {
	repo := NewAuctionRepository()

	for _, owner := range []string{"alice", "bob", "carol"} {
		repo.Create(entity.Auction{Owner: owner})
	}

	page := repo.All(1, 1)
	require.Len(t, page, 1)
	assert.Equal(t, "bob", page[0].Owner)

	assert.Len(t, repo.All(0, 10), 3)
	assert.Empty(t, repo.All(3, 10))
	assert.Equal(t, 3, repo.Count())
}

func TestStorageDepositRepository(t *testing.T) {
	repo := NewStorageDepositRepository()

	assert.Zero(t, repo.Balance("alice"))

	repo.Add("alice", 100)
	repo.Add("alice", 50)
	assert.Equal(t, uint64(150), repo.Balance("alice"))

	repo.Set("alice", 40)
	assert.Equal(t, uint64(40), repo.Balance("alice"))

	assert.Equal(t, uint64(40), repo.Drop("alice"))
	assert.Zero(t, repo.Balance("alice"))
	assert.Zero(t, repo.Drop("alice"))

	repo.Add("bob", 10)
	repo.Set("bob", 0)
	assert.Zero(t, repo.Balance("bob"))
}
