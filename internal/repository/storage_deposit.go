package repository

// StorageDepositRepository is the per-account prepaid storage ledger gating
// how many listings an account may keep open.
type StorageDepositRepository interface {
	Balance(account string) uint64
	Add(account string, amount uint64)
	Set(account string, amount uint64)
	Drop(account string) uint64
}

type storageDepositRepository struct {
	balances map[string]uint64
}

func NewStorageDepositRepository() StorageDepositRepository {
	return &storageDepositRepository{balances: make(map[string]uint64)}
}

func (r *storageDepositRepository) Balance(account string) uint64 {
	return r.balances[account]
}

func (r *storageDepositRepository) Add(account string, amount uint64) {
	r.balances[account] += amount
}

func (r *storageDepositRepository) Set(account string, amount uint64) {
	if amount == 0 {
		delete(r.balances, account)
		return
	}
	r.balances[account] = amount
}

func (r *storageDepositRepository) Drop(account string) uint64 {
	balance := r.balances[account]
	delete(r.balances, account)
	return balance
}
