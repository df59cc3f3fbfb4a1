package repository

import (
	"context"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"math/big"
)

const prefixAccount = "WALLET:BALANCE:"

// AccountRepository holds the balances of the external accounts that payouts
// are delivered to.
type AccountRepository interface {
	GetBalance(ctx context.Context, account common.Address) (*big.Int, error)
	SetBalance(ctx context.Context, account common.Address, amount *big.Int) error
}

type accountRepository struct {
	store *store.BadgerStore
}

func NewAccountRepository(store *store.BadgerStore) AccountRepository {
	return accountRepository{store}
}

func (r accountRepository) GetBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	val, err := r.store.GetRaw(ctx, store.Key(prefixAccount, account.Bytes()))
	if err != nil {
		return nil, err
	}

	return entity.BytesToAmount(val), nil
}

func (r accountRepository) SetBalance(ctx context.Context, account common.Address, amount *big.Int) error {
	return r.store.SetRaw(ctx, store.Key(prefixAccount, account.Bytes()), entity.AmountToBytes(amount))
}
