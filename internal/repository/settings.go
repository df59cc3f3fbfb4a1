package repository

import (
	"context"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/store"
	"github.com/ethereum/go-ethereum/common"
)

const prefixSettings = "REGISTRY:SETTINGS:"

type SettingsRepository interface {
	GetSettings(ctx context.Context, collection common.Address) (*entity.RegistrySettings, error)
	SaveSettings(ctx context.Context, collection common.Address, settings entity.RegistrySettings) error
}

type settingsRepository struct {
	store *store.BadgerStore
}

type settingsRecord struct {
	Name    string
	Symbol  string
	Price   []byte
	BaseUri string
	Revenue []byte
	Supply  uint64
}

func NewSettingsRepository(store *store.BadgerStore) SettingsRepository {
	return settingsRepository{store}
}

func (r settingsRepository) GetSettings(ctx context.Context, collection common.Address) (*entity.RegistrySettings, error) {
	var rec settingsRecord
	found, err := r.store.Get(ctx, store.Key(prefixSettings, collection.Bytes()), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSettingsNotFound
	}

	return &entity.RegistrySettings{
		Name:    rec.Name,
		Symbol:  rec.Symbol,
		Price:   entity.BytesToAmount(rec.Price),
		BaseUri: rec.BaseUri,
		Revenue: entity.BytesToAmount(rec.Revenue),
		Supply:  rec.Supply,
	}, nil
}

func (r settingsRepository) SaveSettings(ctx context.Context, collection common.Address, settings entity.RegistrySettings) error {
	rec := settingsRecord{
		Name:    settings.Name,
		Symbol:  settings.Symbol,
		Price:   entity.AmountToBytes(settings.Price),
		BaseUri: settings.BaseUri,
		Revenue: entity.AmountToBytes(settings.Revenue),
		Supply:  settings.Supply,
	}

	return r.store.Set(ctx, store.Key(prefixSettings, collection.Bytes()), rec)
}
