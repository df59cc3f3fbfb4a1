package repository

import (
	"context"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/nu7hatch/gouuid"
	"github.com/vmihailenco/msgpack/v4"
	"time"
)

const (
	prefixActionPayload = "ACTION:PAYLOAD:"
	prefixActionItem    = "ACTION:ITEM:"
)

type ActionRepository interface {
	AddAction(ctx context.Context, action *entity.Action) error
	GetItemActions(ctx context.Context, collection common.Address, itemId uint64, limit int) ([]entity.Action, error)
	GetRecentActions(ctx context.Context, limit int) ([]entity.Action, error)
}

type actionRepository struct {
	store *store.BadgerStore
}

type actionRecord struct {
	Id         string
	Action     string
	Collection []byte
	ItemId     uint64
	From       []byte
	To         []byte
	Cost       string
	Memo       string
	CreatedAt  time.Time
}

func NewActionRepository(store *store.BadgerStore) ActionRepository {
	return actionRepository{store}
}

// AddAction assigns an id and timestamp to action when missing and appends it
// to the history log.
func (r actionRepository) AddAction(ctx context.Context, action *entity.Action) error {
	if action.Id == "" {
		u, err := uuid.NewV4()
		if err != nil {
			return err
		}
		action.Id = u.String()
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now().UTC()
	}

	rec := actionRecord{
		Id:         action.Id,
		Action:     string(action.Action),
		Collection: action.Collection.Bytes(),
		ItemId:     action.ItemId,
		From:       action.From.Bytes(),
		To:         action.To.Bytes(),
		Cost:       action.Cost,
		Memo:       action.Memo,
		CreatedAt:  action.CreatedAt,
	}

	key := store.Key(prefixActionPayload, store.TsToBytes(action.CreatedAt), []byte(action.Id))
	if err := r.store.Set(ctx, key, rec); err != nil {
		return err
	}

	if !action.IsItemAction() {
		return nil
	}

	indexKey := store.Key(prefixActionItem, action.Collection.Bytes(), store.Uint64ToBytes(action.ItemId), store.TsToBytes(action.CreatedAt), []byte(action.Id))
	return r.store.SetRaw(ctx, indexKey, key)
}

func (r actionRepository) GetItemActions(ctx context.Context, collection common.Address, itemId uint64, limit int) ([]entity.Action, error) {
	actions := make([]entity.Action, 0)
	prefix := store.Key(prefixActionItem, collection.Bytes(), store.Uint64ToBytes(itemId))
	err := r.store.Iterate(ctx, prefix, limit, func(_, payloadKey []byte) error {
		var rec actionRecord
		found, err := r.store.Get(ctx, payloadKey, &rec)
		if err != nil || !found {
			return err
		}
		actions = append(actions, rec.toEntity())
		return nil
	})

	return actions, err
}

func (r actionRepository) GetRecentActions(ctx context.Context, limit int) ([]entity.Action, error) {
	actions := make([]entity.Action, 0)
	err := r.store.IterateReverse(ctx, []byte(prefixActionPayload), limit, func(_, val []byte) error {
		var rec actionRecord
		if err := msgpack.Unmarshal(val, &rec); err != nil {
			return err
		}
		actions = append(actions, rec.toEntity())
		return nil
	})

	return actions, err
}

func (rec actionRecord) toEntity() entity.Action {
	return entity.Action{
		Id:         rec.Id,
		Action:     entity.ActionType(rec.Action),
		Collection: common.BytesToAddress(rec.Collection),
		ItemId:     rec.ItemId,
		From:       common.BytesToAddress(rec.From),
		To:         common.BytesToAddress(rec.To),
		Cost:       rec.Cost,
		Memo:       rec.Memo,
		CreatedAt:  rec.CreatedAt,
	}
}
