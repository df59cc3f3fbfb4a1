package store

import (
	"bytes"
	"context"
	"errors"
	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v4"
)

// Get decodes the value stored at key into v. It reports false when the key
// does not exist.
func (bs *BadgerStore) Get(ctx context.Context, key []byte, v interface{}) (bool, error) {
	val, err := bs.GetRaw(ctx, key)
	if err != nil || val == nil {
		return false, err
	}

	return true, msgpack.Unmarshal(val, v)
}

func (bs *BadgerStore) GetRaw(ctx context.Context, key []byte) ([]byte, error) {
	var val []byte
	err := bs.View(ctx, func(ctx context.Context) error {
		item, err := fromContext(ctx).txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})

	return val, err
}

func (bs *BadgerStore) Set(ctx context.Context, key []byte, v interface{}) error {
	val, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}

	return bs.SetRaw(ctx, key, val)
}

func (bs *BadgerStore) SetRaw(ctx context.Context, key, val []byte) error {
	t := fromContext(ctx)
	if t == nil || !t.writable {
		return ErrReadOnly
	}

	return t.txn.Set(key, val)
}

func (bs *BadgerStore) Delete(ctx context.Context, key []byte) error {
	t := fromContext(ctx)
	if t == nil || !t.writable {
		return ErrReadOnly
	}

	return t.txn.Delete(key)
}

// Iterate walks the keys under prefix in order, stopping after limit entries
// when limit is positive.
func (bs *BadgerStore) Iterate(ctx context.Context, prefix []byte, limit int, fn func(key, val []byte) error) error {
	return bs.View(ctx, func(ctx context.Context) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := fromContext(ctx).txn.NewIterator(opts)
		defer it.Close()

		count := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), val); err != nil {
				return err
			}
			count++
			if count == limit {
				break
			}
		}

		return nil
	})
}

// IterateReverse walks the keys under prefix from the last one backwards.
func (bs *BadgerStore) IterateReverse(ctx context.Context, prefix []byte, limit int, fn func(key, val []byte) error) error {
	return bs.View(ctx, func(ctx context.Context) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := fromContext(ctx).txn.NewIterator(opts)
		defer it.Close()

		count := 0
		for seekLast(it, prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), val); err != nil {
				return err
			}
			count++
			if count == limit {
				break
			}
		}

		return nil
	})
}

// seekLast positions a reverse iterator on the last key under prefix. The
// iterator must not be restricted to prefix, the seek lands past it. A
// non-empty prefix made only of 0xff bytes has no successor and is not
// supported.
func seekLast(it *badger.Iterator, prefix []byte) {
	if succ := successor(prefix); succ != nil {
		it.Seek(succ)
		if it.Valid() && !bytes.HasPrefix(it.Item().Key(), prefix) {
			it.Next()
		}
		return
	}
	it.Rewind()
}

// successor returns the smallest key greater than every key under prefix, or
// nil when prefix is empty or all 0xff.
func successor(prefix []byte) []byte {
	succ := append([]byte{}, prefix...)
	for i := len(succ) - 1; i >= 0; i-- {
		if succ[i] < 0xff {
			succ[i]++
			return succ[:i+1]
		}
	}

	return nil
}
