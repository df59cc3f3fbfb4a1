package store

import (
	"context"
	"errors"
	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
	"sync"
	"time"
)

var ErrReadOnly = errors.New("store: write attempted outside of an update transaction")

// Transactor runs a function inside a store transaction. A context that
// already carries a transaction joins it instead of opening a new one.
type Transactor interface {
	Update(ctx context.Context, fn func(ctx context.Context) error) error
	View(ctx context.Context, fn func(ctx context.Context) error) error
}

type BadgerStore struct {
	db *badger.DB

	// single writer: every outermost update holds the lock until commit
	mu sync.Mutex

	closed chan struct{}
}

type txnKey struct{}

type tx struct {
	txn      *badger.Txn
	writable bool
	commits  []func()
}

func OpenBadger(ctx context.Context, path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	bs := &BadgerStore{db: db, closed: make(chan struct{})}
	go bs.collectGarbage(ctx)

	return bs, nil
}

func OpenInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{db: db, closed: make(chan struct{})}, nil
}

func (bs *BadgerStore) Close() error {
	close(bs.closed)
	return bs.db.Close()
}

func (bs *BadgerStore) Update(ctx context.Context, fn func(ctx context.Context) error) error {
	if t := fromContext(ctx); t != nil {
		if !t.writable {
			return ErrReadOnly
		}
		return fn(ctx)
	}

	t, err := bs.update(ctx, fn)
	if err != nil {
		return err
	}

	for _, f := range t.commits {
		f()
	}

	return nil
}

func (bs *BadgerStore) update(ctx context.Context, fn func(ctx context.Context) error) (*tx, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	t := &tx{txn: bs.db.NewTransaction(true), writable: true}
	defer t.txn.Discard()

	if err := fn(context.WithValue(ctx, txnKey{}, t)); err != nil {
		return nil, err
	}

	if err := t.txn.Commit(); err != nil {
		zap.L().With(zap.Error(err)).Error("[Store] Failed to commit transaction")
		return nil, err
	}

	return t, nil
}

func (bs *BadgerStore) View(ctx context.Context, fn func(ctx context.Context) error) error {
	if t := fromContext(ctx); t != nil {
		return fn(ctx)
	}

	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return fn(context.WithValue(ctx, txnKey{}, &tx{txn: txn}))
}

// AfterCommit defers f until the outermost update transaction carried by ctx
// has committed. It is dropped if the transaction is discarded. Outside of an
// update transaction f runs immediately.
func AfterCommit(ctx context.Context, f func()) {
	t := fromContext(ctx)
	if t == nil || !t.writable {
		f()
		return
	}
	t.commits = append(t.commits, f)
}

func (bs *BadgerStore) collectGarbage(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-bs.closed:
			return
		case <-ticker.C:
		}

		lsm, vlog := bs.db.Size()
		zap.L().With(zap.Int64("lsm", lsm), zap.Int64("vlog", vlog)).Debug("[Store] Badger size")
		if lsm > 1024*1024*8 || vlog > 1024*1024*32 {
			err := bs.db.RunValueLogGC(0.5)
			zap.L().With(zap.Error(err)).Debug("[Store] Badger RunValueLogGC")
		}
	}
}

func fromContext(ctx context.Context) *tx {
	t, _ := ctx.Value(txnKey{}).(*tx)
	return t
}
