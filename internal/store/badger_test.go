package store

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func openTestStore(t *testing.T) *BadgerStore {
	bs, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })

	return bs
}

func TestUpdateCommitsAndRunsAfterCommitHooks(t *testing.T) {
	bs := openTestStore(t)
	ctx := context.Background()

	fired := 0
	err := bs.Update(ctx, func(ctx context.Context) error {
		AfterCommit(ctx, func() { fired++ })
		return bs.SetRaw(ctx, []byte("k"), []byte("v"))
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	val, err := bs.GetRaw(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}

func TestFailedUpdateDiscardsWritesAndHooks(t *testing.T) {
	bs := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	fired := false
	err := bs.Update(ctx, func(ctx context.Context) error {
		AfterCommit(ctx, func() { fired = true })
		if err := bs.SetRaw(ctx, []byte("k"), []byte("v")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, fired)

	val, err := bs.GetRaw(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestNestedUpdateJoinsOuterTransaction(t *testing.T) {
	bs := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	hooks := 0
	err := bs.Update(ctx, func(ctx context.Context) error {
		err := bs.Update(ctx, func(ctx context.Context) error {
			AfterCommit(ctx, func() { hooks++ })
			return bs.SetRaw(ctx, []byte("inner"), []byte("1"))
		})
		require.NoError(t, err)

		val, err := bs.GetRaw(ctx, []byte("inner"))
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), val)
		assert.Equal(t, 0, hooks)

		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, hooks)

	val, err := bs.GetRaw(ctx, []byte("inner"))
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestWriteInsideViewFails(t *testing.T) {
	bs := openTestStore(t)
	ctx := context.Background()

	err := bs.View(ctx, func(ctx context.Context) error {
		return bs.Update(ctx, func(ctx context.Context) error { return nil })
	})
	assert.ErrorIs(t, err, ErrReadOnly)

	assert.ErrorIs(t, bs.SetRaw(ctx, []byte("k"), []byte("v")), ErrReadOnly)
}

func TestIterate(t *testing.T) {
	bs := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, bs.Update(ctx, func(ctx context.Context) error {
		for i := uint64(1); i <= 5; i++ {
			if err := bs.Set(ctx, Key("N:", Uint64ToBytes(i)), i); err != nil {
				return err
			}
		}
		return bs.Set(ctx, []byte("O:1"), 99)
	}))

	var forward []uint64
	require.NoError(t, bs.Iterate(ctx, []byte("N:"), 3, func(key, _ []byte) error {
		forward = append(forward, BytesToUint64(key[2:]))
		return nil
	}))
	assert.Equal(t, []uint64{1, 2, 3}, forward)

	var backward []uint64
	require.NoError(t, bs.IterateReverse(ctx, []byte("N:"), 0, func(key, _ []byte) error {
		backward = append(backward, BytesToUint64(key[2:]))
		return nil
	}))
	assert.Equal(t, []uint64{5, 4, 3, 2, 1}, backward)

	var v uint64
	found, err := bs.Get(ctx, Key("N:", Uint64ToBytes(4)), &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(4), v)
}

func TestIterateReverseReachesHighKeys(t *testing.T) {
	bs := openTestStore(t)
	ctx := context.Background()

	ids := []uint64{1, 0xff00000000000000, math.MaxUint64}
	require.NoError(t, bs.Update(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			if err := bs.SetRaw(ctx, Key("N:", Uint64ToBytes(id)), []byte{1}); err != nil {
				return err
			}
		}
		if err := bs.SetRaw(ctx, []byte("N;"), []byte{2}); err != nil {
			return err
		}
		return bs.SetRaw(ctx, []byte("O:1"), []byte{3})
	}))

	var backward []uint64
	require.NoError(t, bs.IterateReverse(ctx, []byte("N:"), 0, func(key, _ []byte) error {
		backward = append(backward, BytesToUint64(key[2:]))
		return nil
	}))
	assert.Equal(t, []uint64{math.MaxUint64, 0xff00000000000000, 1}, backward)

	var last []uint64
	require.NoError(t, bs.IterateReverse(ctx, []byte("N:"), 1, func(key, _ []byte) error {
		last = append(last, BytesToUint64(key[2:]))
		return nil
	}))
	assert.Equal(t, []uint64{math.MaxUint64}, last)
}

func TestSuccessor(t *testing.T) {
	assert.Equal(t, []byte("N;"), successor([]byte("N:")))
	assert.Equal(t, []byte{0x01}, successor([]byte{0x00, 0xff}))
	assert.Nil(t, successor([]byte{0xff, 0xff}))
	assert.Nil(t, successor(nil))
}
