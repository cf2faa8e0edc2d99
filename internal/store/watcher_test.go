package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/namecrawler/internal/model"
	"github.com/ppiankov/namecrawler/internal/store"
	"github.com/ppiankov/namecrawler/internal/store/storetest"
)

func TestWatcher_ReloadKeepsPreviousOnFailure(t *testing.T) {
	old := storetest.Snapshot(t)
	holder := store.NewHolder(old)

	w := store.NewWatcher("names.sqlite", holder).WithLoader(func(context.Context, string) (*store.Snapshot, error) {
		return nil, &model.DataIntegrityError{Source: "names.sqlite", Err: errors.New("truncated")}
	})

	err := w.Reload(context.Background())
	assert.ErrorIs(t, err, model.ErrDataIntegrity)
	assert.Same(t, old, holder.Current())

	reloads, failed := w.Stats()
	assert.Equal(t, 0, reloads)
	assert.Equal(t, 1, failed)
}

func TestWatcher_ReloadSwaps(t *testing.T) {
	holder := store.NewHolder(storetest.Snapshot(t))

	next, err := store.NewSnapshot(nil, []model.SurnameRecord{{Name: "Okafor", Rank: 1}})
	require.NoError(t, err)

	w := store.NewWatcher("names.sqlite", holder).WithLoader(func(context.Context, string) (*store.Snapshot, error) {
		return next, nil
	})

	require.NoError(t, w.Reload(context.Background()))
	assert.Same(t, next, holder.Current())
}

func TestWatcher_RunPicksUpReplacedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.sqlite")
	storetest.WriteSQLite(t, path, storetest.FirstNames()[:10], storetest.Surnames()[:1])

	initial, err := store.Load(context.Background(), path)
	require.NoError(t, err)
	holder := store.NewHolder(initial)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := store.NewWatcher(path, holder).WithDebounce(50 * time.Millisecond)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher time to register before replacing the file
	time.Sleep(100 * time.Millisecond)

	staged := filepath.Join(dir, "staged.sqlite")
	storetest.WriteSQLite(t, staged, storetest.FirstNames(), storetest.Surnames())
	require.NoError(t, os.Rename(staged, path))

	assert.Eventually(t, func() bool {
		_, ok := holder.Current().LookupSurname("Garcia")
		return ok
	}, 5*time.Second, 25*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcher_SlowOlderLoadDoesNotWin(t *testing.T) {
	older, err := store.NewSnapshot(nil, []model.SurnameRecord{{Name: "Older", Rank: 1}})
	require.NoError(t, err)
	newer, err := store.NewSnapshot(nil, []model.SurnameRecord{{Name: "Newer", Rank: 1}})
	require.NoError(t, err)

	holder := store.NewHolder(storetest.Snapshot(t))

	var calls atomic.Int32
	w := store.NewWatcher("names.sqlite", holder).
		WithDebounce(10 * time.Millisecond).
		WithLoader(func(context.Context, string) (*store.Snapshot, error) {
			if calls.Add(1) == 1 {
				time.Sleep(300 * time.Millisecond)
				return older, nil
			}
			return newer, nil
		})

	ctx := context.Background()
	w.Schedule(ctx)
	time.Sleep(50 * time.Millisecond)
	w.Schedule(ctx)

	assert.Eventually(t, func() bool {
		return calls.Load() == 2 && holder.Current() == newer
	}, 2*time.Second, 10*time.Millisecond)

	// the slow first load has finished by now and must not replace the newer data
	time.Sleep(400 * time.Millisecond)
	assert.Same(t, newer, holder.Current())

	_, ok := holder.Current().LookupSurname("Newer")
	assert.True(t, ok)
}
