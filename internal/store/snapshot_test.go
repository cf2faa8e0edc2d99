package store_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/namecrawler/internal/model"
	"github.com/ppiankov/namecrawler/internal/store"
	"github.com/ppiankov/namecrawler/internal/store/storetest"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "JOHN", store.Key(" john "))
	// decomposed e + combining acute composes to the same key as é
	assert.Equal(t, store.Key("Ren\u00e9"), store.Key("rene\u0301"))
}

func TestSnapshot_LookupCaseInsensitive(t *testing.T) {
	snap := storetest.Snapshot(t)

	rows := snap.LookupFirstName("jOhN")
	require.Len(t, rows, storetest.LastYear-storetest.FirstYear+1)
	assert.Equal(t, storetest.FirstYear, rows[0].Year)

	assert.Empty(t, snap.LookupFirstName("Zebulonia"))

	r, ok := snap.LookupSurname("smith")
	require.True(t, ok)
	assert.Equal(t, 1, r.Rank)

	_, ok = snap.LookupSurname("Report")
	assert.False(t, ok)
}

func TestSnapshot_LookupReturnsCopy(t *testing.T) {
	snap := storetest.Snapshot(t)

	rows := snap.LookupFirstName("Mary")
	rows[0].Count = -1

	assert.NotEqual(t, int64(-1), snap.LookupFirstName("Mary")[0].Count)
}

func TestSnapshot_Weights(t *testing.T) {
	snap := storetest.Snapshot(t)

	w, ok := snap.FirstNameWeight("James")
	require.True(t, ok)
	assert.InDelta(t, 1.0, w, 1e-12)

	w, ok = snap.FirstNameWeight("John")
	require.True(t, ok)
	assert.InDelta(t, 0.875, w, 1e-12)

	_, ok = snap.FirstNameWeight("Smith")
	assert.False(t, ok)

	w, ok = snap.SurnameWeight("Smith")
	require.True(t, ok)
	assert.InDelta(t, 1.0, w, 1e-12)

	w, ok = snap.SurnameWeight("Zuniga")
	require.True(t, ok)
	assert.Greater(t, w, 0.0)
	assert.InDelta(t, 1.0/storetest.MaxRank, w, 1e-12)
}

func TestSnapshot_WeightsWithinUnitInterval(t *testing.T) {
	snap := storetest.Snapshot(t)

	for _, r := range storetest.FirstNames() {
		w, ok := snap.FirstNameWeight(r.Name)
		require.True(t, ok, r.Name)
		assert.True(t, w > 0 && w <= 1, "%s weight %f", r.Name, w)
	}
	for _, r := range storetest.Surnames() {
		w, ok := snap.SurnameWeight(r.Name)
		require.True(t, ok, r.Name)
		assert.True(t, w > 0 && w <= 1, "%s weight %f", r.Name, w)
	}
}

func TestSnapshot_AggregateFirstName(t *testing.T) {
	snap := storetest.Snapshot(t)

	agg, ok := snap.AggregateFirstName("Mildred")
	require.True(t, ok)
	assert.Equal(t, storetest.FirstYear, agg.PeakYear)
	assert.Equal(t, int64(20000), agg.PeakCount)
	assert.Equal(t, storetest.FirstYear, agg.FirstYear)
	assert.Equal(t, storetest.LastYear, agg.LastYear)

	var decades int64
	for _, c := range agg.Decades {
		decades += c
	}
	assert.Equal(t, agg.Total, decades)
	assert.Equal(t, snap.FirstNameTotal("Mildred"), agg.Total)

	_, ok = snap.AggregateFirstName("Nobody")
	assert.False(t, ok)
}

func TestSnapshot_AggregateSumsBothSexes(t *testing.T) {
	snap := storetest.Snapshot(t)

	agg, ok := snap.AggregateFirstName("Taylor")
	require.True(t, ok)
	assert.Equal(t, int64(5500), agg.PeakCount)
	// constant counts: the earliest year wins the tie
	assert.Equal(t, 1980, agg.PeakYear)
	assert.Equal(t, agg.BySex[model.SexFemale]+agg.BySex[model.SexMale], agg.Total)
}

func TestSnapshot_Stats(t *testing.T) {
	snap := storetest.Snapshot(t)
	stats := snap.Stats()

	assert.Equal(t, "storetest", stats.Source)
	assert.Equal(t, "James", stats.MaxTotalName)
	assert.Equal(t, storetest.MaxRank, stats.MaxRank)
	assert.Equal(t, len(storetest.Surnames()), stats.Surnames)
	assert.Equal(t, len(storetest.FirstNames()), stats.FirstRows)
	assert.Equal(t, storetest.FirstYear, stats.FirstYear)
	assert.Equal(t, storetest.LastYear, stats.LastYear)
}

func TestNewSnapshot_RejectsInvalidRows(t *testing.T) {
	first := []model.NameRecord{{Name: "John", Sex: "Q", Year: 1950, Count: 1}}

	_, err := store.NewSnapshot(first, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrDataIntegrity))

	var die *model.DataIntegrityError
	require.True(t, errors.As(err, &die))
	assert.Equal(t, "first", die.Table)
}

func TestNewSnapshot_RejectsDuplicates(t *testing.T) {
	first := []model.NameRecord{
		{Name: "John", Sex: model.SexMale, Year: 1950, Count: 1},
		{Name: "JOHN", Sex: model.SexMale, Year: 1950, Count: 2},
	}
	_, err := store.NewSnapshot(first, nil)
	assert.ErrorIs(t, err, model.ErrDataIntegrity)

	surnames := []model.SurnameRecord{
		{Name: "Smith", Rank: 1},
		{Name: "SMITH", Rank: 2},
	}
	_, err = store.NewSnapshot(nil, surnames)
	assert.ErrorIs(t, err, model.ErrDataIntegrity)
}

func TestNewSnapshot_Empty(t *testing.T) {
	snap, err := store.NewSnapshot(nil, nil)
	require.NoError(t, err)

	_, ok := snap.FirstNameWeight("John")
	assert.False(t, ok)
	_, ok = snap.SurnameWeight("Smith")
	assert.False(t, ok)
}

func TestHolder_Swap(t *testing.T) {
	old := storetest.Snapshot(t)
	holder := store.NewHolder(old)

	// a query that already took the old snapshot keeps seeing it
	inFlight := holder.Current()

	next, err := store.NewSnapshot(nil, []model.SurnameRecord{{Name: "Okafor", Rank: 1}})
	require.NoError(t, err)

	prev := holder.Swap(next)
	assert.Same(t, old, prev)
	assert.Same(t, next, holder.Current())

	_, ok := inFlight.LookupSurname("Smith")
	assert.True(t, ok)
	_, ok = holder.Current().LookupSurname("Smith")
	assert.False(t, ok)
}
