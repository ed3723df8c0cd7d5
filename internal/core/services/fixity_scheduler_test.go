package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpres-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

// seedObjects creates one file object per age, each with an ingestion
// event ageDays before asOf.
func seedObjects(t *testing.T, store *memory.ObjectStore, asOf time.Time, agesDays []int) {
	t.Helper()
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	for i, age := range agesDays {
		obj := &domain.PreservationObject{
			IdentifierType:  domain.IdentifierTypeUUID,
			Identifier:      fmt.Sprintf("obj-%d", i),
			Category:        domain.CategoryFile,
			DigestAlgorithm: domain.DigestSHA256,
			ContentLocation: fmt.Sprintf("/data/%04d", i),
		}
		require.NoError(t, tx.CreateObject(ctx, obj))
		at := asOf.Add(-time.Duration(age) * 24 * time.Hour)
		require.NoError(t, tx.AppendEvent(ctx, NewEvent(obj.ObjectID, domain.EventIngestion, at, "", "", nil)))
	}
	require.NoError(t, tx.Commit())
}

func TestSelectDue_StalestFirst(t *testing.T) {
	store := memory.NewObjectStore()
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	seedObjects(t, store, asOf, []int{10, 40, 3, 8})

	var ages []time.Duration
	for due, err := range NewFixityScheduler(store).SelectDue(context.Background(), week, asOf) {
		require.NoError(t, err)
		ages = append(ages, asOf.Sub(due.LastChecked))
	}
	assert.Equal(t, []time.Duration{40 * 24 * time.Hour, 10 * 24 * time.Hour, 8 * 24 * time.Hour}, ages)
}

func TestSelectDue_EarlyBreak(t *testing.T) {
	store := memory.NewObjectStore()
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	seedObjects(t, store, asOf, []int{10, 20, 30})

	n := 0
	for _, err := range NewFixityScheduler(store).SelectDue(context.Background(), week, asOf) {
		require.NoError(t, err)
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestSelectDue_CheckedObjectsYieldedOnce(t *testing.T) {
	store := memory.NewObjectStore()
	ctx := context.Background()
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	seedObjects(t, store, asOf, []int{30, 29, 28, 27, 26})

	scheduler := NewFixityScheduler(store)
	scheduler.batchSize = 2

	// Each check lands after every other object but stays before the cutoff.
	checkedAt := asOf.Add(-8 * 24 * time.Hour)
	counts := make(map[int64]int)
	for due, err := range scheduler.SelectDue(ctx, week, asOf) {
		require.NoError(t, err)
		counts[due.Object.ObjectID]++
		require.LessOrEqual(t, len(counts), 5)

		checkedAt = checkedAt.Add(time.Minute)
		tx, err := store.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.AppendEvent(ctx,
			NewEvent(due.Object.ObjectID, domain.EventFixityCheck, checkedAt, "", "OK", nil)))
		require.NoError(t, tx.Commit())
	}

	assert.Len(t, counts, 5)
	for id, n := range counts {
		assert.Equal(t, 1, n, "object %d", id)
	}
}

func TestSelectDue_StoreErrorYieldedOnce(t *testing.T) {
	store := memory.NewObjectStore()
	store.FailOn = "ListDue"
	store.FailErr = errors.New("database is locked")

	var errs []error
	for _, err := range NewFixityScheduler(store).SelectDue(context.Background(), week, time.Now()) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], domain.ErrStore)
}

// Property: across page boundaries, every stale object is yielded exactly
// once, in non-decreasing order of last check, and nothing fresh is yielded.
func TestSelectDue_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("due objects are complete and ordered", prop.ForAll(
		func(ages []int, interval int, batch int) bool {
			store := memory.NewObjectStore()
			seedObjects(t, store, asOf, ages)

			scheduler := NewFixityScheduler(store)
			scheduler.batchSize = batch
			cutoff := asOf.Add(-time.Duration(interval) * 24 * time.Hour)

			want := 0
			for _, age := range ages {
				if asOf.Add(-time.Duration(age) * 24 * time.Hour).Before(cutoff) {
					want++
				}
			}

			seen := make(map[int64]bool)
			var prev time.Time
			for due, err := range scheduler.SelectDue(context.Background(), time.Duration(interval)*24*time.Hour, asOf) {
				if err != nil || seen[due.Object.ObjectID] {
					return false
				}
				if !due.LastChecked.Before(cutoff) || due.LastChecked.Before(prev) {
					return false
				}
				seen[due.Object.ObjectID] = true
				prev = due.LastChecked
			}
			return len(seen) == want
		},
		gen.SliceOf(gen.IntRange(0, 60)),
		gen.IntRange(0, 30),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
