package services

import (
	"context"
	"iter"
	"time"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
)

// defaultDueBatchSize is how many due objects are fetched per store query.
const defaultDueBatchSize = 100

// FixityScheduler selects file objects whose last integrity-relevant event
// is older than the staleness cutoff.
type FixityScheduler struct {
	store     driven.ObjectStore
	batchSize int
}

// NewFixityScheduler creates a scheduler reading from store.
func NewFixityScheduler(store driven.ObjectStore) *FixityScheduler {
	return &FixityScheduler{
		store:     store,
		batchSize: defaultDueBatchSize,
	}
}

// SelectDue yields every file object last checked before asOf minus
// interval, stalest first. "Last checked" is the latest of its ingestion
// and fixity-check events. Bitstream objects are never yielded.
//
// The sequence is fetched lazily in pages using the position of the last
// listed object. Checking a yielded object moves it later in the order, and
// while its new time is still before the cutoff it is listed again; each
// object is yielded at most once per iteration. Ranging over the sequence
// again re-queries the store. A store error is yielded once and ends the
// sequence.
func (s *FixityScheduler) SelectDue(
	ctx context.Context,
	interval time.Duration,
	asOf time.Time,
) iter.Seq2[domain.DueObject, error] {
	cutoff := asOf.Add(-interval).UTC()

	return func(yield func(domain.DueObject, error) bool) {
		var cursor driven.DueCursor
		yielded := make(map[int64]struct{})
		for {
			batch, err := s.store.ListDue(ctx, cutoff, cursor, s.batchSize)
			if err != nil {
				yield(domain.DueObject{}, storeErr("list due objects", err))
				return
			}

			for _, due := range batch {
				cursor = driven.DueCursor{LastChecked: due.LastChecked, ObjectID: due.Object.ObjectID}
				if _, seen := yielded[due.Object.ObjectID]; seen {
					continue
				}
				yielded[due.Object.ObjectID] = struct{}{}
				if !yield(due, nil) {
					return
				}
			}

			if len(batch) < s.batchSize {
				return
			}
		}
	}
}
