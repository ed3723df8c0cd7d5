package services

import (
	"context"
	"time"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driving"
	"github.com/custodia-labs/dpres-cli/internal/logger"
)

// Ensure FixityRunner implements the interface.
var _ driving.FixityService = (*FixityRunner)(nil)

// FixityRunner drives a fixity run: it takes due objects from the
// scheduler and verifies each in its own transaction.
type FixityRunner struct {
	store     driven.ObjectStore
	scheduler *FixityScheduler
	verifier  *FixityVerifier

	now func() time.Time
}

// NewFixityRunner creates a new fixity runner.
func NewFixityRunner(store driven.ObjectStore, scheduler *FixityScheduler, verifier *FixityVerifier) *FixityRunner {
	return &FixityRunner{
		store:     store,
		scheduler: scheduler,
		verifier:  verifier,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run checks all due objects, stalest first. Failed and Missing outcomes
// are recorded and the run continues; any other error rolls back the
// object in flight and ends the run, keeping earlier objects' results.
func (r *FixityRunner) Run(ctx context.Context, req driving.FixityRequest) (*domain.FixityReport, error) {
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = r.now()
	}

	report := &domain.FixityReport{
		StartedAt: r.now(),
		Cutoff:    asOf.Add(-req.Interval).UTC(),
	}
	logger.Info("starting fixity run, cutoff %s", report.Cutoff.Format(time.RFC3339))

	for due, err := range r.scheduler.SelectDue(ctx, req.Interval, asOf) {
		if err != nil {
			report.EndedAt = r.now()
			return report, err
		}
		if err := ctx.Err(); err != nil {
			report.EndedAt = r.now()
			return report, err
		}

		obj := due.Object
		outcome, err := r.checkOne(ctx, &obj)
		if err != nil {
			logger.Error("got error in fixity check of %s: %v", obj.ContentLocation, err)
			report.EndedAt = r.now()
			return report, err
		}

		res := domain.FixityResult{
			ObjectID:        obj.ObjectID,
			ContentLocation: obj.ContentLocation,
			Outcome:         outcome,
		}
		report.Results = append(report.Results, res)
		if req.Progress != nil {
			req.Progress(res)
		}
	}

	report.EndedAt = r.now()
	logger.Info("completed fixity run: %d OK, %d failed, %d missing",
		report.Count(domain.OutcomeOK), report.Count(domain.OutcomeFailed), report.Count(domain.OutcomeMissing))
	return report, nil
}

func (r *FixityRunner) checkOne(ctx context.Context, obj *domain.PreservationObject) (domain.Outcome, error) {
	tx, err := r.store.Begin(ctx)
	if err != nil {
		return "", storeErr("begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	outcome, err := r.verifier.Verify(ctx, tx, obj)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", storeErr("commit", err)
	}
	return outcome, nil
}
