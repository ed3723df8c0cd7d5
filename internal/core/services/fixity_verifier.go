package services

import (
	"context"
	"time"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
	"github.com/custodia-labs/dpres-cli/internal/logger"
)

// FixityVerifier recomputes an object's fingerprint and records the outcome.
type FixityVerifier struct {
	registry driven.FormatRegistry
	agent    domain.Agent

	now func() time.Time
}

// NewFixityVerifier creates a verifier. The registry is optional; without
// it digest mismatches are never re-examined at the bitstream level.
func NewFixityVerifier(registry driven.FormatRegistry, appVersion string) *FixityVerifier {
	return &FixityVerifier{
		registry: registry,
		agent:    AppAgent(appVersion),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Verify checks obj and appends exactly one fixity-check event for it to tx.
//
// A missing or unreadable file is Missing; for an unreadable one the read
// error becomes the event detail. A matching digest is OK. A different digest is
// Failed; the fixity augmenter registered for the object's format code then
// records its own checks on the related bitstreams, which never change the
// object's outcome. Only store failures are returned as errors.
func (v *FixityVerifier) Verify(
	ctx context.Context,
	tx driven.ObjectTx,
	obj *domain.PreservationObject,
) (domain.Outcome, error) {
	path := obj.ContentLocation
	logger.Debug("start fixity check of %s", path)

	var outcome domain.Outcome
	var detail string
	mismatch := false

	digest, _, err := FileDigest(path, obj.DigestAlgorithm)
	switch {
	case err != nil && isMissing(err):
		logger.Warn("%s is missing", path)
		outcome = domain.OutcomeMissing
	case err != nil:
		logger.Error("%s could not be read: %v", path, err)
		outcome = domain.OutcomeMissing
		detail = err.Error()
	case digest == obj.Digest:
		logger.Debug("%s fixity verified", path)
		outcome = domain.OutcomeOK
	default:
		logger.Warn("%s fixity check failed", path)
		outcome = domain.OutcomeFailed
		mismatch = true
	}

	agentID, err := tx.EnsureAgent(ctx, &v.agent)
	if err != nil {
		return "", storeErr("ensure agent", err)
	}
	event := NewEvent(obj.ObjectID, domain.EventFixityCheck, v.now(), detail, outcome.String(), &agentID)
	if err := tx.AppendEvent(ctx, event); err != nil {
		return "", storeErr("append event", err)
	}

	// A container's wrapper metadata may have been edited without touching
	// the essence; let the format's own check decide for the bitstreams.
	if mismatch && obj.FormatCode != "" && v.registry != nil {
		if augmenter, ok := v.registry.FixityAugmenter(obj.FormatCode); ok {
			if err := augmenter.VerifyBitstreams(ctx, tx, obj); err != nil {
				return "", storeErr("bitstream fixity", err)
			}
		}
	}

	return outcome, nil
}
