// Package wave handles Broadcast WAVE files.
//
// At ingest the PCM essence inside the RIFF container is registered as a
// bitstream object whose digest is the MD5 embedded in the file (or the
// MD5 bwfmetaedit computes when none is embedded). During fixity, when the
// container's own digest has changed, the embedded MD5 is re-verified so
// that edited BEXT/INFO metadata is told apart from damaged audio.
package wave

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
	"github.com/custodia-labs/dpres-cli/internal/logger"
)

// formatCodes are the PRONOM PUIDs of the WAVE family.
var formatCodes = []string{
	"fmt/1", "fmt/2", "fmt/6", "fmt/141", "fmt/143", "fmt/527",
	"fmt/703", "fmt/704", "fmt/705", "fmt/706", "fmt/707", "fmt/708",
	"fmt/709", "fmt/710", "fmt/711", "fmt/712", "fmt/713",
}

// Technical and core record fields.
const (
	fieldErrors        = "Errors"
	fieldInformation   = "Information"
	fieldMD5Stored     = "MD5Stored"
	fieldMD5Generated  = "MD5Generated"
	fieldOriginDate    = "OriginationDate"
	fieldOriginTime    = "OriginationTime"
	fieldDescription   = "Description"
	fieldCreationDate  = "ICRD"
	fieldTitle         = "INAM"
	infoVerified       = "MD5, verified"
	infoFailed         = "MD5, failed verification"
	infoNoEmbeddedMD5  = "MD5, no existing MD5 chunk"
	bitstreamFormat    = "PCM audio"
	propertyValueTrue  = "True"
	propertyValueFalse = "False"
)

// essenceProperties are copied from the technical record when non-empty.
var essenceProperties = []string{
	domain.PropertyDuration,
	domain.PropertyChannels,
	domain.PropertySampleRate,
	domain.PropertyBitPerSample,
}

// Ensure Handler implements both format hooks.
var (
	_ driven.BitstreamDecomposer = (*Handler)(nil)
	_ driven.FixityAugmenter     = (*Handler)(nil)
)

// Handler decomposes WAVE files and re-verifies their essence.
type Handler struct {
	extractor driven.MetadataExtractor
	now       func() time.Time
}

// New creates a WAVE handler backed by extractor.
func New(extractor driven.MetadataExtractor) *Handler {
	return &Handler{
		extractor: extractor,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// FormatCodes returns the WAVE family PUIDs.
func (h *Handler) FormatCodes() []string {
	return slices.Clone(formatCodes)
}

// Decompose registers the PCM essence of parent as a bitstream object.
func (h *Handler) Decompose(ctx context.Context, tx driven.ObjectTx, parent *domain.PreservationObject) error {
	path := parent.ContentLocation
	logger.Info("beginning bitstream ingest of %s", parent.OriginalName)

	tech, err := h.extractor.Technical(ctx, path)
	if err != nil {
		return err
	}

	if errs := tech.Get(fieldErrors); errs != "" {
		logger.Error("bitstream ingest for %s failed: %s", path, errs)
		return nil
	}

	info := tech.Get(fieldInformation)
	embedded := info != infoNoEmbeddedMD5
	if !embedded {
		logger.Warn("%s has no stored MD5", path)
	}
	if info == infoFailed {
		logger.Warn("%s MD5 verification failed", path)
	}

	digest := tech.Get(fieldMD5Generated)
	if embedded && tech.Get(fieldMD5Stored) != "" {
		digest = tech.Get(fieldMD5Stored)
	}
	if digest == "" {
		return fmt.Errorf("%w: no essence MD5 reported for %s", domain.ErrOracle, path)
	}

	agent := h.extractor.Agent()
	agentID, err := tx.EnsureAgent(ctx, &agent)
	if err != nil {
		return fmt.Errorf("%w: ensure agent: %w", domain.ErrStore, err)
	}

	child := &domain.PreservationObject{
		IdentifierType:      domain.IdentifierTypeUUID,
		Identifier:          uuid.NewString(),
		Category:            domain.CategoryBitstream,
		DigestAlgorithm:     domain.DigestMD5,
		Digest:              digest,
		FormatName:          bitstreamFormat,
		ContentLocationType: parent.ContentLocationType,
		SessionID:           parent.SessionID,
		Relationship: &domain.Relationship{
			Type:            domain.RelationshipStructural,
			SubType:         domain.SubTypeIsPartOf,
			RelatedObjectID: parent.ObjectID,
		},
	}
	if err := tx.CreateObject(ctx, child); err != nil {
		return fmt.Errorf("%w: create bitstream: %w", domain.ErrStore, err)
	}

	for _, ev := range []*domain.Event{
		h.event(child.ObjectID, domain.EventIngestion, "", nil),
		h.event(child.ObjectID, domain.EventDigestCalculation, "program="+agent.Name, &agentID),
	} {
		if err := tx.AppendEvent(ctx, ev); err != nil {
			return fmt.Errorf("%w: append event: %w", domain.ErrStore, err)
		}
	}

	parent.Relationship = &domain.Relationship{
		Type:            domain.RelationshipStructural,
		SubType:         domain.SubTypeHasPart,
		RelatedObjectID: child.ObjectID,
	}

	core, err := h.extractor.Core(ctx, path)
	if err != nil {
		return err
	}

	props := []domain.SignificantProperty{{
		Type:  domain.PropertyHasEmbeddedDigest,
		Value: boolProperty(embedded),
	}}
	for _, name := range essenceProperties {
		props = appendIfSet(props, name, tech.Get(name))
	}
	if date, clock := core.Get(fieldOriginDate), core.Get(fieldOriginTime); date != "" && clock != "" {
		props = appendIfSet(props, domain.PropertyOrigination, date+"T"+clock)
	}
	props = appendIfSet(props, domain.PropertyDescription, core.Get(fieldDescription))
	props = appendIfSet(props, domain.PropertyCreationDate, core.Get(fieldCreationDate))
	props = appendIfSet(props, domain.PropertyTitle, core.Get(fieldTitle))

	for i := range props {
		props[i].ObjectID = parent.ObjectID
		if err := tx.AddProperty(ctx, &props[i]); err != nil {
			return fmt.Errorf("%w: add property: %w", domain.ErrStore, err)
		}
	}

	return nil
}

// VerifyBitstreams re-verifies the essence of parent and records a fixity
// check on each related bitstream.
func (h *Handler) VerifyBitstreams(ctx context.Context, tx driven.ObjectTx, parent *domain.PreservationObject) error {
	path := parent.ContentLocation

	tech, err := h.extractor.Technical(ctx, path)
	if err != nil {
		logger.Error("cannot do WAVE bitstream fixity check of %s: %v", path, err)
		return nil
	}
	if errs := tech.Get(fieldErrors); errs != "" {
		logger.Error("bitstream fixity check of %s failed: %s", path, errs)
		return nil
	}

	related, err := tx.ListRelated(ctx, parent.ObjectID)
	if err != nil {
		return fmt.Errorf("%w: list related: %w", domain.ErrStore, err)
	}

	agent := h.extractor.Agent()
	agentID, err := tx.EnsureAgent(ctx, &agent)
	if err != nil {
		return fmt.Errorf("%w: ensure agent: %w", domain.ErrStore, err)
	}

	info := tech.Get(fieldInformation)
	for i := range related {
		bs := &related[i]
		if !isPartOf(bs, parent.ObjectID) {
			continue
		}

		var outcome domain.Outcome
		switch info {
		case infoVerified:
			outcome = domain.OutcomeOK
		case infoFailed:
			outcome = domain.OutcomeFailed
		case infoNoEmbeddedMD5:
			generated := tech.Get(fieldMD5Generated)
			if bs.Digest == "" && generated != "" {
				bs.Digest = generated
				if err := tx.UpdateObject(ctx, bs); err != nil {
					return fmt.Errorf("%w: update bitstream: %w", domain.ErrStore, err)
				}
			}
			outcome = domain.OutcomeFailed
			if generated != "" && bs.Digest == generated {
				outcome = domain.OutcomeOK
			}
		default:
			logger.Error("unexpected bwfmetaedit information string %q for %s", info, path)
			return nil
		}

		if outcome == domain.OutcomeOK {
			logger.Info("%s essence fixity verified", path)
		} else {
			logger.Warn("%s essence fixity check failed", path)
		}

		ev := h.event(bs.ObjectID, domain.EventFixityCheck, "program="+agent.Name, &agentID)
		ev.Outcome = outcome.String()
		if err := tx.AppendEvent(ctx, ev); err != nil {
			return fmt.Errorf("%w: append event: %w", domain.ErrStore, err)
		}
	}

	return nil
}

func (h *Handler) event(objectID int64, eventType domain.EventType, detail string, agentID *int64) *domain.Event {
	return &domain.Event{
		IdentifierType: domain.IdentifierTypeUUID,
		Identifier:     uuid.NewString(),
		Type:           eventType,
		Timestamp:      h.now(),
		Detail:         detail,
		ObjectID:       objectID,
		AgentID:        agentID,
	}
}

func isPartOf(obj *domain.PreservationObject, parentID int64) bool {
	return obj.Category == domain.CategoryBitstream &&
		obj.Relationship != nil &&
		obj.Relationship.SubType == domain.SubTypeIsPartOf &&
		obj.Relationship.RelatedObjectID == parentID
}

func appendIfSet(props []domain.SignificantProperty, name, value string) []domain.SignificantProperty {
	if value == "" {
		return props
	}
	return append(props, domain.SignificantProperty{Type: name, Value: value})
}

func boolProperty(b bool) string {
	if b {
		return propertyValueTrue
	}
	return propertyValueFalse
}
