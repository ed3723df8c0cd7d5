package wave

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpres-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
)

const essenceMD5 = "d41d8cd98f00b204e9800998ecf8427e"

type stubExtractor struct {
	tech    driven.MetadataRecord
	core    driven.MetadataRecord
	techErr error
}

func (s *stubExtractor) Technical(context.Context, string) (driven.MetadataRecord, error) {
	return s.tech, s.techErr
}

func (s *stubExtractor) Core(context.Context, string) (driven.MetadataRecord, error) {
	return s.core, nil
}

func (s *stubExtractor) Agent() domain.Agent {
	return domain.Agent{Name: "bwfmetaedit", Version: "24.01", Type: domain.AgentTypeSoftware}
}

func verifiedExtractor() *stubExtractor {
	return &stubExtractor{
		tech: driven.MetadataRecord{
			"Information":  "MD5, verified",
			"MD5Stored":    essenceMD5,
			"MD5Generated": essenceMD5,
			"Channels":     "1",
			"SampleRate":   "44100",
		},
		core: driven.MetadataRecord{
			"OriginationDate": "2001-02-03",
			"OriginationTime": "04:05:06",
			"INAM":            "Field recording",
		},
	}
}

// decompose runs Decompose for a fresh parent and commits the result.
func decompose(t *testing.T, store *memory.ObjectStore, h *Handler) (*domain.PreservationObject, error) {
	t.Helper()
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback() //nolint:errcheck

	parent := &domain.PreservationObject{
		IdentifierType:      domain.IdentifierTypeUUID,
		Identifier:          "parent",
		Category:            domain.CategoryFile,
		DigestAlgorithm:     domain.DigestSHA256,
		FormatCode:          "fmt/141",
		OriginalName:        "tape.wav",
		ContentLocationType: "NTFS",
		ContentLocation:     "/archive/tape.wav",
	}
	require.NoError(t, tx.CreateObject(ctx, parent))

	if err := h.Decompose(ctx, tx, parent); err != nil {
		return parent, err
	}
	require.NoError(t, tx.UpdateObject(ctx, parent))
	require.NoError(t, tx.Commit())
	return parent, nil
}

func bitstreamOf(t *testing.T, store *memory.ObjectStore, parentID int64) domain.PreservationObject {
	t.Helper()
	related, err := store.ListRelated(context.Background(), parentID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	return related[0]
}

func properties(t *testing.T, store *memory.ObjectStore, objectID int64) map[string]string {
	t.Helper()
	props, err := store.ListProperties(context.Background(), objectID)
	require.NoError(t, err)
	out := make(map[string]string, len(props))
	for _, p := range props {
		out[p.Type] = p.Value
	}
	return out
}

func TestHandler_FormatCodes(t *testing.T) {
	h := New(verifiedExtractor())

	codes := h.FormatCodes()
	assert.Contains(t, codes, "fmt/141")
	assert.Len(t, codes, 17)

	codes[0] = "changed"
	assert.NotEqual(t, "changed", h.FormatCodes()[0])
}

func TestHandler_Decompose(t *testing.T) {
	store := memory.NewObjectStore()
	parent, err := decompose(t, store, New(verifiedExtractor()))
	require.NoError(t, err)

	child := bitstreamOf(t, store, parent.ObjectID)
	assert.Equal(t, domain.CategoryBitstream, child.Category)
	assert.Equal(t, domain.DigestMD5, child.DigestAlgorithm)
	assert.Equal(t, essenceMD5, child.Digest)
	assert.Equal(t, "PCM audio", child.FormatName)
	assert.Empty(t, child.ContentLocation)
	assert.Equal(t, "NTFS", child.ContentLocationType)
	require.NotNil(t, child.Relationship)
	assert.Equal(t, domain.SubTypeIsPartOf, child.Relationship.SubType)
	assert.Equal(t, parent.ObjectID, child.Relationship.RelatedObjectID)

	require.NotNil(t, parent.Relationship)
	assert.Equal(t, domain.SubTypeHasPart, parent.Relationship.SubType)
	assert.Equal(t, child.ObjectID, parent.Relationship.RelatedObjectID)

	events, err := store.ListEvents(context.Background(), child.ObjectID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventIngestion, events[0].Type)
	assert.Equal(t, domain.EventDigestCalculation, events[1].Type)
	assert.Equal(t, "program=bwfmetaedit", events[1].Detail)
	assert.NotNil(t, events[1].AgentID)

	assert.Equal(t, map[string]string{
		domain.PropertyHasEmbeddedDigest: "True",
		domain.PropertyChannels:          "1",
		domain.PropertySampleRate:        "44100",
		domain.PropertyOrigination:       "2001-02-03T04:05:06",
		domain.PropertyTitle:             "Field recording",
	}, properties(t, store, parent.ObjectID))
	assert.Empty(t, properties(t, store, child.ObjectID))
}

func TestHandler_Decompose_NoEmbeddedDigest(t *testing.T) {
	ex := verifiedExtractor()
	ex.tech["Information"] = "MD5, no existing MD5 chunk"
	ex.tech["MD5Stored"] = ""
	ex.tech["MD5Generated"] = "ffffffffffffffffffffffffffffffff"
	store := memory.NewObjectStore()

	parent, err := decompose(t, store, New(ex))
	require.NoError(t, err)

	assert.Equal(t, "ffffffffffffffffffffffffffffffff", bitstreamOf(t, store, parent.ObjectID).Digest)
	assert.Equal(t, "False", properties(t, store, parent.ObjectID)[domain.PropertyHasEmbeddedDigest])
}

func TestHandler_Decompose_PartialOrigination(t *testing.T) {
	ex := verifiedExtractor()
	ex.core["OriginationTime"] = ""
	store := memory.NewObjectStore()

	parent, err := decompose(t, store, New(ex))
	require.NoError(t, err)

	assert.NotContains(t, properties(t, store, parent.ObjectID), domain.PropertyOrigination)
}

func TestHandler_Decompose_StructuralErrors(t *testing.T) {
	ex := verifiedExtractor()
	ex.tech["Errors"] = "RIFF size is wrong"
	store := memory.NewObjectStore()

	parent, err := decompose(t, store, New(ex))
	require.NoError(t, err)

	related, err := store.ListRelated(context.Background(), parent.ObjectID)
	require.NoError(t, err)
	assert.Empty(t, related)
	assert.Nil(t, parent.Relationship)
}

func TestHandler_Decompose_NoDigest(t *testing.T) {
	ex := verifiedExtractor()
	ex.tech["MD5Stored"] = ""
	ex.tech["MD5Generated"] = ""

	_, err := decompose(t, memory.NewObjectStore(), New(ex))
	assert.ErrorIs(t, err, domain.ErrOracle)
}

func TestHandler_Decompose_ExtractorError(t *testing.T) {
	ex := verifiedExtractor()
	ex.techErr = errors.New("bwfmetaedit: exit status 1")

	_, err := decompose(t, memory.NewObjectStore(), New(ex))
	assert.EqualError(t, err, "bwfmetaedit: exit status 1")
}

func TestHandler_Decompose_StoreError(t *testing.T) {
	store := memory.NewObjectStore()
	store.FailOn = "AddProperty"
	store.FailErr = errors.New("disk full")

	_, err := decompose(t, store, New(verifiedExtractor()))
	assert.ErrorIs(t, err, domain.ErrStore)
}

// verify runs VerifyBitstreams with ex and returns the bitstream's events.
func verify(t *testing.T, store *memory.ObjectStore, parent *domain.PreservationObject, ex *stubExtractor) []domain.Event {
	t.Helper()
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, New(ex).VerifyBitstreams(ctx, tx, parent))
	require.NoError(t, tx.Commit())

	events, err := store.ListEvents(ctx, bitstreamOf(t, store, parent.ObjectID).ObjectID)
	require.NoError(t, err)
	return events
}

func TestHandler_VerifyBitstreams(t *testing.T) {
	tests := []struct {
		name        string
		information string
		generated   string
		wantOutcome string
	}{
		{name: "verified", information: "MD5, verified", generated: essenceMD5, wantOutcome: "OK"},
		{name: "failed", information: "MD5, failed verification", generated: "00", wantOutcome: "Failed"},
		{name: "no chunk matching", information: "MD5, no existing MD5 chunk", generated: essenceMD5, wantOutcome: "OK"},
		{name: "no chunk differing", information: "MD5, no existing MD5 chunk", generated: "00", wantOutcome: "Failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewObjectStore()
			parent, err := decompose(t, store, New(verifiedExtractor()))
			require.NoError(t, err)

			ex := verifiedExtractor()
			ex.tech["Information"] = tt.information
			ex.tech["MD5Generated"] = tt.generated

			events := verify(t, store, parent, ex)
			require.Len(t, events, 3)
			last := events[2]
			assert.Equal(t, domain.EventFixityCheck, last.Type)
			assert.Equal(t, tt.wantOutcome, last.Outcome)

			// The parent gets nothing.
			parentEvents, err := store.ListEvents(context.Background(), parent.ObjectID)
			require.NoError(t, err)
			assert.Empty(t, parentEvents)
		})
	}
}

func TestHandler_VerifyBitstreams_SkipsOnOracleProblems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*stubExtractor)
	}{
		{name: "extractor error", mutate: func(ex *stubExtractor) { ex.techErr = errors.New("crashed") }},
		{name: "structural errors", mutate: func(ex *stubExtractor) { ex.tech["Errors"] = "truncated" }},
		{name: "unknown information", mutate: func(ex *stubExtractor) { ex.tech["Information"] = "MD5, something new" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewObjectStore()
			parent, err := decompose(t, store, New(verifiedExtractor()))
			require.NoError(t, err)

			ex := verifiedExtractor()
			tt.mutate(ex)

			assert.Len(t, verify(t, store, parent, ex), 2)
		})
	}
}
