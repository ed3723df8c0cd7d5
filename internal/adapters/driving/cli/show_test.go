package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

func waveRecord(location string) *domain.ObjectRecord {
	size := int64(1024)
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return &domain.ObjectRecord{
		Object: domain.PreservationObject{
			ObjectID:            7,
			IdentifierType:      domain.IdentifierTypeUUID,
			Identifier:          "0b1c",
			Category:            domain.CategoryFile,
			DigestAlgorithm:     domain.DigestSHA256,
			Digest:              "abc123",
			SizeBytes:           &size,
			FormatName:          "Broadcast WAVE",
			FormatRegistryName:  domain.FormatRegistryPRONOM,
			FormatCode:          "fmt/141",
			OriginalName:        "tape.wav",
			ContentLocationType: "NTFS",
			ContentLocation:     location,
			Relationship: &domain.Relationship{
				Type: domain.RelationshipStructural, SubType: domain.SubTypeHasPart, RelatedObjectID: 8,
			},
		},
		Events: []domain.Event{
			{Type: domain.EventIngestion, Timestamp: at},
			{Type: domain.EventFixityCheck, Timestamp: at.Add(time.Hour), Outcome: "OK"},
		},
		Properties: []domain.SignificantProperty{{Type: domain.PropertyChannels, Value: "2"}},
		Related: []domain.PreservationObject{
			{ObjectID: 8, Category: domain.CategoryBitstream, DigestAlgorithm: domain.DigestMD5, Digest: "ffee"},
		},
	}
}

func TestShowCmd_ByID(t *testing.T) {
	ts := injectServices(t)
	ts.object.record = waveRecord("/archive/tape.wav")

	out, err := execute(t, "", "show", "7")

	require.NoError(t, err)
	assert.Equal(t, int64(7), ts.object.gotID)
	assert.Contains(t, out, "Object 7")
	assert.Contains(t, out, "/archive/tape.wav (NTFS)")
	assert.Contains(t, out, "1024 bytes")
	assert.Contains(t, out, "Broadcast WAVE (PRONOM fmt/141)")
	assert.Contains(t, out, "structural/has Part object 8")
	assert.Contains(t, out, "2024-03-01 10:30:00Z")
	assert.Contains(t, out, "Channels: 2")
	assert.Contains(t, out, "MD5 ffee")
}

func TestShowCmd_ByPath(t *testing.T) {
	ts := injectServices(t)
	dir := t.TempDir()
	path := writeTemp(t, dir, "tape.wav")
	ts.object.record = waveRecord(path)

	_, err := execute(t, "", "show", filepath.Join(dir, ".", "tape.wav"))

	require.NoError(t, err)
	assert.Equal(t, path, ts.object.gotLocator)
}

func TestShowCmd_NotFound(t *testing.T) {
	injectServices(t)

	_, err := execute(t, "", "show", "99")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShowCmd_RequiresArgument(t *testing.T) {
	injectServices(t)

	_, err := execute(t, "", "show")

	assert.Error(t, err)
}
