package bwfmetaedit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

func fakeTool(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bwfmetaedit")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestTechnical(t *testing.T) {
	bin := fakeTool(t, `case "$*" in
*--out-tech*--MD5-Verify*) ;;
*) exit 1 ;;
esac
cat <<'CSV'
FileName,Errors,Information,Duration,Channels,SampleRate,BitPerSample,MD5Stored,MD5Generated
/data/a.wav,,"MD5, verified",00:01:00.000,2,48000,24,0123abcd,0123abcd
CSV
`)

	rec, err := New(bin).Technical(context.Background(), "/data/a.wav")
	require.NoError(t, err)
	assert.Equal(t, "MD5, verified", rec.Get("Information"))
	assert.Equal(t, "2", rec.Get("Channels"))
	assert.Equal(t, "0123abcd", rec.Get("MD5Stored"))
	assert.Empty(t, rec.Get("Errors"))
	assert.Empty(t, rec.Get("NoSuchField"))
}

func TestCore(t *testing.T) {
	bin := fakeTool(t, `cat <<'CSV'
FileName,Description,OriginationDate,OriginationTime,INAM,ICRD
/data/a.wav,Interview,2019-04-01,10:11:12,Tape 4,2019-04-01
CSV
`)

	rec, err := New(bin).Core(context.Background(), "/data/a.wav")
	require.NoError(t, err)
	assert.Equal(t, "Interview", rec.Get("Description"))
	assert.Equal(t, "Tape 4", rec.Get("INAM"))
}

func TestParseRecord_ShortRow(t *testing.T) {
	rec, err := parseRecord([]byte("A,B,C\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, "1", rec.Get("A"))
	assert.Empty(t, rec.Get("C"))
}

func TestParseRecord_NoRecord(t *testing.T) {
	_, err := parseRecord([]byte("A,B,C\n"))
	assert.ErrorIs(t, err, domain.ErrOracle)

	_, err = parseRecord(nil)
	assert.ErrorIs(t, err, domain.ErrOracle)
}

func TestTechnical_NotInstalled(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "bwfmetaedit")).Technical(context.Background(), "/data/a.wav")
	assert.ErrorIs(t, err, domain.ErrOracleUnavailable)
}

func TestNew_Defaults(t *testing.T) {
	ex := New("")
	assert.Equal(t, "bwfmetaedit", ex.binary)
	assert.Equal(t, "bwfmetaedit", ex.Agent().Name)
}
