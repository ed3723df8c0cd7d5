package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpres-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
	"github.com/custodia-labs/dpres-cli/internal/formats"
)

const testVersion = "1.0.0-test"

// fakeIdentifier reports formats by file extension.
type fakeIdentifier struct {
	byExt       map[string]driven.FormatIdentification
	probeErr    error
	identifyErr error
	probes      int
	identified  []string
}

var _ driven.FormatIdentifier = (*fakeIdentifier)(nil)

func newFakeIdentifier() *fakeIdentifier {
	return &fakeIdentifier{
		byExt: map[string]driven.FormatIdentification{
			".wav": {Matched: true, FormatCode: "fmt/141", FormatName: "Broadcast WAVE", MatchType: "signature"},
			".pdf": {Matched: true, FormatCode: "fmt/276", FormatName: "Acrobat PDF 1.7", MatchType: "signature"},
		},
	}
}

func (f *fakeIdentifier) Identify(_ context.Context, path string) (*driven.FormatIdentification, error) {
	f.identified = append(f.identified, path)
	if f.identifyErr != nil {
		return nil, f.identifyErr
	}
	if id, ok := f.byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return &id, nil
	}
	return &driven.FormatIdentification{MatchType: "fail"}, nil
}

func (f *fakeIdentifier) Probe(context.Context) error {
	f.probes++
	return f.probeErr
}

func (f *fakeIdentifier) Agent() domain.Agent {
	return domain.Agent{IdentifierType: domain.IdentifierTypeUUID, Identifier: "fido-agent",
		Name: "fido", Type: domain.AgentTypeSoftware}
}

// fakeExtractor returns canned WAVE records.
type fakeExtractor struct {
	tech    driven.MetadataRecord
	core    driven.MetadataRecord
	techErr error
	calls   int
}

var _ driven.MetadataExtractor = (*fakeExtractor)(nil)

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		tech: driven.MetadataRecord{
			"Information":  "MD5, verified",
			"MD5Stored":    "0123456789abcdef0123456789abcdef",
			"MD5Generated": "0123456789abcdef0123456789abcdef",
			"Duration":     "00:00:01.000",
			"Channels":     "2",
			"SampleRate":   "48000",
			"BitPerSample": "24",
		},
		core: driven.MetadataRecord{
			"OriginationDate": "2019-04-01",
			"OriginationTime": "10:11:12",
			"Description":     "Interview",
		},
	}
}

func (f *fakeExtractor) Technical(context.Context, string) (driven.MetadataRecord, error) {
	f.calls++
	if f.techErr != nil {
		return nil, f.techErr
	}
	return f.tech, nil
}

func (f *fakeExtractor) Core(context.Context, string) (driven.MetadataRecord, error) {
	return f.core, nil
}

func (f *fakeExtractor) Agent() domain.Agent {
	return domain.Agent{IdentifierType: domain.IdentifierTypeUUID, Identifier: "bwf-agent",
		Name: "bwfmetaedit", Type: domain.AgentTypeSoftware}
}

// fixture bundles a memory store with the services under test.
type fixture struct {
	store       *memory.ObjectStore
	identifier  *fakeIdentifier
	extractor   *fakeExtractor
	coordinator *IngestCoordinator
	verifier    *FixityVerifier
	runner      *FixityRunner
	clock       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:      memory.NewObjectStore(),
		identifier: newFakeIdentifier(),
		extractor:  newFakeExtractor(),
		clock:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	registry := formats.NewRegistry()
	formats.RegisterDefaults(registry, formats.Extractors{WAVE: f.extractor})

	now := func() time.Time { return f.clock }
	f.coordinator = NewIngestCoordinator(f.store, f.identifier, registry, "NTFS", testVersion)
	f.coordinator.now = now
	f.verifier = NewFixityVerifier(registry, testVersion)
	f.verifier.now = now
	f.runner = NewFixityRunner(f.store, NewFixityScheduler(f.store), f.verifier)
	f.runner.now = now
	return f
}

// advance moves the fixture clock forward.
func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

// writeFile creates a file below dir and returns its resolved path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}

func sha256Hex(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func eventTypes(events []domain.Event) []domain.EventType {
	types := make([]domain.EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}
