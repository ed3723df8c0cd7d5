package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/dpres-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driving"
	"github.com/custodia-labs/dpres-cli/internal/core/services"
)

// mockIngestService records the request and reports canned results.
type mockIngestService struct {
	req     driving.IngestRequest
	results []domain.FileResult
	err     error
}

func (m *mockIngestService) Ingest(
	context.Context, string, domain.IngestSession,
) (*domain.PreservationObject, error) {
	return nil, nil
}

func (m *mockIngestService) Run(_ context.Context, req driving.IngestRequest) (*domain.IngestReport, error) {
	m.req = req
	report := &domain.IngestReport{}
	for _, res := range m.results {
		report.Results = append(report.Results, res)
		if req.Progress != nil {
			req.Progress(res)
		}
	}
	return report, m.err
}

// mockFixityService records the request and reports canned results.
type mockFixityService struct {
	req     driving.FixityRequest
	results []domain.FixityResult
	err     error
}

func (m *mockFixityService) Run(_ context.Context, req driving.FixityRequest) (*domain.FixityReport, error) {
	m.req = req
	report := &domain.FixityReport{}
	for _, res := range m.results {
		report.Results = append(report.Results, res)
		if req.Progress != nil {
			req.Progress(res)
		}
	}
	return report, m.err
}

// mockObjectService serves one record by ID and by location.
type mockObjectService struct {
	record     *domain.ObjectRecord
	gotID      int64
	gotLocator string
}

func (m *mockObjectService) Get(_ context.Context, objectID int64) (*domain.ObjectRecord, error) {
	m.gotID = objectID
	if m.record == nil || m.record.Object.ObjectID != objectID {
		return nil, domain.ErrNotFound
	}
	return m.record, nil
}

func (m *mockObjectService) GetByLocation(_ context.Context, location string) (*domain.ObjectRecord, error) {
	m.gotLocator = location
	if m.record == nil || m.record.Object.ContentLocation != location {
		return nil, domain.ErrNotFound
	}
	return m.record, nil
}

type testServices struct {
	config *memory.ConfigStore
	ingest *mockIngestService
	fixity *mockFixityService
	object *mockObjectService
}

// injectServices replaces every wired service with in-memory fakes.
func injectServices(t *testing.T) *testServices {
	t.Helper()
	ts := &testServices{
		config: memory.NewConfigStore(),
		ingest: &mockIngestService{},
		fixity: &mockFixityService{},
		object: &mockObjectService{},
	}
	configStore = ts.config
	settingsService = services.NewSettingsService(ts.config)
	ingestService = ts.ingest
	fixityService = ts.fixity
	objectService = ts.object
	t.Cleanup(resetServices)
	return ts
}

// resetServices drops everything wired by a test.
func resetServices() {
	teardown()
	configStore = nil
	settingsService = nil
	ingestService = nil
	fixityService = nil
	objectService = nil
	settings = nil
	configDir = ""
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns everything printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--quiet"}, args...))
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
