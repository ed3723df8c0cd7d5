package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driving"
	"github.com/custodia-labs/dpres-cli/internal/logger"
)

// Ensure IngestCoordinator implements the interface.
var _ driving.IngestService = (*IngestCoordinator)(nil)

// IngestCoordinator registers files as preservation objects.
type IngestCoordinator struct {
	store         driven.ObjectStore
	identifier    driven.FormatIdentifier
	registry      driven.FormatRegistry
	partitionType string
	agent         domain.Agent

	now func() time.Time
}

// NewIngestCoordinator creates a new ingest coordinator.
// The registry is optional; without it no file is decomposed.
// appVersion attributes digest events to this build of dpres.
func NewIngestCoordinator(
	store driven.ObjectStore,
	identifier driven.FormatIdentifier,
	registry driven.FormatRegistry,
	partitionType string,
	appVersion string,
) *IngestCoordinator {
	return &IngestCoordinator{
		store:         store,
		identifier:    identifier,
		registry:      registry,
		partitionType: partitionType,
		agent:         AppAgent(appVersion),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// AppAgent describes dpres itself as the agent of digest calculations.
func AppAgent(version string) domain.Agent {
	return domain.Agent{
		IdentifierType: domain.IdentifierTypeUUID,
		Identifier:     uuid.NewString(),
		Name:           "dpres",
		Type:           domain.AgentTypeSoftware,
		Version:        version,
	}
}

// Ingest registers a single file inside session and commits it.
// Nothing is left in the store if any step fails.
func (c *IngestCoordinator) Ingest(
	ctx context.Context,
	path string,
	session domain.IngestSession,
) (*domain.PreservationObject, error) {
	obj, _, err := c.ingest(ctx, path, session)
	return obj, err
}

func (c *IngestCoordinator) ingest(
	ctx context.Context,
	path string,
	session domain.IngestSession,
) (*domain.PreservationObject, time.Time, error) {
	tx, err := c.store.Begin(ctx)
	if err != nil {
		return nil, time.Time{}, storeErr("begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	obj, err := c.register(ctx, tx, path, session)
	if err != nil {
		return nil, time.Time{}, err
	}

	committedAt := c.now()
	if err := tx.TouchSession(ctx, session.SessionID, committedAt); err != nil {
		return nil, time.Time{}, storeErr("update session", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, time.Time{}, storeErr("commit", err)
	}
	return obj, committedAt, nil
}

// register writes the object, its events and any bitstream children into tx.
func (c *IngestCoordinator) register(
	ctx context.Context,
	tx driven.ObjectTx,
	path string,
	session domain.IngestSession,
) (*domain.PreservationObject, error) {
	sessionID := session.SessionID
	obj := &domain.PreservationObject{
		IdentifierType:  domain.IdentifierTypeUUID,
		Identifier:      uuid.NewString(),
		Category:        domain.CategoryFile,
		DigestAlgorithm: domain.DigestSHA256,
		ContentLocation: path,
		SessionID:       &sessionID,
	}

	// The uniqueness constraint on the content location is the only
	// duplicate check.
	if err := tx.CreateObject(ctx, obj); err != nil {
		if errors.Is(err, domain.ErrDuplicateLocation) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateIngest, path)
		}
		return nil, storeErr("create object", err)
	}

	logger.Info("beginning ingest of %s", path)

	digest, size, err := FileDigest(path, domain.DigestSHA256)
	if err != nil {
		return nil, err
	}
	digestedAt := c.now()

	ident, err := c.identifier.Identify(ctx, path)
	if err != nil {
		return nil, oracleErr(err)
	}
	identifiedAt := c.now()

	obj.Digest = digest
	obj.SizeBytes = &size
	obj.OriginalName = filepath.Base(path)
	obj.ContentLocationType = c.partitionType
	obj.FormatRegistryName = domain.FormatRegistryPRONOM
	if ident.Matched {
		obj.FormatCode = ident.FormatCode
		obj.FormatName = ident.FormatName
	} else {
		obj.FormatCode = ""
		obj.FormatName = domain.FormatNameUnknown
	}

	selfID, err := tx.EnsureAgent(ctx, &c.agent)
	if err != nil {
		return nil, storeErr("ensure agent", err)
	}
	identAgent := c.identifier.Agent()
	identID, err := tx.EnsureAgent(ctx, &identAgent)
	if err != nil {
		return nil, storeErr("ensure agent", err)
	}

	events := []*domain.Event{
		NewEvent(obj.ObjectID, domain.EventIngestion, c.now(), "", "", nil),
		NewEvent(obj.ObjectID, domain.EventDigestCalculation, digestedAt,
			"algorithm="+domain.DigestSHA256, "", &selfID),
		NewEvent(obj.ObjectID, domain.EventFormatIdentification, identifiedAt,
			"program="+identAgent.Name, ident.MatchType, &identID),
	}
	for _, ev := range events {
		if err := tx.AppendEvent(ctx, ev); err != nil {
			return nil, storeErr("append event", err)
		}
	}

	if obj.FormatCode != "" && c.registry != nil {
		if decomposer, ok := c.registry.Decomposer(obj.FormatCode); ok {
			if err := decomposer.Decompose(ctx, tx, obj); err != nil {
				if errors.Is(err, domain.ErrStore) {
					return nil, err
				}
				// A missing metadata extractor fails this file only.
				if errors.Is(err, domain.ErrOracleUnavailable) {
					return nil, fmt.Errorf("%w: %v", domain.ErrOracle, err)
				}
				return nil, oracleErr(err)
			}
		}
	}

	if err := tx.UpdateObject(ctx, obj); err != nil {
		return nil, storeErr("update object", err)
	}

	return obj, nil
}

// Run ingests every regular file below the request roots. Each file gets
// a typed result; the loop decides from it whether to continue.
func (c *IngestCoordinator) Run(ctx context.Context, req driving.IngestRequest) (*domain.IngestReport, error) {
	report := &domain.IngestReport{}

	if !req.DryRun {
		// Without the identifier no file can be ingested; fail before
		// opening a session.
		if err := c.identifier.Probe(ctx); err != nil {
			return report, oracleErr(err)
		}

		session, err := c.openSession(ctx, req.Note)
		if err != nil {
			return report, err
		}
		report.Session = session
		logger.Info("opened ingest session %d", session.SessionID)
	}

	for _, root := range req.Roots {
		if err := c.walk(ctx, root, req, report); err != nil {
			return report, err
		}
	}

	logger.Info("ingest complete: %d ingested, %d duplicates, %d failed",
		report.Count(domain.FileIngested), report.Count(domain.FileDuplicate), report.Count(domain.FileFailed))
	return report, nil
}

func (c *IngestCoordinator) walk(
	ctx context.Context,
	root string,
	req driving.IngestRequest,
	report *domain.IngestReport,
) error {
	resolved, err := resolveRoot(root)
	if err != nil {
		res := domain.FileResult{Path: root, Status: domain.FileFailed, Err: err}
		return c.record(req, report, res)
	}

	return filepath.WalkDir(resolved, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			res := domain.FileResult{
				Path:   path,
				Status: domain.FileFailed,
				Err:    fmt.Errorf("%w: %w", domain.ErrFileUnreadable, walkErr),
			}
			if err := c.record(req, report, res); err != nil {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Directories, symlinks and special files are never ingested.
		if !d.Type().IsRegular() {
			return nil
		}

		return c.record(req, report, c.ingestOne(ctx, path, report.Session, req.DryRun))
	})
}

// record appends a result and returns a non-nil error if the run must stop.
func (c *IngestCoordinator) record(req driving.IngestRequest, report *domain.IngestReport, res domain.FileResult) error {
	report.Results = append(report.Results, res)
	if req.Progress != nil {
		req.Progress(res)
	}

	if res.Status != domain.FileFailed {
		return nil
	}
	if isFatal(res.Err) || !req.KeepGoing {
		return res.Err
	}
	return nil
}

func (c *IngestCoordinator) ingestOne(
	ctx context.Context,
	path string,
	session *domain.IngestSession,
	dryRun bool,
) domain.FileResult {
	if dryRun {
		return domain.FileResult{Path: path, Status: domain.FileListed}
	}

	obj, committedAt, err := c.ingest(ctx, path, *session)
	switch {
	case err == nil:
		session.EndTime = &committedAt
		return domain.FileResult{Path: path, Status: domain.FileIngested, ObjectID: obj.ObjectID}
	case errors.Is(err, domain.ErrDuplicateIngest):
		logger.Warn("%s already ingested", path)
		return domain.FileResult{Path: path, Status: domain.FileDuplicate, Err: err}
	default:
		logger.Error("ingest of %s failed: %v", path, err)
		return domain.FileResult{Path: path, Status: domain.FileFailed, Err: err}
	}
}

func (c *IngestCoordinator) openSession(ctx context.Context, note string) (*domain.IngestSession, error) {
	tx, err := c.store.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	session := &domain.IngestSession{
		StartTime: c.now(),
		Note:      note,
	}
	if err := tx.CreateSession(ctx, session); err != nil {
		return nil, storeErr("create session", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit", err)
	}
	return session, nil
}

// resolveRoot makes root absolute and resolves symlinks in it.
func resolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrFileUnreadable, err)
	}
	return resolved, nil
}

// isFatal reports whether err must end a run regardless of KeepGoing.
func isFatal(err error) bool {
	return errors.Is(err, domain.ErrStore) ||
		errors.Is(err, domain.ErrOracleUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
