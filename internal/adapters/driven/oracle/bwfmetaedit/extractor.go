// Package bwfmetaedit reads Broadcast WAVE metadata by running BWF MetaEdit.
package bwfmetaedit

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/custodia-labs/dpres-cli/internal/adapters/driven/oracle"
	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.MetadataExtractor = (*Extractor)(nil)

// Extractor is a driven.MetadataExtractor backed by the bwfmetaedit executable.
type Extractor struct {
	binary string
	agent  domain.Agent
}

// New creates an extractor that runs binary. An empty binary means
// "bwfmetaedit" on the PATH.
func New(binary string) *Extractor {
	if binary == "" {
		binary = "bwfmetaedit"
	}
	return &Extractor{
		binary: binary,
		agent: domain.Agent{
			IdentifierType: domain.IdentifierTypeUUID,
			Identifier:     uuid.NewString(),
			Name:           "bwfmetaedit",
			Type:           domain.AgentTypeSoftware,
		},
	}
}

// Agent describes bwfmetaedit for event attribution.
func (e *Extractor) Agent() domain.Agent {
	return e.agent
}

// Technical returns the technical record, verifying the embedded MD5.
func (e *Extractor) Technical(ctx context.Context, path string) (driven.MetadataRecord, error) {
	return e.record(ctx, "--accept-nopadding", "--out-tech", "--MD5-Verify", path)
}

// Core returns the descriptive (BEXT and INFO) record.
func (e *Extractor) Core(ctx context.Context, path string) (driven.MetadataRecord, error) {
	return e.record(ctx, "--accept-nopadding", "--out-core", path)
}

func (e *Extractor) record(ctx context.Context, args ...string) (driven.MetadataRecord, error) {
	out, err := oracle.Run(ctx, e.binary, args...)
	if err != nil {
		return nil, err
	}
	return parseRecord(out)
}

// parseRecord reads a header row and the first data row into a field map.
func parseRecord(out []byte) (driven.MetadataRecord, error) {
	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading bwfmetaedit header: %w", domain.ErrOracle, err)
	}
	values, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: bwfmetaedit printed no record", domain.ErrOracle)
		}
		return nil, fmt.Errorf("%w: reading bwfmetaedit record: %w", domain.ErrOracle, err)
	}

	rec := make(driven.MetadataRecord, len(header))
	for i, name := range header {
		if i < len(values) {
			rec[name] = values[i]
		} else {
			rec[name] = ""
		}
	}
	return rec, nil
}
