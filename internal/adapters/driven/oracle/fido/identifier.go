// Package fido identifies file formats by running the fido PRONOM
// signature matcher.
package fido

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"

	"github.com/custodia-labs/dpres-cli/internal/adapters/driven/oracle"
	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
	"github.com/custodia-labs/dpres-cli/internal/logger"
)

// Output templates: four lines of status, PUID, format name and match type.
const (
	matchFormat   = "OK\n%(info.puid)s\n%(info.formatname)s\n%(info.matchtype)s\n"
	noMatchFormat = "KO\nNone\nNone\n%(info.matchtype)s\n"
	statusMatched = "OK"
)

// Ensure Identifier implements the interface.
var _ driven.FormatIdentifier = (*Identifier)(nil)

// Identifier is a driven.FormatIdentifier backed by the fido executable.
type Identifier struct {
	binary string
	agent  domain.Agent
}

// New creates an identifier that runs binary. An empty binary means "fido"
// on the PATH.
func New(binary string) *Identifier {
	if binary == "" {
		binary = "fido"
	}
	return &Identifier{
		binary: binary,
		agent: domain.Agent{
			IdentifierType: domain.IdentifierTypeUUID,
			Identifier:     uuid.NewString(),
			Name:           "fido",
			Type:           domain.AgentTypeSoftware,
		},
	}
}

// Agent describes fido for event attribution.
func (i *Identifier) Agent() domain.Agent {
	return i.agent
}

// Probe checks that fido is installed and accepts the output templates,
// then records the installed release on the agent. Releases without
// -matchprintf exit non-zero. An unreadable version leaves the agent
// unversioned.
func (i *Identifier) Probe(ctx context.Context) error {
	if _, err := oracle.Run(ctx, i.binary, "-matchprintf", matchFormat); err != nil {
		return err
	}

	out, err := oracle.Run(ctx, i.binary, "-v")
	if err != nil {
		logger.Debug("cannot read fido version: %v", err)
		return nil
	}
	i.agent.Version = parseVersion(string(out))
	return nil
}

// parseVersion extracts the release from "fido/1.6.1" or "1.6.1".
func parseVersion(out string) string {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return ""
	}
	raw := strings.TrimPrefix(fields[len(fields)-1], "fido/")
	if v, err := semver.NewVersion(raw); err == nil {
		return v.String()
	}
	return raw
}

// Identify runs fido on path and parses its first four output lines. When
// fido reports several hits, the first wins.
func (i *Identifier) Identify(ctx context.Context, path string) (*driven.FormatIdentification, error) {
	out, err := oracle.Run(ctx, i.binary,
		"-matchprintf", matchFormat,
		"-nomatchprintf", noMatchFormat,
		path)
	if err != nil {
		return nil, err
	}
	return parse(string(out))
}

func parse(out string) (*driven.FormatIdentification, error) {
	lines := strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")
	if len(lines) < 4 {
		return nil, fmt.Errorf("%w: fido printed %d lines, want 4", domain.ErrOracle, len(lines))
	}
	status, puid, name, matchType := lines[0], lines[1], lines[2], lines[3]

	if status != statusMatched {
		return &driven.FormatIdentification{MatchType: matchType}, nil
	}
	if puid == "" {
		return nil, fmt.Errorf("%w: fido matched without a PUID", domain.ErrOracle)
	}
	return &driven.FormatIdentification{
		Matched:    true,
		FormatCode: puid,
		FormatName: name,
		MatchType:  matchType,
	}, nil
}
