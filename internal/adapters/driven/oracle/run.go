// Package oracle holds the adapters for external classification and
// metadata tools. Subpackages wrap one tool each.
package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

// Run executes binary with args and returns its standard output.
//
// A binary that cannot be found fails with domain.ErrOracleUnavailable;
// a non-zero exit fails with domain.ErrOracle and the tool's stderr.
// Both are wrapped together with domain.ErrOracle.
func Run(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %w: %s not found", domain.ErrOracle, domain.ErrOracleUnavailable, binary)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrOracle, binary, err)
		}
		return nil, fmt.Errorf("%w: %s: %w: %s", domain.ErrOracle, binary, err, msg)
	}

	return stdout.Bytes(), nil
}
