package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Distinct(t *testing.T) {
	all := []error{
		ErrNotFound, ErrInvalidInput, ErrDuplicateIngest, ErrFileUnreadable,
		ErrOracle, ErrOracleUnavailable, ErrStore, ErrDuplicateLocation,
		ErrSchemaVersionMismatch,
	}

	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}

func TestErrors_UnavailableOracleWrapsBoth(t *testing.T) {
	err := fmt.Errorf("%w: %w: fido", ErrOracle, ErrOracleUnavailable)

	assert.ErrorIs(t, err, ErrOracle)
	assert.ErrorIs(t, err, ErrOracleUnavailable)
	assert.NotErrorIs(t, err, ErrStore)
}
