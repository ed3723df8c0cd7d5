package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

func TestFixityCmd_DefaultInterval(t *testing.T) {
	ts := injectServices(t)
	ts.fixity.results = []domain.FixityResult{
		{ObjectID: 1, ContentLocation: "/data/a.txt", Outcome: domain.OutcomeOK},
	}

	out, err := execute(t, "", "fixity")

	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, ts.fixity.req.Interval)
	assert.Contains(t, out, "OK")
	assert.Contains(t, out, "/data/a.txt")
	assert.Contains(t, out, "1 checked: 1 OK, 0 failed, 0 missing")
}

func TestFixityCmd_Age(t *testing.T) {
	ts := injectServices(t)

	_, err := execute(t, "", "fixity", "--age", "0")

	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), ts.fixity.req.Interval)
}

func TestFixityCmd_StoredInterval(t *testing.T) {
	ts := injectServices(t)
	require.NoError(t, ts.config.Set("fixity.interval_days", 30))

	_, err := execute(t, "", "fixity")

	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, ts.fixity.req.Interval)
}

func TestFixityCmd_EnvironmentOverride(t *testing.T) {
	ts := injectServices(t)
	t.Setenv("DPRES_FIXITY_INTERVAL_DAYS", "2")

	_, err := execute(t, "", "fixity")

	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, ts.fixity.req.Interval)
}

func TestFixityCmd_ProblemsExitNonZero(t *testing.T) {
	ts := injectServices(t)
	ts.fixity.results = []domain.FixityResult{
		{ObjectID: 1, ContentLocation: "/data/a.txt", Outcome: domain.OutcomeFailed},
		{ObjectID: 2, ContentLocation: "/data/b.txt", Outcome: domain.OutcomeMissing},
		{ObjectID: 3, ContentLocation: "/data/c.txt", Outcome: domain.OutcomeOK},
	}

	out, err := execute(t, "", "fixity")

	assert.EqualError(t, err, "2 files failed fixity")
	assert.Contains(t, out, "Missing")
	assert.Contains(t, out, "3 checked: 1 OK, 1 failed, 1 missing")
}
