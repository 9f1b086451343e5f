package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	assert.True(t, Applied().Applied)
	assert.Equal(t, "applied", Applied().String())

	skipped := Skip("pool not found")
	assert.False(t, skipped.Applied)
	assert.Equal(t, "skipped: pool not found", skipped.String())

	detailed := SkipDetail("malformed calldata", "want 96 hex chars")
	assert.Equal(t, "malformed calldata", detailed.Reason)
	assert.Equal(t, "skipped: malformed calldata: want 96 hex chars", detailed.String())
}
