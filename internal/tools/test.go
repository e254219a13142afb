package tools

import (
	"testing"

	"gotest.tools/v3/assert"
)

// EnsureSetup fails the test early when fixture loading or an initial Load did not succeed
func EnsureSetup(t *testing.T, err error) {
	t.Helper()
	assert.NilError(t, err, "error during test setup")
}
