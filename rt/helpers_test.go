package rt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestRuntime returns a fresh Runtime with a large ballast so ordinary
// test bodies never trigger an incidental auto-recycle.
func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	r, err := New(RuntimeOptions{Ballast: 1 << 20})
	require.NoError(t, err)
	return r
}
