package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintIsStable(t *testing.T) {
	a, err := Fingerprint()
	require.NoError(t, err)
	assert.NotEmpty(t, a)

	b, err := Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
