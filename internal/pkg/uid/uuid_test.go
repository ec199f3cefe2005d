package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	var gen StringID = NewUUID()

	a := gen.Generate()
	b := gen.Generate()

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, a, b)
}

func TestStatic(t *testing.T) {
	gen := Static("corr-fixed")

	assert.Equal(t, "corr-fixed", gen.Generate())
	assert.Equal(t, "corr-fixed", gen.Generate())
}
