package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierReusesLowestFreeID(t *testing.T) {
	a, b, c := "a", "b", "c"
	idA := IdentifierAquireNewID(&a)
	idB := IdentifierAquireNewID(&b)
	t.Cleanup(func() {
		_ = IdentifierReleaseID(idA)
		_ = IdentifierReleaseID(idB)
	})
	assert.NotEqual(t, idA, idB)
	assert.Same(t, &b, IdentifierOwner(idB))

	require.NoError(t, IdentifierReleaseID(idA))
	assert.Nil(t, IdentifierOwner(idA))

	idC := IdentifierAquireNewID(&c)
	assert.Equal(t, idA, idC)
	assert.Same(t, &c, IdentifierOwner(idC))
}

func TestIdentifierReleaseOutOfRange(t *testing.T) {
	assert.Error(t, IdentifierReleaseID(1<<30))
	assert.Nil(t, IdentifierOwner(1<<30))
}
