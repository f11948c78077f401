package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMemberID(t *testing.T) {
	for i := 0; i < 500; i++ {
		id, err := GenerateMemberID()
		require.NoError(t, err)
		require.True(t, IsMemberID(id), "unexpected member id %q", id)
		require.NotEqual(t, byte('0'), id[0])
	}
}

func TestIsMemberID(t *testing.T) {
	assert.True(t, IsMemberID("123456"))
	assert.False(t, IsMemberID("12345"))
	assert.False(t, IsMemberID("1234567"))
	assert.False(t, IsMemberID("12a456"))
	assert.False(t, IsMemberID(""))
}
