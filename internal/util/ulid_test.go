package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULID_Sortable(t *testing.T) {
	first := NewULID()
	second := NewULID()

	assert.Len(t, first, 26)
	assert.NotEqual(t, first, second)
	assert.Less(t, first, second)
}

func TestULIDTime(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := NewULID()

	created, err := ULIDTime(id)
	require.NoError(t, err)
	assert.True(t, created.After(before))

	_, err = ULIDTime("nope")
	assert.Error(t, err)
}
