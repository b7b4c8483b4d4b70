package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderDefaultsDescending(t *testing.T) {
	desc, err := parseOrder("desc")
	require.NoError(t, err)
	assert.True(t, desc)

	desc, err = parseOrder("")
	require.NoError(t, err)
	assert.True(t, desc)

	desc, err = parseOrder("ASC")
	require.NoError(t, err)
	assert.False(t, desc)

	_, err = parseOrder("sideways")
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Kenya", "Chile"}, splitList(" Kenya, ,Chile "))
	assert.Nil(t, splitList(""))
}
