package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCandidates(t *testing.T) {
	got := ExtractCandidates([]interface{}{"candidate:1", 42, "candidate:2", nil})
	assert.Equal(t, []string{"candidate:1", "candidate:2"}, got)

	assert.Nil(t, ExtractCandidates(nil))
}

func TestExtractStrings(t *testing.T) {
	got := ExtractStrings([]interface{}{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, got)

	assert.Nil(t, ExtractStrings("not-an-array"))
	assert.Nil(t, ExtractStrings(nil))
}
