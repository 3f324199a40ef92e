package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetStringOrDefault(t *testing.T) {
	t.Setenv("ALVIDEO_TEST_STR", "value")
	assert.Equal(t, "value", GetStringOrDefault("ALVIDEO_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetStringOrDefault("ALVIDEO_TEST_UNSET", "fallback"))

	t.Setenv("ALVIDEO_TEST_EMPTY", "")
	assert.Equal(t, "fallback", GetStringOrDefault("ALVIDEO_TEST_EMPTY", "fallback"))
}

func TestGetIntOrDefault(t *testing.T) {
	t.Setenv("ALVIDEO_TEST_INT", "42")
	assert.Equal(t, 42, GetIntOrDefault("ALVIDEO_TEST_INT", 7))
	assert.Equal(t, 7, GetIntOrDefault("ALVIDEO_TEST_UNSET", 7))

	t.Setenv("ALVIDEO_TEST_BAD_INT", "not-a-number")
	assert.Equal(t, 0, GetIntOrDefault("ALVIDEO_TEST_BAD_INT", 7))
}

func TestGetBoolOrDefault(t *testing.T) {
	t.Setenv("ALVIDEO_TEST_BOOL", "true")
	assert.True(t, GetBoolOrDefault("ALVIDEO_TEST_BOOL", false))

	t.Setenv("ALVIDEO_TEST_BOOL", "0")
	assert.False(t, GetBoolOrDefault("ALVIDEO_TEST_BOOL", true))

	assert.True(t, GetBoolOrDefault("ALVIDEO_TEST_UNSET", true))
}

func TestGetDurationOrDefault(t *testing.T) {
	t.Setenv("ALVIDEO_TEST_DUR", "1500ms")
	assert.Equal(t, 1500*time.Millisecond, GetDurationOrDefault("ALVIDEO_TEST_DUR", time.Second))

	// bare integers mean seconds
	t.Setenv("ALVIDEO_TEST_DUR", "30")
	assert.Equal(t, 30*time.Second, GetDurationOrDefault("ALVIDEO_TEST_DUR", time.Second))

	t.Setenv("ALVIDEO_TEST_DUR", "garbage")
	assert.Equal(t, time.Second, GetDurationOrDefault("ALVIDEO_TEST_DUR", time.Second))

	assert.Equal(t, time.Second, GetDurationOrDefault("ALVIDEO_TEST_UNSET", time.Second))
}
