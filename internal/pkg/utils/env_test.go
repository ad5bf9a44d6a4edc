package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("DUSTHUNTER_TEST_SET", "value")
	t.Setenv("DUSTHUNTER_TEST_EMPTY", "")

	assert.Equal(t, "value", GetEnv("DUSTHUNTER_TEST_SET", "fallback"))
	assert.Equal(t, "fallback", GetEnv("DUSTHUNTER_TEST_EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("DUSTHUNTER_TEST_UNSET_KEY", "fallback"))
}
