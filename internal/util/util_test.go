package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomPlayerID(t *testing.T) {
	id := RandomPlayerID()
	assert.Regexp(t, `^0x[0-9a-f]{64}$`, id)
	assert.NotEqual(t, id, RandomPlayerID())
}

func TestGetenv(t *testing.T) {
	assert.Equal(t, "fallback", Getenv("LEVIATHAN_TEST_UNSET", "fallback"))

	unset := SetEnv("LEVIATHAN_TEST_SET", "value")
	defer unset()
	assert.Equal(t, "value", Getenv("LEVIATHAN_TEST_SET", "fallback"))
}
