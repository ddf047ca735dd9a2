package util

import (
	"strings"

	"github.com/google/uuid"
)

// RandomPlayerID generates a random wallet-style address suitable for testing
func RandomPlayerID() string {
	a := strings.ReplaceAll(uuid.New().String(), "-", "")
	b := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "0x" + a + b
}
