package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Cards []int  `json:"cards"`
}

func TestMatch(t *testing.T) {
	orig := Dir
	Dir = t.TempDir()
	defer func() { Dir = orig }()

	obj := sample{Name: "deal", Cards: []int{3, 1, 2}}

	// first call writes the file
	Match(t, obj)
	b, err := os.ReadFile(filepath.Join(Dir, "TestMatch-0.json"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"name": "deal"`)

	// second call in the same test gets its own file
	Match(t, sample{Name: "other"})
	_, err = os.Stat(filepath.Join(Dir, "TestMatch-1.json"))
	assert.NoError(t, err)
}

func TestMatch_ComparesExisting(t *testing.T) {
	orig := Dir
	Dir = t.TempDir()
	defer func() { Dir = orig }()

	require.NoError(t, os.WriteFile(filepath.Join(Dir, "TestMatch_ComparesExisting-0.json"), []byte("{\n  \"name\": \"deal\",\n  \"cards\": null\n}\n"), 0644))

	Match(t, sample{Name: "deal"})
}
