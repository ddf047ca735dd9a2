package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Dir is where snapshot files are kept, relative to the package under test
var Dir = "testdata"

// UpdateEnv forces every snapshot to be rewritten when set to a non-empty value
const UpdateEnv = "UPDATE_SNAPSHOTS"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

var mu sync.Mutex
var callCount = make(map[string]int)

// Match compares the JSON encoding of obj with the test's snapshot file
// The file is written instead when it doesn't exist yet. Each call within a test gets its own file.
func Match(t *testing.T, obj interface{}, msgAndArgs ...interface{}) {
	t.Helper()

	name := unsafeChars.ReplaceAllString(t.Name(), "_")

	mu.Lock()
	call := callCount[name]
	callCount[name] = call + 1
	mu.Unlock()

	filename := filepath.Join(Dir, fmt.Sprintf("%s-%d.json", name, call))

	objJSON, err := json.MarshalIndent(obj, "", "  ")
	require.NoError(t, err)

	expects, err := os.ReadFile(filename)
	if os.IsNotExist(err) || os.Getenv(UpdateEnv) != "" {
		require.NoError(t, write(filename, objJSON))
		return
	}
	require.NoError(t, err)

	if !assert.Equal(t, strings.Trim(string(expects), "\n"), strings.Trim(string(objJSON), "\n"), msgAndArgs...) {
		t.Logf("snapshot %s", filename)
	}
}

func write(filename string, b []byte) error {
	logrus.WithField("filename", filename).Info("writing snapshot file")
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}

	return os.WriteFile(filename, append(b, '\n'), 0644)
}
