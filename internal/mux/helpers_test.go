package mux

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leviathan-server/internal/jwt"
	"leviathan-server/pkg/launchpad"
	"leviathan-server/pkg/statesync"
)

var cbg = context.Background()

var jwtKey *rsa.PrivateKey
var jwtKeyOnce sync.Once

func setupJWT(t *testing.T) {
	t.Helper()

	jwtKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		jwtKey = key
	})

	jwt.UseKeys(jwtKey, &jwtKey.PublicKey)
}

func token(t *testing.T, playerID string) string {
	t.Helper()

	signed, err := jwt.Sign(playerID, time.Hour)
	require.NoError(t, err)
	return signed
}

type testServer struct {
	*httptest.Server
	mux     *Mux
	manager *launchpad.Manager
	syncer  *statesync.Syncer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	setupJWT(t)

	syncer := statesync.NewSyncer(logrus.StandardLogger(), statesync.NewMemoryStore(), time.Hour)
	manager := launchpad.New(launchpad.Options{Logger: logrus.StandardLogger(), Publisher: syncer})
	m := NewMux("", manager, syncer)

	ts := &testServer{
		Server:  httptest.NewServer(m),
		mux:     m,
		manager: manager,
		syncer:  syncer,
	}

	t.Cleanup(ts.Close)
	return ts
}

func assertDo(t *testing.T, req *http.Request, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	if len(signedJWT) > 0 {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", signedJWT[0]))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}
	defer resp.Body.Close()

	if statusCode != resp.StatusCode {
		b, _ := io.ReadAll(resp.Body)
		t.Log(string(b))
		assert.Equal(t, statusCode, resp.StatusCode)
		return nil
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
			return nil
		}
	}

	return resp
}

func assertGetWithResp(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Error(err)
		return nil
	}

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, signedJWT ...string) {
	t.Helper()
	assertGetWithResp(t, ts, path, respObj, statusCode, signedJWT...)
}

func assertPostWithResp(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	var body io.Reader
	switch val := payload.(type) {
	case nil:
		body = http.NoBody
	case string:
		body = strings.NewReader(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			t.Error(err)
			return nil
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Error(err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	return assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertPost(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) {
	t.Helper()
	assertPostWithResp(t, ts, path, payload, respObj, statusCode, signedJWT...)
}
