package asset

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))
	return path
}

func TestLocalResource(t *testing.T) {
	path := writeTempFile(t, "scene.zip", "payload")

	res, err := NewResource(path, nil)
	require.NoError(t, err)
	defer res.Close()

	assert.False(t, res.IsRemote())
	assert.Equal(t, res.Path(), res.RemotePath())

	data, err := res.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = NewResource(filepath.Join(t.TempDir(), "missing.zip"), nil)
	assert.True(t, os.IsNotExist(err))
}

func TestHttpResource(t *testing.T) {
	path := writeTempFile(t, "scene.zip", "remote payload")

	server := httptest.NewServer(http.FileServer(http.Dir(filepath.Dir(path))))
	defer server.Close()

	res, err := NewResource(server.URL+"/scene.zip", nil)
	require.NoError(t, err)
	defer res.Close()

	assert.True(t, res.IsRemote())
	assert.Equal(t, "scene.zip", res.RemotePath())
	data, err := res.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "remote payload", string(data))

	fetchURL := server.URL + "/file-not-found.foo"
	expError := fmt.Sprintf("resource: could not fetch '%s': status %d", fetchURL, 404)
	_, err = NewResource(fetchURL, nil)
	require.Error(t, err)
	assert.Equal(t, expError, err.Error())
}

func TestRelativeResources(t *testing.T) {
	serverHits := 0
	serverFn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverHits++
		switch r.URL.Path {
		case "/foo/file1.zip", "/foo/file2.zip":
			w.Write([]byte("OK"))
		default:
			http.NotFound(w, r)
		}
	})
	server := httptest.NewServer(serverFn)
	defer server.Close()

	res1, err := NewResource(server.URL+"/foo/file1.zip", nil)
	require.NoError(t, err)
	defer res1.Close()

	res2, err := NewResource("file2.zip", res1)
	require.NoError(t, err)
	defer res2.Close()

	assert.Equal(t, 2, serverHits)
	assert.Equal(t, server.URL+"/foo/file2.zip", res2.Path())
}

func TestRelativeLocalResource(t *testing.T) {
	first := writeTempFile(t, "a.zip", "a")
	second := filepath.Join(filepath.Dir(first), "b.zip")
	require.NoError(t, os.WriteFile(second, []byte("b"), 0o644))

	res1, err := NewResource(first, nil)
	require.NoError(t, err)
	defer res1.Close()

	res2, err := NewResource("b.zip", res1)
	require.NoError(t, err)
	defer res2.Close()

	data, err := res2.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func TestUnsupportedResourceScheme(t *testing.T) {
	_, err := NewResource("gopher://digging.zip", nil)
	require.ErrorIs(t, err, ErrUnsupportedScheme)
	assert.Equal(t, "resource: unsupported scheme 'gopher'", err.Error())
}

func TestCancelledFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResourceContext(ctx, server.URL+"/scene.zip", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResourceFromStream(t *testing.T) {
	res := NewResourceFromStream("embedded", strings.NewReader("stream"))
	defer res.Close()

	assert.Equal(t, "embedded", res.Path())
	data, err := res.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "stream", string(data))
}
