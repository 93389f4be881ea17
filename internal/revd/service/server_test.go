package service

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/revstore/revd/internal/revd/storage"
	"gitlab.com/revstore/revd/internal/testhelper"
)

func TestMain(m *testing.M) {
	os.Exit(testhelper.Run(m))
}

func setupServer(tb testing.TB) (*httptest.Server, *storage.Store) {
	tb.Helper()

	store, err := storage.New(tb.TempDir(), testhelper.NewLogger(tb), storage.NewMetrics())
	require.NoError(tb, err)

	server := httptest.NewServer(NewServer(store, testhelper.NewLogger(tb)).Handler())
	tb.Cleanup(func() {
		server.Close()
		http.DefaultClient.CloseIdleConnections()
	})

	return server, store
}

func postJSON(tb testing.TB, server *httptest.Server, path string, payload any) *http.Response {
	tb.Helper()

	body, err := json.Marshal(payload)
	require.NoError(tb, err)

	response, err := http.Post(server.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(tb, err)
	tb.Cleanup(func() { response.Body.Close() })

	return response
}

func get(tb testing.TB, server *httptest.Server, path string) *http.Response {
	tb.Helper()

	response, err := http.Get(server.URL + path)
	require.NoError(tb, err)
	tb.Cleanup(func() { response.Body.Close() })

	return response
}

func decodeBody(tb testing.TB, response *http.Response, target any) {
	tb.Helper()
	require.NoError(tb, json.NewDecoder(response.Body).Decode(target))
}

func TestServer_health(t *testing.T) {
	t.Parallel()

	server, _ := setupServer(t)

	response := get(t, server, "/api/health")
	require.Equal(t, http.StatusOK, response.StatusCode)

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	require.Equal(t, "healthy", string(body))
}

func TestServer_fileOperations(t *testing.T) {
	t.Parallel()

	server, _ := setupServer(t)

	response := postJSON(t, server, "/api/fs/save", map[string]string{
		"path":    "0/a/b.txt",
		"content": "hello",
	})
	require.Equal(t, http.StatusCreated, response.StatusCode)

	response = get(t, server, "/api/fs/read?path=0/a/b.txt")
	require.Equal(t, http.StatusOK, response.StatusCode)

	var content string
	decodeBody(t, response, &content)
	require.Equal(t, "hello", content)

	response = get(t, server, "/api/fs/list?path=0/a")
	require.Equal(t, http.StatusOK, response.StatusCode)

	var nodes []struct {
		Name        string `json:"name"`
		Path        string `json:"path"`
		IsDirectory bool   `json:"isDirectory"`
		Size        *int64 `json:"size"`
	}
	decodeBody(t, response, &nodes)
	require.Len(t, nodes, 1)
	require.Equal(t, "b.txt", nodes[0].Name)
	require.Equal(t, "0/a/b.txt", nodes[0].Path)
	require.False(t, nodes[0].IsDirectory)
	require.NotNil(t, nodes[0].Size)

	response = postJSON(t, server, "/api/fs/rename", map[string]string{
		"from": "0/a/b.txt",
		"to":   "0/renamed.txt",
	})
	require.Equal(t, http.StatusNoContent, response.StatusCode)

	response = postJSON(t, server, "/api/fs/delete", map[string]string{
		"path": "0/renamed.txt",
	})
	require.Equal(t, http.StatusNoContent, response.StatusCode)

	response = get(t, server, "/api/fs/read?path=0/renamed.txt")
	require.Equal(t, http.StatusNotFound, response.StatusCode)
}

func TestServer_fileOperationErrors(t *testing.T) {
	t.Parallel()

	server, _ := setupServer(t)

	for _, tc := range []struct {
		desc           string
		request        func() *http.Response
		expectedStatus int
	}{
		{
			desc: "read of missing file",
			request: func() *http.Response {
				return get(t, server, "/api/fs/read?path=0/missing.txt")
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			desc: "list of missing path",
			request: func() *http.Response {
				return get(t, server, "/api/fs/list?path=0/missing")
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			desc: "escaping path",
			request: func() *http.Response {
				return get(t, server, "/api/fs/read?path=../../etc/passwd")
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			desc: "rename of missing source",
			request: func() *http.Response {
				return postJSON(t, server, "/api/fs/rename", map[string]string{
					"from": "0/missing.txt",
					"to":   "0/b.txt",
				})
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			desc: "delete of missing path",
			request: func() *http.Response {
				return postJSON(t, server, "/api/fs/delete", map[string]string{
					"path": "0/missing.txt",
				})
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			desc: "malformed request body",
			request: func() *http.Response {
				response, err := http.Post(server.URL+"/api/fs/delete", "application/json", strings.NewReader("{"))
				require.NoError(t, err)
				t.Cleanup(func() { response.Body.Close() })
				return response
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			desc: "wrong method",
			request: func() *http.Response {
				return get(t, server, "/api/fs/snapshot")
			},
			expectedStatus: http.StatusMethodNotAllowed,
		},
	} {
		tc := tc

		t.Run(tc.desc, func(t *testing.T) {
			require.Equal(t, tc.expectedStatus, tc.request().StatusCode)
		})
	}
}

func TestServer_snapshotAndRevisions(t *testing.T) {
	t.Parallel()

	server, store := setupServer(t)

	require.NoError(t, store.WriteFile("0/report.txt", "v0"))

	response := postJSON(t, server, "/api/fs/snapshot", struct{}{})
	require.Equal(t, http.StatusOK, response.StatusCode)

	var snapshot struct {
		ID int `json:"id"`
	}
	decodeBody(t, response, &snapshot)
	require.Equal(t, 1, snapshot.ID)

	response = get(t, server, "/api/revisions")
	require.Equal(t, http.StatusOK, response.StatusCode)

	var revisions struct {
		Latest int   `json:"latest"`
		List   []int `json:"list"`
	}
	decodeBody(t, response, &revisions)
	require.Equal(t, 1, revisions.Latest)
	require.Equal(t, []int{0, 1}, revisions.List)

	response = get(t, server, fmt.Sprintf("/api/revisions/file?rev=%d&path=report.txt", snapshot.ID))
	require.Equal(t, http.StatusOK, response.StatusCode)

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	require.Equal(t, "v0", string(body))
}

func TestServer_createRevisionFromArchive(t *testing.T) {
	t.Parallel()

	server, _ := setupServer(t)

	var buffer bytes.Buffer
	writer := zip.NewWriter(&buffer)
	entry, err := writer.Create("X.txt")
	require.NoError(t, err)
	_, err = entry.Write([]byte("archived"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	response := postJSON(t, server, "/api/revisions", map[string]string{
		"zip_b64": base64.StdEncoding.EncodeToString(buffer.Bytes()),
	})
	require.Equal(t, http.StatusOK, response.StatusCode)

	var created struct {
		ID int `json:"id"`
	}
	decodeBody(t, response, &created)
	require.Equal(t, 1, created.ID)

	response = get(t, server, fmt.Sprintf("/api/revisions/file?rev=%d&path=X.txt", created.ID))
	require.Equal(t, http.StatusOK, response.StatusCode)

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	require.Equal(t, "archived", string(body))
}

func TestServer_createRevisionFromArchiveErrors(t *testing.T) {
	t.Parallel()

	server, _ := setupServer(t)

	response := postJSON(t, server, "/api/revisions", map[string]string{
		"zip_b64": "not base64!!",
	})
	require.Equal(t, http.StatusBadRequest, response.StatusCode)

	response = get(t, server, "/api/revisions/file?rev=notanumber&path=x")
	require.Equal(t, http.StatusBadRequest, response.StatusCode)

	response = get(t, server, "/api/revisions/file?rev=7&path=missing.txt")
	require.Equal(t, http.StatusNotFound, response.StatusCode)
}
