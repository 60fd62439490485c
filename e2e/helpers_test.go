package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/sagarc03/imagevault"
	"github.com/sagarc03/imagevault/filesystem"
	vaulthttp "github.com/sagarc03/imagevault/http"
	"github.com/stretchr/testify/require"
)

// startServer wires the real handler, service, and filesystem store over
// a temp directory and serves them from an in-process test server.
func startServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	storageDir := t.TempDir()
	root, err := os.OpenRoot(storageDir)
	require.NoError(t, err)

	store := filesystem.NewStore(root)
	service, err := imagevault.NewService(store)
	require.NoError(t, err)

	handler := vaulthttp.NewHandler(&vaulthttp.HandlerConfig{}, service)
	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)

	return server, storageDir
}

func uploadRequest(t *testing.T, serverURL, fileName string, content []byte, owner string) *http.Response {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	if owner != "" {
		require.NoError(t, writer.WriteField("owner", owner))
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, serverURL+"/objects/", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func upload(t *testing.T, serverURL, fileName string, content []byte, owner string) {
	t.Helper()
	resp := uploadRequest(t, serverURL, fileName, content, owner)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func replaceRequest(t *testing.T, serverURL, name string, content []byte, owner string) *http.Response {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("owner", owner))
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPut, serverURL+"/objects/"+name, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func retrieveRequest(t *testing.T, serverURL, name, owner string) *http.Response {
	t.Helper()

	resp, err := http.Get(serverURL + "/objects/" + name + "?owner=" + url.QueryEscape(owner))
	require.NoError(t, err)
	return resp
}

func deleteRequest(t *testing.T, serverURL, name, owner string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, serverURL+"/objects/"+name+"?owner="+url.QueryEscape(owner), http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func queryRequest(t *testing.T, serverURL string, form url.Values) *http.Response {
	t.Helper()

	resp, err := http.Post(serverURL+"/objects/query", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	return resp
}

func transferRequest(t *testing.T, serverURL, oldOwner, newOwner string) *http.Response {
	t.Helper()

	resp, err := http.Get(serverURL + "/objects/transfer?oldOwner=" + url.QueryEscape(oldOwner) + "&newOwner=" + url.QueryEscape(newOwner))
	require.NoError(t, err)
	return resp
}

func decodeEntries(t *testing.T, resp *http.Response) []imagevault.CatalogEntry {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var entries []imagevault.CatalogEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	return entries
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return data
}
