package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot() *cobra.Command {
	root := &cobra.Command{Use: "docqa", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().String("api-key", "", "")
	root.PersistentFlags().String("api-url", "", "")
	AddOutputFlag(root)
	root.AddCommand(IngestCmd(), AskCmd(), DocumentsCmd(), ConfigCmd())
	return root
}

func execute(t *testing.T, srvURL string, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	useConfigPath(t)

	root := newTestRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(append([]string{"--api-url", srvURL}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestIngestCmd_File(t *testing.T) {
	var got IngestRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"file_name":"guide.md","chunks_created":2,"success":true}}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "guide.md")
	require.NoError(t, os.WriteFile(path, []byte("Para one.\n\nPara two."), 0644))

	out, err := execute(t, srv.URL, nil, "ingest", path)
	require.NoError(t, err)

	assert.Equal(t, "guide.md", got.FileName)
	assert.Equal(t, "Para one.\n\nPara two.", got.Text)
	assert.Equal(t, "Ingested guide.md: 2 chunks\n", out)
}

func TestIngestCmd_StdinNeedsName(t *testing.T) {
	_, err := execute(t, "http://127.0.0.1:1", strings.NewReader("text"), "ingest", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name")
}

func TestIngestCmd_StdinWithName(t *testing.T) {
	var got IngestRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"file_name":"notes","chunks_created":1,"success":true}}`))
	}))
	defer srv.Close()

	_, err := execute(t, srv.URL, strings.NewReader("piped text"), "ingest", "-", "--name", "notes")
	require.NoError(t, err)
	assert.Equal(t, IngestRequest{FileName: "notes", Text: "piped text"}, got)
}

func TestIngestCmd_FailedResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"data":{"file_name":"empty.md","chunks_created":0,"success":false,"error_message":"document contains no text"}}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "empty.md")
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	_, err := execute(t, srv.URL, nil, "ingest", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document contains no text")
}

func TestAskCmd_Text(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ask", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":{"answer":"Within 30 days.","citations":["policy.md: Refunds are issued..."]}}`))
	}))
	defer srv.Close()

	out, err := execute(t, srv.URL, nil, "ask", "How long do refunds take?", "--top-k", "3", "--file", "policy.md")
	require.NoError(t, err)

	assert.Equal(t, "How long do refunds take?", got["question"])
	assert.Equal(t, float64(3), got["top_k"])
	assert.Equal(t, "policy.md", got["file_name"])
	assert.Contains(t, out, "Within 30 days.")
	assert.Contains(t, out, "[1] policy.md: Refunds are issued...")
}

func TestAskCmd_OmitsTopKByDefault(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":{"answer":"I don't know.","citations":[]}}`))
	}))
	defer srv.Close()

	out, err := execute(t, srv.URL, nil, "ask", "Q?")
	require.NoError(t, err)

	_, hasTopK := got["top_k"]
	assert.False(t, hasTopK)
	assert.Equal(t, "I don't know.\n", out)
}

func TestAskCmd_JSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"answer":"A","citations":["a.md: x"]}}`))
	}))
	defer srv.Close()

	out, err := execute(t, srv.URL, nil, "ask", "Q?", "--output", "json")
	require.NoError(t, err)

	var resp AskResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, AskResponse{Answer: "A", Citations: []string{"a.md: x"}}, resp)
}

func TestAskCmd_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"top_k must be greater than zero","code":"VALIDATION_ERROR"}`))
	}))
	defer srv.Close()

	_, err := execute(t, srv.URL, nil, "ask", "Q?", "--top-k", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top_k must be greater than zero")
}

func TestOutputFlag_Unknown(t *testing.T) {
	_, err := execute(t, "http://127.0.0.1:1", nil, "ask", "Q?", "--output", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestDocumentsCmd_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "abc", r.URL.Query().Get("cursor"))
		_, _ = w.Write([]byte(`{"data":{"documents":[{"id":"a.md","file_name":"a.md","chunk_count":3,"created_at":"2026-03-01T12:00:00Z"}],"cursor":"next","has_more":true}}`))
	}))
	defer srv.Close()

	out, err := execute(t, srv.URL, nil, "documents", "--limit", "2", "--cursor", "abc")
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "a.md")
	assert.Contains(t, out, "Use --cursor next")
}

func TestDocumentsCmd_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"documents":[],"has_more":false}}`))
	}))
	defer srv.Close()

	out, err := execute(t, srv.URL, nil, "documents")
	require.NoError(t, err)
	assert.Equal(t, "No documents found.\n", out)
}

func TestDocumentsCmd_ShowAndSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/documents/my%20notes.md":
			_, _ = w.Write([]byte(`{"data":{"id":"my notes.md","file_name":"my notes.md","chunk_count":4,"created_at":"2026-03-01T12:00:00Z"}}`))
		case "/documents/my%20notes.md/source":
			_, _ = w.Write([]byte(`{"data":{"file_name":"my notes.md","url":"https://s3.test/presigned"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"document not found","code":"NOT_FOUND"}`))
		}
	}))
	defer srv.Close()

	out, err := execute(t, srv.URL, nil, "documents", "show", "my notes.md")
	require.NoError(t, err)
	assert.Contains(t, out, "Chunks:   4")

	out, err = execute(t, srv.URL, nil, "documents", "source", "my notes.md")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.test/presigned\n", out)

	_, err = execute(t, srv.URL, nil, "documents", "show", "other.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestConfigCmd_SetAndShow(t *testing.T) {
	configPath := useConfigPath(t)

	root := newTestRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "set", "--url", "http://docqa:9000", "--key", "abcdefghijkl"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), configPath)

	root = newTestRoot()
	out.Reset()
	root.SetOut(&out)
	root.SetArgs([]string{"config", "show"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "api_url: http://docqa:9000 (global_config)")
	assert.Contains(t, out.String(), "api_key: abcd****ijkl (global_config)")
}
