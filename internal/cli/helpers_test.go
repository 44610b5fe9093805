package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/moacafe/internal/docstore"
)

func noEnv(string) (string, bool) { return "", false }

// cliEnv is a document store served over HTTP plus a scratch database
// path shared by every command a test runs.
type cliEnv struct {
	docs   *docstore.Server
	url    string
	dbPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	docs := docstore.New()
	srv := httptest.NewServer(docs.Handler())
	t.Cleanup(srv.Close)

	return &cliEnv{
		docs:   docs,
		url:    srv.URL,
		dbPath: filepath.Join(t.TempDir(), "moacafe.db"),
	}
}

func (e *cliEnv) opts(format string) *RootOptions {
	return &RootOptions{
		Format:    format,
		DBPath:    e.dbPath,
		RemoteURL: e.url,
		LookupEnv: noEnv,
	}
}

func (e *cliEnv) offline(format string) *RootOptions {
	o := e.opts(format)
	o.Offline = true
	return o
}

// execute runs one command and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

type jsonResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

// decodeResponse parses a JSON response and decodes its data into out.
func decodeResponse(t *testing.T, output string, out any) jsonResponse {
	t.Helper()
	var resp jsonResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp), output)
	if out != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
	return resp
}
