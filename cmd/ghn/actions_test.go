package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guerinoni/ghn/internal/action"
	"github.com/guerinoni/ghn/internal/model"
)

const (
	readThread = `{
  "id": "100", "unread": false, "reason": "mention",
  "updated_at": "2024-05-01T10:00:00Z",
  "subject": {"title": "Already seen", "url": null, "latest_comment_url": null, "type": "Issue"},
  "repository": {"name": "b", "full_name": "a/b", "html_url": "https://github.com/a/b"}
}`
	unreadThread = `{
  "id": "200", "unread": true, "reason": "review_requested",
  "updated_at": "2024-05-01T11:00:00Z",
  "subject": {"title": "Needs review", "url": null, "latest_comment_url": null, "type": "PullRequest"},
  "repository": {"name": "b", "full_name": "a/b", "html_url": "https://github.com/a/b"}
}`
)

// inboxServer serves one read and one unread thread and records writes.
type inboxServer struct {
	*httptest.Server
	mu     sync.Mutex
	writes []string
}

func newInboxServer(t *testing.T) *inboxServer {
	t.Helper()
	s := &inboxServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Query().Get("all") == "true" {
				_, _ = w.Write([]byte("[" + readThread + "," + unreadThread + "]"))
				return
			}
			_, _ = w.Write([]byte("[" + unreadThread + "]"))
		case http.MethodPatch, http.MethodDelete:
			s.mu.Lock()
			s.writes = append(s.writes, r.Method+" "+r.URL.Path)
			s.mu.Unlock()
			if r.Method == http.MethodPatch {
				w.WriteHeader(http.StatusResetContent)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *inboxServer) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

// useServer points the global config at srv and restores every global the
// commands read once the test ends.
func useServer(t *testing.T, srv *inboxServer) {
	t.Helper()
	prevCfg, prevList, prevMark, prevOpen := cfg, listOpts, markOpts, openOpts
	t.Cleanup(func() {
		cfg, listOpts, markOpts, openOpts = prevCfg, prevList, prevMark, prevOpen
	})

	c := model.DefaultAppConfig()
	c.API.BaseURL = srv.URL
	c.Auth.HostsPath = filepath.Join(t.TempDir(), "hosts.yml")
	cfg = c

	t.Setenv("GH_TOKEN", "gho_test")
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

// rowFor returns the table line starting with the given index.
func rowFor(t *testing.T, out, index string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), index+" ") {
			return line
		}
	}
	require.Failf(t, "row not found", "no %s row in:\n%s", index, out)
	return ""
}

func TestMarkByIndex_AllMatchesListAll(t *testing.T) {
	srv := newInboxServer(t)
	useServer(t, srv)

	listOpts.all = true
	cmd, out := newTestCmd()
	require.NoError(t, runList(cmd, nil))
	require.Contains(t, rowFor(t, out.String(), "#1"), "100")

	markOpts.all = true
	cmd, out = newTestCmd()
	require.NoError(t, runMark(cmd, action.KindRead, "#1"))

	assert.Equal(t, []string{"PATCH /notifications/threads/100"}, srv.Writes())
	assert.Contains(t, out.String(), "marked 100 as read")
}

func TestMarkByIndex_DefaultMatchesUnreadList(t *testing.T) {
	srv := newInboxServer(t)
	useServer(t, srv)

	cmd, out := newTestCmd()
	require.NoError(t, runList(cmd, nil))
	require.Contains(t, rowFor(t, out.String(), "#1"), "200")

	cmd, _ = newTestCmd()
	require.NoError(t, runMark(cmd, action.KindDone, "#1"))

	assert.Equal(t, []string{"DELETE /notifications/threads/200"}, srv.Writes())
}

func TestMarkByID_SkipsListFetch(t *testing.T) {
	srv := newInboxServer(t)
	useServer(t, srv)

	cmd, _ := newTestCmd()
	require.NoError(t, runMark(cmd, action.KindRead, "100"))

	assert.Equal(t, []string{"PATCH /notifications/threads/100"}, srv.Writes())
}

func TestMarkByIndex_OutOfRange(t *testing.T) {
	srv := newInboxServer(t)
	useServer(t, srv)

	cmd, _ := newTestCmd()
	err := runMark(cmd, action.KindRead, "#2")

	require.ErrorIs(t, err, action.ErrUnknownRef)
	assert.Empty(t, srv.Writes())
}

func TestAuthStatus_ReportsSourceAndAcceptance(t *testing.T) {
	srv := newInboxServer(t)
	useServer(t, srv)

	cmd, out := newTestCmd()
	require.NoError(t, runAuthStatus(cmd, nil))

	assert.Contains(t, out.String(), "(from env)")
	assert.Contains(t, out.String(), "API:    "+srv.URL)
	assert.Contains(t, out.String(), "Status: ok")
}
