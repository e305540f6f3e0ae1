package oli

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deleteRecorder fakes the DBS deletion endpoint and records attempts.
type deleteRecorder struct {
	mu       sync.Mutex
	attempts []string
	failIDs  map[string]bool
}

func newDeleteRecorder(t *testing.T) (*deleteRecorder, *httptest.Server) {
	t.Helper()
	rec := &deleteRecorder{failIDs: map[string]bool{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "DELETE", r.Method)
		id := strings.TrimPrefix(r.URL.Path, "/dbs/")
		rec.mu.Lock()
		rec.attempts = append(rec.attempts, id)
		rec.mu.Unlock()
		if rec.failIDs[id] {
			http.Error(w, `{"status":"ERROR"}`, http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"status": "SUCCESS"}`)
	}))
	t.Cleanup(srv.Close)
	return rec, srv
}

func (r *deleteRecorder) deleted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.attempts))
	copy(out, r.attempts)
	return out
}

func TestSessionCloseDeletesTrackedFiles(t *testing.T) {
	rec, srv := newDeleteRecorder(t)
	c := newTestClient("", srv.URL+"/dbs", "")

	sess := c.OpenSession()
	sess.track("f1", false)
	sess.track("f2", false)
	sess.track("f3", false)

	sess.Close(context.Background())
	assert.Equal(t, []string{"f1", "f2", "f3"}, rec.deleted())
}

func TestSessionCloseContinuesPastFailures(t *testing.T) {
	rec, srv := newDeleteRecorder(t)
	rec.failIDs["f2"] = true
	c := newTestClient("", srv.URL+"/dbs", "")

	sess := c.OpenSession()
	sess.track("f1", false)
	sess.track("f2", false)
	sess.track("f3", false)

	// Close must not panic or stop at the failed deletion.
	sess.Close(context.Background())
	assert.Equal(t, []string{"f1", "f2", "f3"}, rec.deleted())
}

func TestSessionCloseIdempotent(t *testing.T) {
	rec, srv := newDeleteRecorder(t)
	c := newTestClient("", srv.URL+"/dbs", "")

	sess := c.OpenSession()
	sess.track("f1", false)

	sess.Close(context.Background())
	sess.Close(context.Background())
	assert.Equal(t, []string{"f1"}, rec.deleted())
}

func TestSessionKeepFileSkipsTracking(t *testing.T) {
	rec, srv := newDeleteRecorder(t)
	c := newTestClient("", srv.URL+"/dbs", "")

	sess := c.OpenSession()
	sess.track("kept", true)
	sess.track("owned", false)
	assert.Equal(t, []string{"owned"}, sess.Tracked())

	sess.Close(context.Background())
	assert.Equal(t, []string{"owned"}, rec.deleted())
}

func TestSessionInteractiveDecline(t *testing.T) {
	rec, srv := newDeleteRecorder(t)
	c := NewClient(testCreds("", srv.URL+"/dbs", ""), Config{
		Interactive:  true,
		PollInterval: time.Millisecond,
		MaxPolls:     5,
	}, testLogger(), nil)

	sess := c.OpenSession()
	sess.track("f1", false)
	sess.promptIn = strings.NewReader("n\n")

	sess.Close(context.Background())
	assert.Empty(t, rec.deleted(), "declining the prompt should skip cleanup")
}

func TestSessionInteractiveDefaultsToYes(t *testing.T) {
	rec, srv := newDeleteRecorder(t)
	c := NewClient(testCreds("", srv.URL+"/dbs", ""), Config{
		Interactive:  true,
		PollInterval: time.Millisecond,
		MaxPolls:     5,
	}, testLogger(), nil)

	sess := c.OpenSession()
	sess.track("f1", false)
	sess.promptIn = strings.NewReader("\n")

	sess.Close(context.Background())
	assert.Equal(t, []string{"f1"}, rec.deleted())
}
