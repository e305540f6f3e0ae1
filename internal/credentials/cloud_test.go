package credentials

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenServer fakes the OpenID Connect token endpoint and records the form
// values of each grant request.
func tokenServer(t *testing.T) (*httptest.Server, *[]map[string]string) {
	t.Helper()
	var mu sync.Mutex
	var grants []map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/auth/realms/api/protocol/openid-connect/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		mu.Lock()
		grants = append(grants, form)
		n := len(grants)
		mu.Unlock()
		fmt.Fprintf(w, `{"access_token": "access-%d", "refresh_token": "refresh-%d", "expires_in": 600}`, n, n)
	}))
	t.Cleanup(srv.Close)
	return srv, &grants
}

func TestCloudManagerLogin(t *testing.T) {
	srv, grants := tokenServer(t)
	m, err := NewCloudManager(Config{
		APIRoot:  srv.URL,
		Username: "alice",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.True(t, m.Expired())

	require.NoError(t, m.Login(context.Background()))
	assert.False(t, m.Expired())
	assert.Equal(t, "Bearer access-1", m.Headers()["Authorization"])

	require.Len(t, *grants, 1)
	form := (*grants)[0]
	assert.Equal(t, "password", form["grant_type"])
	assert.Equal(t, "apiclient", form["client_id"])
	assert.Equal(t, "alice", form["username"])
	assert.Equal(t, "secret", form["password"])
}

func TestCloudManagerRefresh(t *testing.T) {
	srv, grants := tokenServer(t)
	m, err := NewCloudManager(Config{APIRoot: srv.URL, Username: "alice", Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, m.Login(context.Background()))

	require.NoError(t, m.Refresh(context.Background()))
	assert.Equal(t, "Bearer access-2", m.Headers()["Authorization"])

	require.Len(t, *grants, 2)
	form := (*grants)[1]
	assert.Equal(t, "refresh_token", form["grant_type"])
	assert.Equal(t, "refresh-1", form["refresh_token"])
	assert.Empty(t, form["password"])
}

func TestCloudManagerRefreshWithoutTokenLogsIn(t *testing.T) {
	srv, grants := tokenServer(t)
	m, err := NewCloudManager(Config{APIRoot: srv.URL, Username: "alice", Password: "secret"})
	require.NoError(t, err)

	require.NoError(t, m.Refresh(context.Background()))
	require.Len(t, *grants, 1)
	assert.Equal(t, "password", (*grants)[0]["grant_type"])
}

func TestCloudManagerLoginFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid_grant"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	m, err := NewCloudManager(Config{APIRoot: srv.URL, Username: "alice", Password: "wrong"})
	require.NoError(t, err)

	err = m.Login(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
	assert.True(t, m.Expired())
}

func TestNewCloudManagerRequiresCredentials(t *testing.T) {
	_, err := NewCloudManager(Config{Username: "alice"})
	assert.Error(t, err)
	_, err = NewCloudManager(Config{Password: "secret"})
	assert.Error(t, err)
}

func TestCloudManagerURLs(t *testing.T) {
	m, err := NewCloudManager(Config{APIRoot: "https://api.example.test/", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.test/engine", m.EngineURL())
	assert.Equal(t, "https://api.example.test/channel/dbs", m.DBSURL())
	assert.Equal(t, "https://api.example.test/channel/upload-dbs", m.UploadDBSURL())
}

func TestCloudManagerLoginIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	username := os.Getenv("OLICLOUD_USERNAME")
	password := os.Getenv("OLICLOUD_PASSWORD")
	if username == "" || password == "" {
		t.Skip("OLICLOUD_USERNAME / OLICLOUD_PASSWORD not set")
	}

	m, err := NewCloudManager(Config{Username: username, Password: password})
	require.NoError(t, err)
	require.NoError(t, m.Login(context.Background()))
	assert.False(t, m.Expired())
}

func TestStaticUpdateHeadersDoesNotMutateBase(t *testing.T) {
	s := &Static{BaseHeaders: map[string]string{"Authorization": "Bearer tok"}}
	out := s.UpdateHeaders(map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, "Bearer tok", out["Authorization"])
	assert.Equal(t, "application/json", out["Content-Type"])
	assert.NotContains(t, s.BaseHeaders, "Content-Type")
}
