package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultAPIRoot is the OLI Cloud API root.
	DefaultAPIRoot = "https://api.olisystems.com"

	// tokenPath is the OpenID Connect password-grant endpoint under the
	// auth root.
	tokenPath = "/auth/realms/api/protocol/openid-connect/token"

	clientID = "apiclient"
)

// Config holds connection settings for the OLI Cloud.
type Config struct {
	// APIRoot is the service root URL. Defaults to DefaultAPIRoot.
	APIRoot string
	// AuthRoot is the authentication root URL. Defaults to APIRoot.
	AuthRoot string
	Username string
	Password string
	// HTTPTimeout bounds each token request. Defaults to 30s.
	HTTPTimeout time.Duration
}

// CloudManager authenticates against the OLI Cloud via the password grant
// and derives the per-resource URLs from the configured API root.
// Safe for concurrent use once logged in: headers are built from a snapshot
// of the current token under a read lock.
type CloudManager struct {
	cfg        Config
	httpClient *http.Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

var _ Manager = (*CloudManager)(nil)

// NewCloudManager creates a manager for the given settings. Call Login
// before issuing API requests.
func NewCloudManager(cfg Config) (*CloudManager, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("username and password required")
	}
	if cfg.APIRoot == "" {
		cfg.APIRoot = DefaultAPIRoot
	}
	if cfg.AuthRoot == "" {
		cfg.AuthRoot = cfg.APIRoot
	}
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &CloudManager{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// tokenResponse is the OpenID Connect token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Login obtains an access token with the password grant.
func (m *CloudManager) Login(ctx context.Context) error {
	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {clientID},
		"username":   {m.cfg.Username},
		"password":   {m.cfg.Password},
	}
	return m.requestToken(ctx, form)
}

// Refresh exchanges the stored refresh token for a new access token.
// Falls back to a full login if no refresh token is held.
func (m *CloudManager) Refresh(ctx context.Context) error {
	m.mu.RLock()
	refresh := m.refreshToken
	m.mu.RUnlock()

	if refresh == "" {
		return m.Login(ctx)
	}
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {clientID},
		"refresh_token": {refresh},
	}
	return m.requestToken(ctx, form)
}

func (m *CloudManager) requestToken(ctx context.Context, form url.Values) error {
	endpoint := strings.TrimRight(m.cfg.AuthRoot, "/") + tokenPath
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request failed: %s - %s", resp.Status, string(body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("unmarshal token response: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("token response missing access_token")
	}

	m.mu.Lock()
	m.accessToken = tok.AccessToken
	m.refreshToken = tok.RefreshToken
	m.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	m.mu.Unlock()

	return nil
}

// Expired reports whether the current access token has passed its lifetime.
func (m *CloudManager) Expired() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accessToken == "" || time.Now().After(m.expiresAt)
}

func (m *CloudManager) Headers() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return map[string]string{
		"Authorization": "Bearer " + m.accessToken,
	}
}

func (m *CloudManager) UpdateHeaders(extra map[string]string) map[string]string {
	out := m.Headers()
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (m *CloudManager) EngineURL() string {
	return strings.TrimRight(m.cfg.APIRoot, "/") + "/engine"
}

func (m *CloudManager) DBSURL() string {
	return strings.TrimRight(m.cfg.APIRoot, "/") + "/channel/dbs"
}

func (m *CloudManager) UploadDBSURL() string {
	return strings.TrimRight(m.cfg.APIRoot, "/") + "/channel/upload-dbs"
}
