package gitlab

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Web UI paths used by the token-minting flow.
const (
	signInPath = "/users/sign_in"
	tokensPath = "/-/user_settings/personal_access_tokens"
)

// WebClient drives the GitLab web UI session flow to mint a personal access
// token. It is not an API client: it fills in the same HTML forms a browser
// would, which is the only way to create the very first token on a fresh
// instance.
type WebClient struct {
	baseURL string
	user    string

	// now is swappable for deterministic token names in tests.
	now func() time.Time
}

// NewWebClient creates a WebClient for the given GitLab web root.
func NewWebClient(baseURL, user string) *WebClient {
	return &WebClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		user:    user,
		now:     time.Now,
	}
}

// MintToken logs in with the given password, submits the token-creation form,
// and returns the minted token. The session cookie jar lives only for the
// duration of this call; nothing is persisted on success or failure.
// Every step fails closed — there are no retries.
func (w *WebClient) MintToken(ctx context.Context, password string) (string, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return "", fmt.Errorf("create cookie jar: %w", err)
	}
	session := &http.Client{Timeout: DefaultTimeout, Jar: jar}

	if err := w.login(ctx, session, password); err != nil {
		return "", err
	}

	csrf, err := w.fetchCSRF(ctx, session, tokensPath)
	if err != nil {
		return "", err
	}

	return w.createToken(ctx, session, csrf)
}

// login fetches the sign-in page for its CSRF field and posts the login form.
func (w *WebClient) login(ctx context.Context, session *http.Client, password string) error {
	csrf, err := w.fetchCSRF(ctx, session, signInPath)
	if err != nil {
		return err
	}

	form := url.Values{
		"user[login]":        {w.user},
		"user[password]":     {password},
		"authenticity_token": {csrf},
	}

	resp, err := w.postForm(ctx, session, signInPath, form)
	if err != nil {
		return wrapNetworkError(err, "login")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for connection reuse

	// A failed login bounces back to the sign-in page.
	if resp.Request.URL.Path == signInPath && resp.StatusCode == http.StatusOK {
		return NewError(
			ErrLoginFailed,
			fmt.Sprintf("Login as '%s' was rejected", w.user),
			"Check the initial root password (it expires 24h after first boot)",
		)
	}
	return nil
}

// fetchCSRF GETs a form page and extracts its authenticity token.
func (w *WebClient) fetchCSRF(ctx context.Context, session *http.Client, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("build GET %s: %w", path, err)
	}

	resp, err := session.Do(req)
	if err != nil {
		return "", wrapNetworkError(err, "GET "+path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	csrf, ok := extractAuthenticityToken(string(body))
	if !ok {
		return "", NewError(
			ErrCSRFNotFound,
			"No authenticity_token found on "+path,
			"GitLab may still be booting, or its markup changed",
		)
	}
	return csrf, nil
}

// createToken posts the token-creation form and scrapes the minted token.
func (w *WebClient) createToken(ctx context.Context, session *http.Client, csrf string) (string, error) {
	name := fmt.Sprintf("automated-test-token-%d", w.now().Unix())
	form := url.Values{
		"personal_access_token[name]":       {name},
		"personal_access_token[scopes][]":   {"api"},
		"personal_access_token[expires_at]": {""},
		"authenticity_token":                {csrf},
	}

	resp, err := w.postForm(ctx, session, tokensPath, form)
	if err != nil {
		return "", wrapNetworkError(err, "create token")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	token, ok := extractCreatedToken(string(body))
	if !ok {
		return "", NewError(
			ErrTokenNotFound,
			"Token form accepted but no token found in the response",
			"GitLab's token page markup may have changed",
		)
	}
	return token, nil
}

func (w *WebClient) postForm(ctx context.Context, session *http.Client, path string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build POST %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return session.Do(req)
}
