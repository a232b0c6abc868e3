package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Compile-time interface check.
var _ Client = (*APIClient)(nil)

// APIClient implements Client against a GitLab REST API v4 endpoint.
type APIClient struct {
	apiURL     string
	httpClient *http.Client
}

// NewAPIClient creates an APIClient for the given API base URL
// (e.g. "http://localhost:8080/api/v4").
func NewAPIClient(apiURL string) *APIClient {
	return &APIClient{
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *APIClient) Version(ctx context.Context, token string) (*VersionInfo, error) {
	body, err := c.do(ctx, http.MethodGet, "/version", token, nil)
	if err != nil {
		return nil, err
	}

	var info VersionInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode version response: %w", err)
	}
	if info.Version == "" {
		return nil, NewError(
			ErrAPIError,
			"Version probe returned no version string",
			"The token may be invalid or GitLab is not healthy yet",
		)
	}
	return &info, nil
}

func (c *APIClient) CreateProject(ctx context.Context, token, name string) (*Project, error) {
	payload, err := json.Marshal(map[string]string{
		"name":       name,
		"visibility": "private",
	})
	if err != nil {
		return nil, fmt.Errorf("encode project payload: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/projects", token, payload)
	if err != nil {
		return nil, err
	}

	var proj Project
	if err := json.Unmarshal(body, &proj); err != nil {
		return nil, fmt.Errorf("decode project response: %w", err)
	}
	if proj.ID == 0 {
		return nil, NewError(
			ErrAPIError,
			fmt.Sprintf("Project creation for '%s' returned no id", name),
			"Check the token has the api scope",
		)
	}
	return &proj, nil
}

func (c *APIClient) DeleteProject(ctx context.Context, token string, id int) error {
	_, err := c.do(ctx, http.MethodDelete, "/projects/"+strconv.Itoa(id), token, nil)
	return err
}

// do executes one API request and returns the response body.
// Non-2xx statuses become coded errors; transport failures are mapped to
// network errors.
func (c *APIClient) do(ctx context.Context, method, path, token string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapNetworkError(err, method+" "+path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewError(
			ErrAPIError,
			fmt.Sprintf("%s %s returned %d: %s", method, path, resp.StatusCode, truncate(string(body), 200)),
			"Check the token and the GitLab API URL",
		)
	}
	return body, nil
}

// truncate shortens API error bodies for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
