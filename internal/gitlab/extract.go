package gitlab

import "regexp"

// The two patterns below are the only places that know what GitLab's markup
// looks like. They are deliberately narrow: when GitLab changes its pages,
// these are the units to replace.
var (
	// Hidden anti-CSRF field rendered into every GitLab form.
	authenticityTokenRe = regexp.MustCompile(`name="authenticity_token" value="([^"]+)"`)

	// Older GitLab echoes the minted token back as a readonly input.
	createdTokenInputRe = regexp.MustCompile(`id="created-personal-access-token"[^>]*value="([^"]+)"`)

	// Modern GitLab answers the token form with JSON.
	createdTokenJSONRe = regexp.MustCompile(`"new_token"\s*:\s*"([^"]+)"`)
)

// extractAuthenticityToken pulls the hidden CSRF field out of a GitLab form page.
func extractAuthenticityToken(html string) (string, bool) {
	m := authenticityTokenRe.FindStringSubmatch(html)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// extractCreatedToken pulls the freshly minted PAT out of the token-form
// response. JSON is tried first, then the legacy HTML input.
func extractCreatedToken(body string) (string, bool) {
	if m := createdTokenJSONRe.FindStringSubmatch(body); m != nil && m[1] != "" {
		return m[1], true
	}
	if m := createdTokenInputRe.FindStringSubmatch(body); m != nil && m[1] != "" {
		return m[1], true
	}
	return "", false
}
