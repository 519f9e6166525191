// Package splunkbase implements the Splunkbase catalog API client used to
// authenticate, look up the latest release of an app, and download release
// archives.
package splunkbase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Error variables for client errors
var (
	// ErrAuthenticationFailed indicates the login endpoint rejected the credentials
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrNotAuthenticated indicates a catalog call before a successful login
	ErrNotAuthenticated = errors.New("not authenticated: call Authenticate first")
	// ErrRequestFailed indicates a transport or HTTP-level failure
	ErrRequestFailed = errors.New("request failed")
	// ErrNoReleases indicates the versions endpoint returned an empty list
	ErrNoReleases = errors.New("no releases found")
)

const (
	defaultBaseURL         = "https://splunkbase.splunk.com"
	defaultDownloadBaseURL = "https://api.splunkbase.splunk.com"
	defaultTimeout         = 30 * time.Second
)

// Release is one entry of the versions endpoint response.
type Release struct {
	Name string `json:"name"`
}

// Client handles communication with the Splunkbase API. Session cookies
// captured by Authenticate authorize all later calls and live only for the
// lifetime of the client.
type Client struct {
	BaseURL         string
	DownloadBaseURL string
	UserAgent       string
	HTTPClient      *http.Client
	cookies         []*http.Cookie
}

// NewClient creates a new Splunkbase API client.
func NewClient() *Client {
	return &Client{
		BaseURL:         defaultBaseURL,
		DownloadBaseURL: defaultDownloadBaseURL,
		UserAgent:       "splunkasd/1.0",
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Authenticated reports whether a login has captured session cookies.
func (c *Client) Authenticated() bool {
	return len(c.cookies) > 0
}

// Authenticate logs in with username/password form fields and captures the
// returned session cookies. A non-200 response fails with
// ErrAuthenticationFailed.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	loginURL := c.BaseURL + "/api/account:login/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status code %d", ErrAuthenticationFailed, resp.StatusCode)
	}

	c.cookies = resp.Cookies()
	return nil
}

// LatestVersion returns the latest release name for an app uid. The
// endpoint returns releases newest-first; the first entry is taken as
// latest without sorting.
func (c *Client) LatestVersion(ctx context.Context, uid string) (string, error) {
	if !c.Authenticated() {
		return "", ErrNotAuthenticated
	}

	versionURL := fmt.Sprintf("%s/api/v1/app/%s/release/", c.BaseURL, uid)
	resp, err := c.get(ctx, versionURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: status code %d for app %s", ErrRequestFailed, resp.StatusCode, uid)
	}

	var releases []Release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return "", fmt.Errorf("failed to parse release list for %s: %w", uid, err)
	}

	if len(releases) == 0 {
		return "", fmt.Errorf("%w: app %s", ErrNoReleases, uid)
	}

	return releases[0].Name, nil
}

// DownloadRelease fetches a release archive and returns the raw body along
// with the server's Last-Modified header, which is empty when the server
// did not send one.
func (c *Client) DownloadRelease(ctx context.Context, id, version string) ([]byte, string, error) {
	if !c.Authenticated() {
		return nil, "", ErrNotAuthenticated
	}

	downloadURL := fmt.Sprintf("%s/api/v2/apps/%s/releases/%s/download/?origin=sb&lead=false",
		c.DownloadBaseURL, id, version)
	resp, err := c.get(ctx, downloadURL)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, "", fmt.Errorf("%w: status code %d for app %s v%s",
			ErrRequestFailed, resp.StatusCode, id, version)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading body: %v", ErrRequestFailed, err)
	}

	return body, resp.Header.Get("Last-Modified"), nil
}

// get issues an authorized GET with the session cookies attached.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return resp, nil
}
