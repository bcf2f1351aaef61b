package github

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

	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL   = "https://api.github.com"
	DefaultUserAgent = "Portfolio-App"
	DefaultTimeout   = 10 * time.Second

	// perPage is the largest page GitHub serves; only the first page is read.
	perPage = 100
)

var (
	ErrUpstreamUnavailable = errors.New("github: upstream unavailable")
	ErrUpstreamMalformed   = errors.New("github: malformed response")
)

// UnavailableError reports a non-2xx response from GitHub.
type UnavailableError struct {
	StatusCode int
	Status     string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("github returned status %d: %s", e.StatusCode, e.Status)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// Repository is the subset of the GitHub repository payload the portfolio uses.
// Optional fields are pointers so absent and null values can be told apart
// from zero values.
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Homepage        *string   `json:"homepage"`
	Language        *string   `json:"language"`
	StargazersCount *int      `json:"stargazers_count"`
	Topics          []string  `json:"topics"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Private         bool      `json:"private"`
	Fork            bool      `json:"fork"`
}

// Profile is the public GitHub user profile shown on the about section.
type Profile struct {
	Login       string  `json:"login"`
	Name        *string `json:"name"`
	Bio         *string `json:"bio"`
	PublicRepos int     `json:"public_repos"`
	Followers   int     `json:"followers"`
	Following   int     `json:"following"`
	AvatarURL   string  `json:"avatar_url"`
	HTMLURL     string  `json:"html_url"`
}

// CallRecorder receives one observation per upstream request.
type CallRecorder interface {
	RecordUpstreamCall(duration time.Duration, err error)
}

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   time.Duration
	Recorder  CallRecorder
}

// Client is a read-only GitHub REST client. It never retries, paginates
// or caches.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	recorder   CallRecorder
}

// NewClient creates a GitHub client. When a token is set every request
// carries it as a bearer credential.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	if opts.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))
		httpClient.Timeout = opts.Timeout
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		httpClient: httpClient,
		recorder:   opts.Recorder,
	}
}

// ListRepositories fetches the first page of the account's repositories,
// most recently updated first.
func (c *Client) ListRepositories(ctx context.Context, account string) ([]Repository, error) {
	q := url.Values{}
	q.Set("sort", "updated")
	q.Set("per_page", fmt.Sprint(perPage))
	reqURL := fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, url.PathEscape(account), q.Encode())

	var repos []Repository
	if err := c.getJSON(ctx, reqURL, &repos); err != nil {
		return nil, fmt.Errorf("list repositories for %s: %w", account, err)
	}
	return repos, nil
}

// GetUser fetches the public profile of the account.
func (c *Client) GetUser(ctx context.Context, account string) (*Profile, error) {
	reqURL := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(account))

	var p Profile
	if err := c.getJSON(ctx, reqURL, &p); err != nil {
		return nil, fmt.Errorf("get user %s: %w", account, err)
	}
	return &p, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) (err error) {
	start := time.Now()
	defer func() {
		if c.recorder != nil {
			c.recorder.RecordUpstreamCall(time.Since(start), err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &UnavailableError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrUpstreamUnavailable, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrUpstreamMalformed, err)
	}
	return nil
}
