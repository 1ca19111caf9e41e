// Package rdr talks to the research data repository's Figshare-style API.
package rdr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"rdrupload/internal/credential"
	rdrerrors "rdrupload/internal/errors"
	"rdrupload/internal/metadata"
)

// DefaultBaseURL is the repository API root.
const DefaultBaseURL = "https://api.figsh.com/v2"

// Client creates articles on behalf of one authenticated user.
type Client struct {
	baseURL    string
	token      credential.Token
	httpClient *http.Client
}

// NewClient returns a client for baseURL. A nil httpClient uses
// http.DefaultClient, whose connection policy is the only timeout applied.
func NewClient(baseURL string, token credential.Token, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// HTTPClient returns the client requests are sent with.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Response is what the service sent back for one article.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// OK reports whether the service accepted the article.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// String renders the body on a single line.
func (r *Response) String() string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, r.Body); err != nil {
		return string(r.Body)
	}
	return buf.String()
}

// ArticlesURL is the create-article endpoint for a project.
func (c *Client) ArticlesURL(projectID string) string {
	return fmt.Sprintf("%s/account/projects/%s/articles", c.baseURL, url.PathEscape(projectID))
}

// Submit POSTs one article to a project. Any JSON reply is returned as is,
// error bodies included; only transport failures and non-JSON bodies are errors.
func (c *Client) Submit(ctx context.Context, article metadata.Article, projectID string) (*Response, error) {
	body, err := json.Marshal(article)
	if err != nil {
		return nil, fmt.Errorf("failed to encode article: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ArticlesURL(projectID), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token.Reveal())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", rdrerrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", rdrerrors.ErrTransport, err)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: http %d: %q", rdrerrors.ErrMalformedResponse, resp.StatusCode, truncate(data, 200))
	}

	return &Response{StatusCode: resp.StatusCode, Body: json.RawMessage(data)}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
