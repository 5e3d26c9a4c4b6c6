package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hookcatch/hookcatch/pkg/capture"
	"github.com/hookcatch/hookcatch/pkg/token"
)

// DefaultServerURL is the server the client commands talk to unless
// overridden by --server or HOOKCATCH_SERVER.
const DefaultServerURL = "http://localhost:3000"

// Client talks to a running hookcatch server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given server URL.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError is the error body returned by the server.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(method, path string, out any) error {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// CreateToken creates a new token on the server.
func (c *Client) CreateToken() (*token.Token, error) {
	var tok token.Token
	if err := c.do(http.MethodPost, "/api/tokens", &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// ListTokens returns all tokens on the server.
func (c *Client) ListTokens() ([]*token.Token, error) {
	var tokens []*token.Token
	if err := c.do(http.MethodGet, "/api/tokens", &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeleteToken deletes a token and its capture log.
func (c *Client) DeleteToken(value string) error {
	return c.do(http.MethodDelete, "/api/tokens/"+url.PathEscape(value), nil)
}

// Logs returns the newest count captures for a token.
func (c *Client) Logs(value string, count int) ([]*capture.Record, error) {
	var records []*capture.Record
	path := "/" + url.PathEscape(value) + "/log/" + strconv.Itoa(count)
	if err := c.do(http.MethodGet, path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Health checks whether the server is reachable.
func (c *Client) Health() error {
	return c.do(http.MethodGet, "/healthz", nil)
}
