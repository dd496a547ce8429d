package devgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Bridge endpoints, relative to Client.BaseURL.
const (
	ModulePath    = "/__ssg/module"
	TransformPath = "/__ssg/transform-index"
	StackPath     = "/__ssg/fix-stack"
)

// Client queries a bundler bridge over HTTP.
//
//	GET  /__ssg/module?url=/src/main.tsx    -> Module JSON, 404 if unknown
//	POST /__ssg/transform-index?url=/a      -> transformed HTML
//	POST /__ssg/fix-stack                   -> rewritten stack text
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a Client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Module implements Graph.
func (c *Client) Module(ctx context.Context, moduleURL string) (*Module, bool, error) {
	u := c.BaseURL + ModulePath + "?url=" + url.QueryEscape(moduleURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("devgraph: module %s: %w", moduleURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("devgraph: module %s: status %d", moduleURL, resp.StatusCode)
	}
	var mod Module
	if err := json.NewDecoder(resp.Body).Decode(&mod); err != nil {
		return nil, false, fmt.Errorf("devgraph: decode module %s: %w", moduleURL, err)
	}
	if mod.URL == "" {
		mod.URL = moduleURL
	}
	return &mod, true, nil
}

// TransformIndexHTML implements IndexTransformer.
func (c *Client) TransformIndexHTML(ctx context.Context, pageURL, doc string) (string, error) {
	out, err := c.post(ctx, TransformPath+"?url="+url.QueryEscape(pageURL), doc)
	if err != nil {
		return "", fmt.Errorf("devgraph: transform index: %w", err)
	}
	return out, nil
}

// FixStack implements StackFixer. Failures return the stack unchanged.
func (c *Client) FixStack(stack string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := c.post(ctx, StackPath, stack)
	if err != nil || out == "" {
		return stack
	}
	return out
}

func (c *Client) post(ctx context.Context, path, body string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBufferString(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return string(data), nil
}
