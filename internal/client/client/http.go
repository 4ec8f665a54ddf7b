package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"
	"github.com/dmitrijs2005/storykeeper/internal/common"
)

const apiPrefix = "/api/v1"

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the server at baseURL, for example
// "http://127.0.0.1:8080". Every request is bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server address: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server address %q: want http(s)://host:port", baseURL)
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil || eb.Error == "" {
			eb.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: eb.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Ping checks the server's health endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, apiPrefix+"/auth/register", "", credentials{username, password}, nil)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.Tokens, error) {
	var t models.Tokens
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/auth/login", "", credentials{username, password}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error) {
	var t models.Tokens
	in := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/auth/refresh", "", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Me returns the username the access token belongs to.
func (c *HTTPClient) Me(ctx context.Context, token string) (string, error) {
	var v struct {
		Username string `json:"username"`
	}
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/auth/me", token, nil, &v); err != nil {
		return "", err
	}
	return v.Username, nil
}

// ListStories lists stories, limited to author when it is non-empty.
func (c *HTTPClient) ListStories(ctx context.Context, token, author string) ([]models.Story, error) {
	path := apiPrefix + "/stories"
	if author != "" {
		path += "?" + url.Values{"author": {author}}.Encode()
	}

	var list []models.Story
	if err := c.do(ctx, http.MethodGet, path, token, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) CreateStory(ctx context.Context, token string, in models.StoryInput) (*models.Story, error) {
	var s models.Story
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/stories", token, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) DeleteStory(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, apiPrefix+"/stories/"+url.PathEscape(id), token, nil, nil)
}

// UpdateCountry starts the server-side country backfill and returns the
// country the server will write.
func (c *HTTPClient) UpdateCountry(ctx context.Context, token, country string) (string, error) {
	var in any
	if country != "" {
		in = map[string]string{"country": country}
	}

	var v struct {
		Country string `json:"country"`
	}
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/stories/update_country", token, in, &v); err != nil {
		return "", err
	}
	return v.Country, nil
}
