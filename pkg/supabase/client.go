// Package supabase is a small client for the Supabase Auth (GoTrue) REST API.
package supabase

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
)

// DefaultPerPage is the admin list page size.
const DefaultPerPage = 200

// User is an auth user as returned by the admin API.
type User struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	UserMetadata     map[string]interface{} `json:"user_metadata"`
	EmailConfirmedAt *time.Time             `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// TokenResponse is returned by a password grant.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`
}

// APIError is a non-2xx answer from the auth API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase auth api: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the auth API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to <baseURL>/auth/v1. Admin calls use the service role key and
// public calls (sign-in, recovery) use the anon key.
type Client struct {
	baseURL        string
	serviceRoleKey string
	anonKey        string
	httpClient     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL, serviceRoleKey, anonKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("supabase url is required")
	}
	if serviceRoleKey == "" {
		return nil, errors.New("supabase service role key is required")
	}
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/") + "/auth/v1",
		serviceRoleKey: serviceRoleKey,
		anonKey:        anonKey,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
	}
	if c.anonKey == "" {
		c.anonKey = serviceRoleKey
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type listUsersResponse struct {
	Users []User `json:"users"`
}

// ListUsers returns one page of users. Pages start at 1.
func (c *Client) ListUsers(ctx context.Context, page, perPage int) ([]User, error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("per_page", fmt.Sprint(perPage))

	var resp listUsersResponse
	if err := c.do(ctx, http.MethodGet, "/admin/users?"+q.Encode(), c.serviceRoleKey, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// GetUser fetches a user by id.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/admin/users/"+url.PathEscape(id), c.serviceRoleKey, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserMetadata replaces user_metadata of the user.
func (c *Client) UpdateUserMetadata(ctx context.Context, id string, metadata map[string]interface{}) (*User, error) {
	body := map[string]interface{}{"user_metadata": metadata}
	var user User
	if err := c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(id), c.serviceRoleKey, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ConfirmEmail marks the user's email as confirmed.
func (c *Client) ConfirmEmail(ctx context.Context, id string) (*User, error) {
	body := map[string]interface{}{"email_confirm": true}
	var user User
	if err := c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(id), c.serviceRoleKey, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignInWithPassword performs the password grant.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*TokenResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var token TokenResponse
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", c.anonKey, body, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Recover asks the auth server to email a password recovery link.
func (c *Client) Recover(ctx context.Context, email, redirectTo string) error {
	path := "/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	return c.do(ctx, http.MethodPost, path, c.anonKey, map[string]string{"email": email}, nil)
}

func (c *Client) do(ctx context.Context, method, path, key string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("supabase auth request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read supabase response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode supabase response: %w", err)
	}
	return nil
}

// errorMessage extracts the message from the several error shapes GoTrue emits.
func errorMessage(data []byte) string {
	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		for _, m := range []string{payload.ErrorDescription, payload.Msg, payload.Message, payload.Error} {
			if m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(data))
}
