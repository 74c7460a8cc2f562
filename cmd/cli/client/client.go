// Package client is a small HTTP client for the user accounts API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crucial707/hci-users/cmd/cli/config"
)

// Envelope mirrors the API response body.
type Envelope struct {
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data,omitempty"`
	Info       string          `json:"info,omitempty"`
	ID         int             `json:"id,omitempty"`
	Token      string          `json:"token,omitempty"`
}

// User is the user shape returned by the API.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Info   string
}

func (e *APIError) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("API error: status %d", e.Status)
	}
	return fmt.Sprintf("API error: status %d: %s", e.Status, e.Info)
}

// Credentials authenticate a request. At most one of Token or Username is used.
type Credentials struct {
	Token    string
	Username string
	Password string
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client for config.APIURL().
func New() *Client {
	return &Client{BaseURL: config.APIURL(), HTTP: &http.Client{Timeout: 30 * time.Second}}
}

// ==========================
// Endpoints
// ==========================

func (c *Client) ListUsers() ([]User, error) {
	env, err := c.do(http.MethodGet, "/users", nil, Credentials{})
	if err != nil {
		return nil, err
	}
	var list []User
	if err := json.Unmarshal(env.Data, &list); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return list, nil
}

func (c *Client) GetUser(id int, creds Credentials) (*User, error) {
	env, err := c.do(http.MethodGet, fmt.Sprintf("/users/%d", id), nil, creds)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(env.Data, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// CreateUser registers a user and returns its id.
func (c *Client) CreateUser(username, password string) (int, error) {
	env, err := c.do(http.MethodPost, "/users", map[string]string{"username": username, "password": password}, Credentials{})
	if err != nil {
		return 0, err
	}
	return env.ID, nil
}

// Token exchanges credentials for a bearer token.
func (c *Client) Token(creds Credentials) (string, error) {
	env, err := c.do(http.MethodGet, "/token", nil, creds)
	if err != nil {
		return "", err
	}
	if env.Token == "" {
		return "", fmt.Errorf("no token returned by API")
	}
	return env.Token, nil
}

func (c *Client) do(method, path string, payload any, creds Credentials) (*Envelope, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case creds.Token != "":
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	case creds.Username != "":
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var env Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		info := env.Info
		if decodeErr != nil {
			info = string(bytes.TrimSpace(raw))
		}
		return nil, &APIError{Status: resp.StatusCode, Info: info}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	return &env, nil
}
