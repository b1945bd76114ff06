// Package client is a typed client for the Chaos Manager REST API, plus an
// optimistic TaskList model that mirrors the behavior of the web frontend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type Todo struct {
	ID        uuid.UUID  `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Task is the compact projection served by GET /api/tasks.
type Task struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is the result of a successful login.
type Session struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Token string    `json:"token"`
}

// TodoPatch is a partial update; nil fields are left untouched.
type TodoPatch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	// identity attached to every request, either may be empty
	email string
	token string
}

// New returns a client for the API rooted at baseURL (e.g.
// "http://localhost:3000"). The /api prefix is added by the client.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithEmail returns a copy of the client identifying as email via the
// X-User-Email header. The server creates the user on first contact.
func (c *Client) WithEmail(email string) *Client {
	clone := *c
	clone.email = email
	return &clone
}

// WithToken returns a copy of the client authenticating with a bearer token
// obtained from Login.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

func (c *Client) Todos(ctx context.Context) ([]Todo, error) {
	var todos []Todo
	err := c.do(ctx, http.MethodGet, "/api/todos", nil, &todos)
	return todos, err
}

func (c *Client) CreateTodo(ctx context.Context, text string) (*Todo, error) {
	body := struct {
		Text string `json:"text"`
	}{Text: text}
	var t Todo
	err := c.do(ctx, http.MethodPost, "/api/todos", body, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTodo(ctx context.Context, id uuid.UUID, patch TodoPatch) (*Todo, error) {
	var t Todo
	err := c.do(ctx, http.MethodPatch, "/api/todos/"+id.String(), patch, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTodo(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/todos/"+id.String(), nil, nil)
}

func (c *Client) Tasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks)
	return tasks, err
}

// CreateOrGetUser registers email if unseen and returns the stored user
// either way.
func (c *Client) CreateOrGetUser(ctx context.Context, email string) (*User, error) {
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	var u User
	err := c.do(ctx, http.MethodPost, "/api/users", body, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	err := c.do(ctx, http.MethodGet, "/api/users", nil, &users)
	return users, err
}

func (c *Client) UserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, "/api/users/"+email, nil, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Register(ctx context.Context, email, password string) (*User, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}
	var u User
	err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else if c.email != "" {
		req.Header.Set("X-User-Email", c.email)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		json.NewDecoder(res.Body).Decode(&payload)
		return &APIError{Status: res.StatusCode, Message: payload.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
