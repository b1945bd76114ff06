package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
)

func TestCreateOrGetUserIdempotent(t *testing.T) {
	ts, _ := newTestServer(t)

	var first, second struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	res, body := doRequest(t, ts, http.MethodPost, "/api/users", map[string]string{"email": "bob@example.com"}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("got status %d, want %d", res.StatusCode, http.StatusCreated)
	}
	if err := json.Unmarshal(body, &first); err != nil {
		t.Fatal(err)
	}

	_, body = doRequest(t, ts, http.MethodPost, "/api/users", map[string]string{"email": "bob@example.com"}, nil)
	if err := json.Unmarshal(body, &second); err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Errorf("create-or-get returned different ids: %s vs %s", first.ID, second.ID)
	}
}

func TestCreateUserRejectsBadEmail(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, email := range []string{"", "   ", "no-at-sign", "missing@tld"} {
		res, _ := doRequest(t, ts, http.MethodPost, "/api/users", map[string]string{"email": email}, nil)
		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("email %q: got status %d, want %d", email, res.StatusCode, http.StatusBadRequest)
		}
	}
}

func TestConcurrentFirstContact(t *testing.T) {
	ts, _ := newTestServer(t)

	const callers = 16
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := ts.Client().Post(ts.URL+"/api/users", "application/json",
				jsonBody(`{"email":"race@example.com"}`))
			if err != nil {
				t.Error(err)
				return
			}
			res.Body.Close()
			if res.StatusCode != http.StatusCreated {
				t.Errorf("got status %d, want %d", res.StatusCode, http.StatusCreated)
			}
		}()
	}
	wg.Wait()

	_, body := doRequest(t, ts, http.MethodGet, "/api/users", nil, nil)
	var users []user
	if err := json.Unmarshal(body, &users); err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Fatalf("concurrent first contact created %d users, want 1", len(users))
	}
}

func TestGetUserByEmail(t *testing.T) {
	ts, _ := newTestServer(t)

	doRequest(t, ts, http.MethodPost, "/api/users", map[string]string{"email": "carol@example.com"}, nil)

	res, body := doRequest(t, ts, http.MethodGet, "/api/users/carol@example.com", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want %d", res.StatusCode, http.StatusOK)
	}
	var u user
	if err := json.Unmarshal(body, &u); err != nil {
		t.Fatal(err)
	}
	if u.Email != "carol@example.com" {
		t.Errorf("got email %q", u.Email)
	}
	if u.CreatedAt.IsZero() {
		t.Error("createdAt missing from response")
	}

	res, _ = doRequest(t, ts, http.MethodGet, "/api/users/ghost@example.com", nil, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("got status %d for unknown email, want %d", res.StatusCode, http.StatusNotFound)
	}
}

func TestListUsers(t *testing.T) {
	ts, _ := newTestServer(t)

	for i := 0; i < 3; i++ {
		doRequest(t, ts, http.MethodPost, "/api/users", map[string]string{"email": fmt.Sprintf("user%d@example.com", i)}, nil)
	}

	_, body := doRequest(t, ts, http.MethodGet, "/api/users", nil, nil)
	var users []user
	if err := json.Unmarshal(body, &users); err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 {
		t.Fatalf("got %d users, want 3", len(users))
	}
	// newest first
	if users[0].Email != "user2@example.com" {
		t.Errorf("ordering wrong: %+v", users)
	}
}

func TestIdentityHeaderCreatesUser(t *testing.T) {
	ts, _ := newTestServer(t)

	doRequest(t, ts, http.MethodPost, "/api/todos", map[string]string{"text": "implicit"},
		map[string]string{"X-User-Email": "implicit@example.com"})

	res, _ := doRequest(t, ts, http.MethodGet, "/api/users/implicit@example.com", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("identity header did not create the user: status %d", res.StatusCode)
	}
}

func TestIdentityHeaderRejectsBadEmail(t *testing.T) {
	ts, _ := newTestServer(t)

	res, _ := doRequest(t, ts, http.MethodGet, "/api/todos", nil,
		map[string]string{"X-User-Email": "not-an-email"})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}
