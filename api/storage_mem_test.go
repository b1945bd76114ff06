package main

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStorage is an in-memory storage used by the handler tests. It mirrors
// the semantics of postgresStorage, including the email uniqueness guarantee
// that backs create-or-get.
type memStorage struct {
	mu    sync.Mutex
	now   time.Time
	todos []todo
	users []user
}

func newMemStorage() *memStorage {
	return &memStorage{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// tick hands out strictly increasing timestamps so creation order is total.
func (s *memStorage) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *memStorage) listTodos(ctx context.Context, owner *uuid.UUID) ([]todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []todo{}
	// insertion order is creation order, walk backwards for newest first
	for i := len(s.todos) - 1; i >= 0; i-- {
		t := s.todos[i]
		switch {
		case owner == nil && t.UserID == nil:
			out = append(out, t)
		case owner != nil && t.UserID != nil && *t.UserID == *owner:
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStorage) createTodo(ctx context.Context, text string, owner *uuid.UUID) (*todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	t := todo{
		ID:        uuid.New(),
		Text:      text,
		UserID:    owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.todos = append(s.todos, t)
	return &t, nil
}

func (s *memStorage) updateTodo(ctx context.Context, id uuid.UUID, patch todoPatch) (*todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID != id {
			continue
		}
		if patch.Text != nil {
			s.todos[i].Text = *patch.Text
		}
		if patch.Completed != nil {
			s.todos[i].Completed = *patch.Completed
		}
		s.todos[i].UpdatedAt = s.tick()
		t := s.todos[i]
		return &t, nil
	}
	return nil, errNotFound
}

func (s *memStorage) deleteTodo(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (s *memStorage) resolveUser(ctx context.Context, email string) (*user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Email == email {
			u := s.users[i]
			return &u, nil
		}
	}
	u := user{ID: uuid.New(), Email: email, CreatedAt: s.tick()}
	s.users = append(s.users, u)
	return &u, nil
}

func (s *memStorage) createUser(ctx context.Context, email string, passwordHash []byte) (*user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Email == email {
			return nil, errEmailTaken
		}
	}
	u := user{ID: uuid.New(), Email: email, PasswordHash: passwordHash, CreatedAt: s.tick()}
	s.users = append(s.users, u)
	return &u, nil
}

func (s *memStorage) getUserByEmail(ctx context.Context, email string) (*user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Email == email {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, errNotFound
}

func (s *memStorage) getUserByID(ctx context.Context, id uuid.UUID) (*user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, errNotFound
}

func (s *memStorage) listUsers(ctx context.Context) ([]user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []user{}
	for i := len(s.users) - 1; i >= 0; i-- {
		out = append(out, s.users[i])
	}
	return out, nil
}
