package client

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownTask is reported when a mutation targets an id that is not in the
// local list.
var ErrUnknownTask = errors.New("unknown task")

// MutationState tracks a single optimistic mutation. Every mutation starts as
// Applied the moment the local list changes; it ends Confirmed once the server
// agrees or Reverted after the snapshot is restored.
type MutationState int

const (
	MutationApplied MutationState = iota + 1
	MutationConfirmed
	MutationReverted
)

func (s MutationState) String() string {
	switch s {
	case MutationApplied:
		return "applied"
	case MutationConfirmed:
		return "confirmed"
	case MutationReverted:
		return "reverted"
	}
	return "unknown"
}

// Mutation is the outcome of one optimistic operation.
type Mutation struct {
	State MutationState
	Err   error
}

// TaskList is a local view of the server's todo list with optimistic
// mutations: changes are applied locally first, then confirmed with the API;
// a failed confirmation restores the pre-mutation snapshot. Mutations are
// serialized per list; there is no automatic retry.
type TaskList struct {
	mu    sync.Mutex
	api   *Client
	todos []Todo
}

func NewTaskList(api *Client) *TaskList {
	return &TaskList{api: api}
}

// Refresh replaces the local list with the server's, newest first.
func (l *TaskList) Refresh(ctx context.Context) error {
	todos, err := l.api.Todos(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.todos = todos
	return nil
}

// Todos returns a copy of the current local list.
func (l *TaskList) Todos() []Todo {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Todo, len(l.todos))
	copy(out, l.todos)
	return out
}

// Add inserts the task at the head of the list under a placeholder id, then
// swaps in the server's representation on confirmation.
func (l *TaskList) Add(ctx context.Context, text string) Mutation {
	placeholder := Todo{ID: uuid.New(), Text: text}
	return l.mutate(
		func() {
			l.todos = append([]Todo{placeholder}, l.todos...)
		},
		func() error {
			created, err := l.api.CreateTodo(ctx, text)
			if err != nil {
				return err
			}
			l.replace(placeholder.ID, *created)
			return nil
		},
	)
}

// Toggle flips the completion state of the task with the given id.
func (l *TaskList) Toggle(ctx context.Context, id uuid.UUID) Mutation {
	t, ok := l.find(id)
	if !ok {
		return Mutation{State: MutationReverted, Err: ErrUnknownTask}
	}
	next := !t.Completed
	return l.mutate(
		func() {
			for i := range l.todos {
				if l.todos[i].ID == id {
					l.todos[i].Completed = next
				}
			}
		},
		func() error {
			updated, err := l.api.UpdateTodo(ctx, id, TodoPatch{Completed: &next})
			if err != nil {
				return err
			}
			l.replace(id, *updated)
			return nil
		},
	)
}

// Remove deletes the task with the given id.
func (l *TaskList) Remove(ctx context.Context, id uuid.UUID) Mutation {
	if _, ok := l.find(id); !ok {
		return Mutation{State: MutationReverted, Err: ErrUnknownTask}
	}
	return l.mutate(
		func() {
			kept := l.todos[:0]
			for _, t := range l.todos {
				if t.ID != id {
					kept = append(kept, t)
				}
			}
			l.todos = kept
		},
		func() error {
			return l.api.DeleteTodo(ctx, id)
		},
	)
}

// mutate runs one optimistic mutation under the list lock: snapshot, apply,
// confirm; restore the snapshot when confirmation fails.
func (l *TaskList) mutate(apply func(), confirm func() error) Mutation {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := make([]Todo, len(l.todos))
	copy(snapshot, l.todos)

	apply()
	m := Mutation{State: MutationApplied}

	if err := confirm(); err != nil {
		l.todos = snapshot
		m.State = MutationReverted
		m.Err = err
		return m
	}
	m.State = MutationConfirmed
	return m
}

func (l *TaskList) find(id uuid.UUID) (Todo, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.todos {
		if t.ID == id {
			return t, true
		}
	}
	return Todo{}, false
}

// replace is called from inside mutate's confirm callback, with the list lock
// already held.
func (l *TaskList) replace(id uuid.UUID, with Todo) {
	for i := range l.todos {
		if l.todos[i].ID == id {
			l.todos[i] = with
		}
	}
}
