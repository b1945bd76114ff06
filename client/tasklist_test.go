package client

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestTaskListAddConfirmed(t *testing.T) {
	_, c := newFakeAPI(t)
	list := NewTaskList(c)
	ctx := context.Background()

	m := list.Add(ctx, "Buy milk")
	if m.State != MutationConfirmed {
		t.Fatalf("got state %s, want confirmed (err: %v)", m.State, m.Err)
	}

	todos := list.Todos()
	if len(todos) != 1 || todos[0].Text != "Buy milk" {
		t.Fatalf("local list wrong: %+v", todos)
	}
	// the placeholder id was swapped for the server's
	fresh, err := c.Todos(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if todos[0].ID != fresh[0].ID {
		t.Errorf("local id %s does not match server id %s", todos[0].ID, fresh[0].ID)
	}
}

func TestTaskListAddReverted(t *testing.T) {
	f, c := newFakeAPI(t)
	list := NewTaskList(c)
	ctx := context.Background()

	f.fail()
	m := list.Add(ctx, "doomed")
	if m.State != MutationReverted {
		t.Fatalf("got state %s, want reverted", m.State)
	}
	if m.Err == nil {
		t.Fatal("reverted mutation carries no error")
	}
	if got := list.Todos(); len(got) != 0 {
		t.Errorf("snapshot not restored: %+v", got)
	}
}

func TestTaskListToggle(t *testing.T) {
	_, c := newFakeAPI(t)
	list := NewTaskList(c)
	ctx := context.Background()

	list.Add(ctx, "flip me")
	id := list.Todos()[0].ID

	m := list.Toggle(ctx, id)
	if m.State != MutationConfirmed {
		t.Fatalf("got state %s, want confirmed (err: %v)", m.State, m.Err)
	}
	if !list.Todos()[0].Completed {
		t.Error("toggle did not complete the task")
	}

	m = list.Toggle(ctx, id)
	if m.State != MutationConfirmed {
		t.Fatalf("got state %s, want confirmed", m.State)
	}
	if list.Todos()[0].Completed {
		t.Error("second toggle did not clear completion")
	}
}

func TestTaskListToggleRevertsOnFailure(t *testing.T) {
	f, c := newFakeAPI(t)
	list := NewTaskList(c)
	ctx := context.Background()

	list.Add(ctx, "stubborn")
	id := list.Todos()[0].ID

	f.fail()
	m := list.Toggle(ctx, id)
	if m.State != MutationReverted {
		t.Fatalf("got state %s, want reverted", m.State)
	}
	if list.Todos()[0].Completed {
		t.Error("failed toggle left the optimistic change in place")
	}
}

func TestTaskListRemove(t *testing.T) {
	f, c := newFakeAPI(t)
	list := NewTaskList(c)
	ctx := context.Background()

	list.Add(ctx, "short lived")
	id := list.Todos()[0].ID

	m := list.Remove(ctx, id)
	if m.State != MutationConfirmed {
		t.Fatalf("got state %s, want confirmed (err: %v)", m.State, m.Err)
	}
	if got := list.Todos(); len(got) != 0 {
		t.Errorf("task still present: %+v", got)
	}

	f.mu.Lock()
	remaining := len(f.todos)
	f.mu.Unlock()
	if remaining != 0 {
		t.Errorf("server still holds %d todos", remaining)
	}
}

func TestTaskListRemoveRevertsOnFailure(t *testing.T) {
	f, c := newFakeAPI(t)
	list := NewTaskList(c)
	ctx := context.Background()

	list.Add(ctx, "survivor")
	id := list.Todos()[0].ID

	f.fail()
	m := list.Remove(ctx, id)
	if m.State != MutationReverted {
		t.Fatalf("got state %s, want reverted", m.State)
	}
	if got := list.Todos(); len(got) != 1 {
		t.Errorf("snapshot not restored: %+v", got)
	}
}

func TestTaskListUnknownTask(t *testing.T) {
	_, c := newFakeAPI(t)
	list := NewTaskList(c)
	ctx := context.Background()

	m := list.Toggle(ctx, uuid.New())
	if !errors.Is(m.Err, ErrUnknownTask) {
		t.Errorf("got %v, want ErrUnknownTask", m.Err)
	}
	m = list.Remove(ctx, uuid.New())
	if !errors.Is(m.Err, ErrUnknownTask) {
		t.Errorf("got %v, want ErrUnknownTask", m.Err)
	}
}

func TestTaskListRefresh(t *testing.T) {
	_, c := newFakeAPI(t)
	ctx := context.Background()

	if _, err := c.CreateTodo(ctx, "pre-existing"); err != nil {
		t.Fatal(err)
	}

	list := NewTaskList(c)
	if err := list.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if got := list.Todos(); len(got) != 1 || got[0].Text != "pre-existing" {
		t.Errorf("refresh wrong: %+v", got)
	}
}
