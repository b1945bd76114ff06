package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// requestOwner decides the owner scope for a task operation: a resolved
// identity wins, then an explicit userId from the query or body, otherwise the
// request is anonymous and scoped to unowned tasks.
func requestOwner(r *http.Request, explicit string) (*uuid.UUID, error) {
	if u := getUserFromRequest(r); u != nil {
		id := u.ID
		return &id, nil
	}
	if explicit == "" {
		return nil, nil
	}
	id, err := uuid.Parse(explicit)
	if err != nil {
		return nil, errors.New("userId must be a valid id")
	}
	return &id, nil
}

func (app *application) getTasksHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := requestOwner(r, r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	todos, err := app.store.listTodos(r.Context(), owner)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	type taskView struct {
		ID        uuid.UUID `json:"id"`
		Title     string    `json:"title"`
		Completed bool      `json:"completed"`
	}
	tasks := make([]taskView, 0, len(todos))
	for _, t := range todos {
		tasks = append(tasks, taskView{ID: t.ID, Title: t.Text, Completed: t.Completed})
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (app *application) getTodosHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := requestOwner(r, r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	todos, err := app.store.listTodos(r.Context(), owner)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (app *application) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Text   string `json:"text"`
		UserID string `json:"userId"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	input.Text = strings.TrimSpace(input.Text)
	v := newValidator()
	v.checkTodoText(input.Text)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	owner, err := requestOwner(r, input.UserID)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	t, err := app.store.createTodo(r.Context(), input.Text, owner)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (app *application) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, errors.New("task not found"), http.StatusNotFound)
		return
	}
	var patch todoPatch
	err = json.NewDecoder(r.Body).Decode(&patch)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if patch.Text != nil {
		trimmed := strings.TrimSpace(*patch.Text)
		patch.Text = &trimmed
		v := newValidator()
		v.checkTodoText(trimmed)
		if v.hasErrors() {
			writeError(w, v.toError(), http.StatusBadRequest)
			return
		}
	}
	t, err := app.store.updateTodo(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, errNotFound):
			writeError(w, errors.New("task not found"), http.StatusNotFound)
		default:
			log.Println(err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, errors.New("task not found"), http.StatusNotFound)
		return
	}
	err = app.store.deleteTodo(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, errNotFound):
			writeError(w, errors.New("task not found"), http.StatusNotFound)
		default:
			log.Println(err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
