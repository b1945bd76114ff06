package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
)

// createUserHandler has create-or-get semantics: posting a known email returns
// the existing user rather than a conflict.
func (app *application) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	input.Email = strings.TrimSpace(input.Email)
	v := newValidator()
	v.checkEmail(input.Email)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	u, err := app.store.resolveUser(r.Context(), input.Email)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}{
		ID:    u.ID.String(),
		Email: u.Email,
	})
}

func (app *application) getUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := app.store.listUsers(r.Context())
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (app *application) getUserHandler(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PathValue("email"))
	u, err := app.store.getUserByEmail(r.Context(), email)
	if err != nil {
		switch {
		case errors.Is(err, errNotFound):
			writeError(w, errors.New("user not found"), http.StatusNotFound)
		default:
			log.Println(err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, u)
}
