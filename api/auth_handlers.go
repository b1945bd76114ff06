package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// One message for unknown email and wrong password, so the response does not
// reveal which of the two it was.
var errBadCredentials = errors.New("invalid email or password")

func (app *application) registerHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	input.Email = strings.TrimSpace(input.Email)
	v := newValidator()
	v.checkEmail(input.Email)
	v.checkPassword(input.Password)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	u, err := app.store.createUser(r.Context(), input.Email, hash)
	if err != nil {
		switch {
		case errors.Is(err, errEmailTaken):
			writeError(w, err, http.StatusConflict)
		default:
			log.Println(err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		}
		return
	}
	if app.mailer != nil {
		go func() {
			err := app.mailer.sendWelcome(u.Email)
			if err != nil {
				log.Printf("welcome mail to %s failed: %v", u.Email, err)
			}
		}()
	}
	writeJSON(w, http.StatusCreated, struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}{
		ID:    u.ID.String(),
		Email: u.Email,
	})
}

func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	input.Email = strings.TrimSpace(input.Email)
	v := newValidator()
	v.checkCond(input.Email != "", "email", "must be provided")
	v.checkCond(input.Password != "", "password", "must be provided")
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	u, err := app.store.getUserByEmail(r.Context(), input.Email)
	if err != nil {
		switch {
		case errors.Is(err, errNotFound):
			writeError(w, errBadCredentials, http.StatusUnauthorized)
		default:
			log.Println(err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		}
		return
	}
	err = bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(input.Password))
	if err != nil {
		writeError(w, errBadCredentials, http.StatusUnauthorized)
		return
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID.String(),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(app.config.jwtSecret))
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Token string `json:"token"`
	}{
		ID:    u.ID.String(),
		Email: u.Email,
		Token: signed,
	})
}
