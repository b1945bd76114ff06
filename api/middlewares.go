package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	phaseContextKey contextKey = "phase"
)

func getUserFromRequest(r *http.Request) *user {
	u, _ := r.Context().Value(userContextKey).(*user)
	return u
}

func getPhaseFromRequest(r *http.Request) phase {
	p, ok := r.Context().Value(phaseContextKey).(phase)
	if !ok {
		return phaseStarting
	}
	return p
}

// withPhase snapshots the lifecycle phase into the request context so
// handlers never consult shared mutable state themselves.
func (app *application) withPhase(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), phaseContextKey, app.lifecycle.current())
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// requireReady rejects API traffic until the store is usable.
func (app *application) requireReady(next http.HandlerFunc) http.HandlerFunc {
	return app.withPhase(func(w http.ResponseWriter, r *http.Request) {
		switch p := getPhaseFromRequest(r); p {
		case phaseReady:
			next.ServeHTTP(w, r)
		case phaseFailed:
			writeError(w, errors.New("database connection failed"), http.StatusServiceUnavailable)
		default:
			writeError(w, errors.New("database not ready"), http.StatusServiceUnavailable)
		}
	})
}

// identity resolves the caller, preferring a bearer token over the
// X-User-Email header. A well formed header for an unseen address creates the
// user on the spot. Requests carrying neither stay anonymous.
func (app *application) identity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeError(w, errors.New("invalid Authorization header"), http.StatusUnauthorized)
				return
			}
			u, err := app.userFromToken(r.Context(), parts[1])
			if err != nil {
				log.Println(err)
				writeError(w, errors.New("invalid token"), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		email := strings.TrimSpace(r.Header.Get("X-User-Email"))
		if email == "" {
			next.ServeHTTP(w, r)
			return
		}
		v := newValidator()
		v.checkEmail(email)
		if v.hasErrors() {
			writeError(w, v.toError(), http.StatusBadRequest)
			return
		}
		u, err := app.store.resolveUser(r.Context(), email)
		if err != nil {
			log.Println(err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (app *application) userFromToken(ctx context.Context, tokenStr string) (*user, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(app.config.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	sub, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("token missing user_id claim")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, err
	}
	u, err := app.store.getUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, errors.New("user no longer exists")
		}
		return nil, err
	}
	return u, nil
}

func (app *application) rateLimit(next http.Handler) http.HandlerFunc {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	var (
		mu      sync.Mutex
		clients = make(map[string]client)
	)
	go func() {
		for {
			time.Sleep(time.Minute)
			func() {
				mu.Lock()
				defer mu.Unlock()
				for ip, c := range clients {
					if time.Since(c.lastSeen) >= 3*time.Minute {
						delete(clients, ip)
					}
				}
			}()
		}
	}()
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			log.Println(err)
			writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
			return
		}
		mu.Lock()
		c, ok := clients[ip]
		if !ok {
			c = client{
				limiter: rate.NewLimiter(rate.Limit(app.config.limiter.maxRequestPerSecond), app.config.limiter.burst),
			}
		}
		c.lastSeen = time.Now()
		clients[ip] = c
		allowed := c.limiter.Allow()
		mu.Unlock()
		if !allowed {
			writeError(w, errors.New("rate limit exceeded"), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (app *application) enableCORS(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		origin := r.Header.Get("Origin")
		if origin != "" {
			for _, o := range app.config.cors.trustedOrigins {
				if origin == o || o == "*" {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					// preflight request
					if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
						w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, POST, PATCH, DELETE")
						w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-User-Email")
						w.WriteHeader(http.StatusOK)
						return
					}
					break
				}
			}
		}
		next.ServeHTTP(w, r)
	}
}
