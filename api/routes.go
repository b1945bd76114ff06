package main

import (
	"net/http"
)

func composeRoutes(app *application) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthcheck", app.withPhase(app.healthCheckHandler))

	mux.HandleFunc("GET /api/tasks", app.requireReady(app.identity(app.getTasksHandler)))

	mux.HandleFunc("GET /api/todos", app.requireReady(app.identity(app.getTodosHandler)))
	mux.HandleFunc("POST /api/todos", app.requireReady(app.identity(app.createTodoHandler)))
	mux.HandleFunc("PATCH /api/todos/{id}", app.requireReady(app.identity(app.updateTodoHandler)))
	mux.HandleFunc("DELETE /api/todos/{id}", app.requireReady(app.identity(app.deleteTodoHandler)))

	mux.HandleFunc("POST /api/users", app.requireReady(app.createUserHandler))
	mux.HandleFunc("GET /api/users", app.requireReady(app.getUsersHandler))
	mux.HandleFunc("GET /api/users/{email}", app.requireReady(app.getUserHandler))

	mux.HandleFunc("POST /api/auth/register", app.requireReady(app.registerHandler))
	mux.HandleFunc("POST /api/auth/login", app.requireReady(app.loginHandler))

	mux.HandleFunc("/", app.fallbackHandler)

	var h http.Handler = mux
	if app.config.limiter.enabled {
		h = app.rateLimit(h)
	}
	return app.enableCORS(h)
}
