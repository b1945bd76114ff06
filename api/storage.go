package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	errNotFound   = errors.New("not found")
	errEmailTaken = errors.New("a user with this email address already exists")
)

const queryTimeout = 5 * time.Second

// storage is the persistence boundary for todos and users. listTodos treats a
// nil owner as "rows with no owner", never as "all rows".
type storage interface {
	listTodos(ctx context.Context, owner *uuid.UUID) ([]todo, error)
	createTodo(ctx context.Context, text string, owner *uuid.UUID) (*todo, error)
	updateTodo(ctx context.Context, id uuid.UUID, patch todoPatch) (*todo, error)
	deleteTodo(ctx context.Context, id uuid.UUID) error

	resolveUser(ctx context.Context, email string) (*user, error)
	createUser(ctx context.Context, email string, passwordHash []byte) (*user, error)
	getUserByEmail(ctx context.Context, email string) (*user, error)
	getUserByID(ctx context.Context, id uuid.UUID) (*user, error)
	listUsers(ctx context.Context) ([]user, error)
}

func openDB(cfg config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConnections)
	db.SetMaxIdleConns(cfg.db.maxIdleConnections)
	db.SetConnMaxIdleTime(cfg.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

type postgresStorage struct {
	db *sql.DB
}

func newStorage(db *sql.DB) *postgresStorage {
	return &postgresStorage{db: db}
}

func (s *postgresStorage) listTodos(ctx context.Context, owner *uuid.UUID) ([]todo, error) {
	query := `SELECT id, text, completed, user_id, created_at, updated_at
			  FROM todos
			  WHERE ($1::uuid IS NULL AND user_id IS NULL) OR user_id = $1
			  ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []todo{}
	for rows.Next() {
		var t todo
		err := rows.Scan(&t.ID, &t.Text, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (s *postgresStorage) createTodo(ctx context.Context, text string, owner *uuid.UUID) (*todo, error) {
	query := `INSERT INTO todos (id, text, user_id)
			  VALUES ($1, $2, $3)
			  RETURNING id, text, completed, user_id, created_at, updated_at`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var t todo
	row := s.db.QueryRowContext(ctx, query, uuid.New(), text, owner)
	err := row.Scan(&t.ID, &t.Text, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *postgresStorage) updateTodo(ctx context.Context, id uuid.UUID, patch todoPatch) (*todo, error) {
	query := `UPDATE todos
			  SET text = COALESCE($2::text, text), completed = COALESCE($3::boolean, completed), updated_at = now()
			  WHERE id = $1
			  RETURNING id, text, completed, user_id, created_at, updated_at`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var t todo
	row := s.db.QueryRowContext(ctx, query, id, patch.Text, patch.Completed)
	err := row.Scan(&t.ID, &t.Text, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, errNotFound
		default:
			return nil, err
		}
	}
	return &t, nil
}

func (s *postgresStorage) deleteTodo(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM todos
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errNotFound
	}
	return nil
}

// resolveUser implements create-or-get. The unique constraint on email is the
// arbiter for concurrent first-contact requests: the losing insert returns no
// row and we fall back to a lookup.
func (s *postgresStorage) resolveUser(ctx context.Context, email string) (*user, error) {
	query := `INSERT INTO users (id, email)
			  VALUES ($1, $2)
			  ON CONFLICT (email) DO NOTHING
			  RETURNING id, email, created_at`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u user
	row := s.db.QueryRowContext(ctx, query, uuid.New(), email)
	err := row.Scan(&u.ID, &u.Email, &u.CreatedAt)
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return s.getUserByEmail(ctx, email)
}

func (s *postgresStorage) createUser(ctx context.Context, email string, passwordHash []byte) (*user, error) {
	query := `INSERT INTO users (id, email, password_hash)
			  VALUES ($1, $2, $3)
			  RETURNING id, email, created_at`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u user
	row := s.db.QueryRowContext(ctx, query, uuid.New(), email, passwordHash)
	err := row.Scan(&u.ID, &u.Email, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, errEmailTaken
		}
		return nil, err
	}
	u.PasswordHash = passwordHash
	return &u, nil
}

func (s *postgresStorage) getUserByEmail(ctx context.Context, email string) (*user, error) {
	query := `SELECT id, email, password_hash, created_at
			  FROM users
			  WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u user
	row := s.db.QueryRowContext(ctx, query, email)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, errNotFound
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *postgresStorage) getUserByID(ctx context.Context, id uuid.UUID) (*user, error) {
	query := `SELECT id, email, password_hash, created_at
			  FROM users
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u user
	row := s.db.QueryRowContext(ctx, query, id)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, errNotFound
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *postgresStorage) listUsers(ctx context.Context) ([]user, error) {
	query := `SELECT id, email, created_at
			  FROM users
			  ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []user{}
	for rows.Next() {
		var u user
		err := rows.Scan(&u.ID, &u.Email, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
