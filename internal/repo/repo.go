package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Flashover/internal/calc/input"
)

var ErrNotFound = errors.New("repo: not found")

// InputSet is a named set of calculator fields saved by a user.
type InputSet struct {
	ID         int          `json:"id"`
	Name       string       `json:"name"`
	Calculator string       `json:"calculator"`
	Fields     input.Fields `json:"fields"`
	Updated    time.Time    `json:"updated"`
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetByLogin(ctx context.Context, login string) (int, string, error)

	SaveInputs(ctx context.Context, userID int, set InputSet) (int, error)
	UpdateInputs(ctx context.Context, userID int, set InputSet) error
	GetInputs(ctx context.Context, userID, id int) (InputSet, error)
	ListInputs(ctx context.Context, userID int) ([]InputSet, error)
	DeleteInputs(ctx context.Context, userID, id int) error
}

// Schema creates the tables the repository uses.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id       SERIAL PRIMARY KEY,
	login    TEXT UNIQUE NOT NULL,
	email    TEXT UNIQUE NOT NULL,
	password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS input_sets (
	id         SERIAL PRIMARY KEY,
	user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	calculator TEXT NOT NULL,
	fields     JSONB NOT NULL,
	updated    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS input_sets_user ON input_sets(user_id);
`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

func (r *PostgresRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

// GetByLogin returns the user id and password hash. An unknown login
// yields id 0 and an empty hash.
func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresRepository) SaveInputs(ctx context.Context, userID int, set InputSet) (int, error) {
	fields, err := json.Marshal(set.Fields)
	if err != nil {
		return 0, err
	}
	var id int
	query := "INSERT INTO input_sets (user_id, name, calculator, fields) VALUES ($1, $2, $3, $4) RETURNING id"
	err = r.db.QueryRowContext(ctx, query, userID, set.Name, set.Calculator, fields).Scan(&id)
	return id, err
}

func (r *PostgresRepository) UpdateInputs(ctx context.Context, userID int, set InputSet) error {
	fields, err := json.Marshal(set.Fields)
	if err != nil {
		return err
	}
	query := "UPDATE input_sets SET name=$1, calculator=$2, fields=$3, updated=now() WHERE id=$4 AND user_id=$5"
	res, err := r.db.ExecContext(ctx, query, set.Name, set.Calculator, fields, set.ID, userID)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *PostgresRepository) GetInputs(ctx context.Context, userID, id int) (InputSet, error) {
	query := "SELECT id, name, calculator, fields, updated FROM input_sets WHERE id=$1 AND user_id=$2"
	set, err := scanSet(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return InputSet{}, ErrNotFound
	}
	return set, err
}

func (r *PostgresRepository) ListInputs(ctx context.Context, userID int) ([]InputSet, error) {
	query := "SELECT id, name, calculator, fields, updated FROM input_sets WHERE user_id=$1 ORDER BY updated DESC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sets := []InputSet{}
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

func (r *PostgresRepository) DeleteInputs(ctx context.Context, userID, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM input_sets WHERE id=$1 AND user_id=$2", id, userID)
	if err != nil {
		return err
	}
	return affected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSet(s scanner) (InputSet, error) {
	var set InputSet
	var fields []byte
	if err := s.Scan(&set.ID, &set.Name, &set.Calculator, &fields, &set.Updated); err != nil {
		return InputSet{}, err
	}
	if err := json.Unmarshal(fields, &set.Fields); err != nil {
		return InputSet{}, fmt.Errorf("input set %d: %w", set.ID, err)
	}
	return set, nil
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
