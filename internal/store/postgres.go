package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/replydesk/internal/models"
)

// ==========================
// Postgres Store
// ==========================

// PostgresStore is the SQL backing for shared deployments. It satisfies the
// same Store contract as FileStore, so the Authenticator does not care which
// one is configured.
type PostgresStore struct {
	DB            *sql.DB
	adminPassword string
}

// Connect opens a postgres connection and returns a store over it.
func Connect(host, port, name, user, pass, adminPassword string) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		host, port, name, user, pass)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	return NewPostgresStore(db, adminPassword), nil
}

// NewPostgresStore wraps an existing connection (used by tests with sqlmock).
func NewPostgresStore(db *sql.DB, adminPassword string) *PostgresStore {
	return &PostgresStore{DB: db, adminPassword: adminPassword}
}

// Load creates the users table if needed and seeds the default admin record
// when the table is empty.
func (s *PostgresStore) Load(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'user'
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate users table: %w", err)
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := s.Create(ctx, "admin", s.adminPassword, "Administrator", models.RoleAdmin); err != nil {
		return fmt.Errorf("seed default admin: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT username, password_hash, display_name, role
		FROM users
		WHERE username = $1
	`, username).Scan(&user.Username, &user.PasswordHash, &user.DisplayName, &user.Role)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *PostgresStore) Create(ctx context.Context, username, password, displayName, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
	`, username, string(hash), displayName, role)

	if err != nil {
		// 23505 = unique_violation
		if e, ok := err.(*pq.Error); ok && e.Code == "23505" {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	return &models.User{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         role,
	}, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT username, password_hash, display_name, role
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.DisplayName, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
