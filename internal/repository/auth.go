package repository

import (
	"database/sql"
	"errors"

	"authservice/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUserNotFound is returned when no row matches the username.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned when an insert hits the unique
	// constraint on username. The pre-check in the service is best-effort;
	// this is the authoritative signal under concurrent registrations.
	ErrDuplicateUsername = errors.New("username already exists")
)

// uniqueViolation is the PostgreSQL error code for unique_violation.
const uniqueViolation = pq.ErrorCode("23505")

type AuthRepository interface {
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
}

type authRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewAuthRepository(db *sqlx.DB, log *logrus.Logger) AuthRepository {
	return &authRepository{db: db, log: log}
}

func (r *authRepository) CreateUser(user *models.User) error {
	query := `INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	err := r.db.QueryRowx(query, user.Username, user.PasswordHash).StructScan(user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateUsername
		}
		r.log.Errorf("Failed to insert user: %v", err)
		return err
	}
	return nil
}

func (r *authRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	err := r.db.Get(&user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		r.log.Errorf("Failed to query user by username: %v", err)
		return nil, err
	}
	return &user, nil
}
