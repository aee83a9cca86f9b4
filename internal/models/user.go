package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is a row in the users table. The password hash is never serialized
// into API responses.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

// Claims defines the structure of the JWT claims carried by a session token.
type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
