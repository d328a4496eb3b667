package users

import "time"

type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Email        string    `json:"email,omitempty" db:"email"`
	FullName     string    `json:"full_name,omitempty" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	Disabled     bool      `json:"disabled" db:"disabled"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type SignupInput struct {
	Username string
	Password string
	Email    string
	FullName string
}
