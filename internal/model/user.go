// Package model defines the data structures used throughout the application.
package model

// User is a registered member. Email is unique across all users.
type User struct {
	ID    int64  `json:"id"    db:"id"`
	Name  string `json:"name"  db:"name"`
	Email string `json:"email" db:"email"`
}

// UserPatch carries a partial update. Nil fields are left untouched.
type UserPatch struct {
	Name  *string
	Email *string
}
