// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. Salt and Verifier come from the client; the password
// itself never reaches the server.
type User struct {
	ID        string
	UserName  string
	FullName  string
	Email     string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}
