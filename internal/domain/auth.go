package domain

import "time"

// Token describes an issued session token.
type Token struct {
	Value     string
	UserID    string
	ExpiresAt time.Time
}
