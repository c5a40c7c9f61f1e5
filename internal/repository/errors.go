package repository

import "github.com/jackc/pgx/v5"

// ErrNotFound is returned when a lookup matches no row. It aliases
// pgx.ErrNoRows so callers may test for either.
var ErrNotFound = pgx.ErrNoRows
