package store

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

// Sentinel errors returned by the repositories. The HTTP layer maps them
// to status codes at the route boundary.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrForbidden         = errors.New("access denied")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Store bundles one repository per entity over a shared database handle.
type Store struct {
	Accounts  *Accounts
	Medicines *Medicines
	Stocks    *Stocks
	Commands  *Commands
	Demands   *Demands
}

// New constructs a Store.
func New(db *sqlx.DB) *Store {
	return &Store{
		Accounts:  &Accounts{db: db},
		Medicines: &Medicines{db: db},
		Stocks:    &Stocks{db: db},
		Commands:  &Commands{db: db},
		Demands:   &Demands{db: db},
	}
}
