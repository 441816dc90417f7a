package user

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned by Create when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrDuplicateFavourite is returned when a favourite at the same
	// coordinates already exists.
	ErrDuplicateFavourite = errors.New("already favourited")
)

// Repository persists whole user documents. Save replaces the stored user
// atomically; concurrent writers follow last-write-wins.
type Repository interface {
	Create(ctx context.Context, u *User) error
	Load(ctx context.Context, id string) (*User, error)
	LoadByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, u *User) error
}
