package model

import (
	"context"
	"strings"
	"time"
)

// EmailStatus describes a user's mailing subscription state.
type EmailStatus string

const (
	EmailStatusActive       EmailStatus = "active"
	EmailStatusUnsubscribed EmailStatus = "unsubscribed"
	EmailStatusBounced      EmailStatus = "bounced"
)

// UserStore defines persistence operations for user identity records.
type UserStore interface {
	Upsert(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, whopUserID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	SetEmailStatus(ctx context.Context, email string, status EmailStatus) error
	CountByStatus(ctx context.Context, status EmailStatus) (int64, error)
}

// User represents the last-known identity of a member, keyed by the
// provider-issued user id. Records are never deleted.
type User struct {
	WhopUserID     string
	Email          string
	Username       string
	Name           string
	EmailStatus    EmailStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
	UnsubscribedAt *time.Time
}

// FirstName returns the part of Name before the first space.
func (u User) FirstName() string {
	first, _, _ := strings.Cut(u.Name, " ")
	return first
}

// LastName returns everything after the first space in Name.
func (u User) LastName() string {
	_, rest, _ := strings.Cut(u.Name, " ")
	return rest
}

// DisplayName prefers the full name, falls back to the username.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
