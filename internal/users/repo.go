package users

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

// Repo defines persistence operations for user accounts. Upsert refreshes
// OAuth profile fields on every login but never touches the plan tier.
type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
}
