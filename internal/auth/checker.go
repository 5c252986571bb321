package auth

import "context"

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*LoginTestChecker)(nil)

//go:generate mockgen -source=$GOFILE -destination=../middleware/checker_mocks_test.go -package=middleware_test

// Checker resolves a session token. A token that is unknown or expired
// resolves to ok == false without an error.
type Checker interface {
	Identity(ctx context.Context, token string) (id Identity, ok bool, err error)
}
