// Package account holds the per-request account session that scopes every
// ledger operation.
package account

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNoSession is returned when an operation runs without an authenticated account.
var ErrNoSession = errors.New("account session required")

// Session identifies the signed-in account. It is built once per
// authenticated request and passed explicitly to every service call.
type Session struct {
	AccountID uuid.UUID
	Email     string
}

// NewSession creates a session for an account
func NewSession(accountID uuid.UUID, email string) *Session {
	return &Session{AccountID: accountID, Email: email}
}

// Validate returns ErrNoSession for a nil or anonymous session
func (s *Session) Validate() error {
	if s == nil || s.AccountID == uuid.Nil {
		return ErrNoSession
	}
	return nil
}
