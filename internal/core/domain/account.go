package domain

import "errors"

// DefaultGrantMinutes is the balance granted when a fresh login registers.
const DefaultGrantMinutes int64 = 60

var ErrMissingField = errors.New("missing required field")
var ErrAccountNotFound = errors.New("account not found")
var ErrHWIDMismatch = errors.New("hwid does not match the bound hardware")
var ErrHWIDTaken = errors.New("hwid already bound to another account")
var ErrLoginExists = errors.New("login already registered")
var ErrInsufficientBalance = errors.New("insufficient time balance")
var ErrStoreUnavailable = errors.New("record store unavailable")

// Account binds a login to exactly one hardware fingerprint and carries the
// remaining usage allowance in minutes.
//
// The login is the primary key and never changes. The hwid is set once at
// registration; a different hwid on a later request is a rejection, never a
// reassignment. TimeLeft is only ever decremented through Consume (which
// refuses to go below zero) or overwritten by SetTime.
type Account struct {
	Login    string `json:"login"`
	HWID     string `json:"hwid"`
	TimeLeft int64  `json:"timeLeft"`
}
