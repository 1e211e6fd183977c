package ports

import (
	"context"

	"github.com/keyforge/licensing-system/internal/core/domain"
)

// AuthorizeResult is returned by a successful Authorize. Registered is true
// when the call created the account (first use of the login).
type AuthorizeResult struct {
	TimeLeft   int64
	Registered bool
}

// LicenseService defines the account-binding and balance-accounting
// operations.
type LicenseService interface {
	// Authorize admits a login/hwid pairing: first use registers the account
	// with the default grant, a repeat with the bound hwid is an idempotent
	// no-op, anything else is rejected.
	Authorize(ctx context.Context, login, hwid string) (*AuthorizeResult, error)
	// Consume deducts minutes from the balance. The hwid gate is checked
	// before the balance so a wrong-hwid caller can never observe it.
	Consume(ctx context.Context, login, hwid string, minutes int64) (int64, error)
	// SetTime overwrites the balance with the given value.
	SetTime(ctx context.Context, login, hwid string, minutes int64) (int64, error)
	// Logout releases the account, freeing both login and hwid.
	Logout(ctx context.Context, login string) error
	// GetAccount returns the current account view (admin inspection).
	GetAccount(ctx context.Context, login string) (*domain.Account, error)
}
