package ports

import (
	"context"

	"github.com/keyforge/licensing-system/internal/core/domain"
)

// AccountRepository is the record-store port for accounts. Implementations
// must enforce uniqueness of both login and hwid at the store level, and
// ConsumeTime/SetTime must be atomic read-modify-write operations on a single
// record: two concurrent ConsumeTime calls for one login may never both
// succeed against the same starting balance.
type AccountRepository interface {
	FindByLogin(ctx context.Context, login string) (*domain.Account, error)
	// FindByHWID scans across logins for an account bound to the given hwid.
	FindByHWID(ctx context.Context, hwid string) (*domain.Account, error)
	// Create inserts a new account. A uniqueness violation is reported as
	// domain.ErrLoginExists or domain.ErrHWIDTaken depending on which
	// constraint rejected the insert.
	Create(ctx context.Context, acc *domain.Account) error
	// ConsumeTime atomically decrements time_left when the hwid matches and
	// the balance covers minutes, returning the updated account. On a miss it
	// reports ErrAccountNotFound, ErrHWIDMismatch, or ErrInsufficientBalance
	// (in that order of precedence).
	ConsumeTime(ctx context.Context, login, hwid string, minutes int64) (*domain.Account, error)
	// SetTime atomically overwrites time_left when the hwid matches. The
	// value is applied as given; negative balances are an administrative
	// override, not an error.
	SetTime(ctx context.Context, login, hwid string, minutes int64) (*domain.Account, error)
	Delete(ctx context.Context, login string) error
}
