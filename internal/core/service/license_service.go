package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/keyforge/licensing-system/internal/core/domain"
	"github.com/keyforge/licensing-system/internal/core/ports"
)

// SessionCache abstracts the active-session store (Redis). Errors from the
// cache are advisory: the authorization decision never depends on it.
type SessionCache interface {
	Track(ctx context.Context, login string, ttl time.Duration) error
	Release(ctx context.Context, login string) error
}

type licenseService struct {
	accounts ports.AccountRepository
	sessions SessionCache
	audit    ports.AuditRecorder
	log      zerolog.Logger
}

// NewLicenseService returns a LicenseService backed by the given record store.
func NewLicenseService(
	accounts ports.AccountRepository,
	sessions SessionCache,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) ports.LicenseService {
	return &licenseService{
		accounts: accounts,
		sessions: sessions,
		audit:    audit,
		log:      log,
	}
}

// Authorize admits a login/hwid pairing. A bound login must present its bound
// hwid; a fresh login goes through binding resolution and, if the hwid is
// free, is registered with the default grant.
func (s *licenseService) Authorize(ctx context.Context, login, hwid string) (*ports.AuthorizeResult, error) {
	if login == "" || hwid == "" {
		return nil, domain.ErrMissingField
	}

	// One retry covers the lost-race case: a concurrent Authorize created the
	// login between our point read and our insert, so the second pass
	// re-evaluates the request as if the record had existed all along.
	for attempt := 0; ; attempt++ {
		acc, err := s.accounts.FindByLogin(ctx, login)
		switch {
		case err == nil:
			if acc.HWID != hwid {
				s.log.Warn().Str("login", login).Msg("authorize rejected: hwid mismatch")
				return nil, domain.ErrHWIDMismatch
			}
			s.touchSession(ctx, login, acc.TimeLeft)
			return &ports.AuthorizeResult{TimeLeft: acc.TimeLeft}, nil
		case !errors.Is(err, domain.ErrAccountNotFound):
			return nil, err
		}

		res, err := s.resolveBinding(ctx, login, hwid)
		if errors.Is(err, domain.ErrLoginExists) && attempt == 0 {
			continue
		}
		if err != nil {
			return nil, err
		}
		return res, nil
	}
}

// resolveBinding decides whether a fresh login may bind the supplied hwid and
// performs the registration. The lookup-then-insert window is racy by nature;
// the store's uniqueness constraints are the authority, and their rejections
// are translated into domain outcomes rather than surfaced as faults.
func (s *licenseService) resolveBinding(ctx context.Context, login, hwid string) (*ports.AuthorizeResult, error) {
	_, err := s.accounts.FindByHWID(ctx, hwid)
	switch {
	case err == nil:
		s.log.Warn().Str("login", login).Msg("authorize rejected: hwid bound elsewhere")
		return nil, domain.ErrHWIDTaken
	case !errors.Is(err, domain.ErrAccountNotFound):
		return nil, err
	}

	acc := &domain.Account{Login: login, HWID: hwid, TimeLeft: domain.DefaultGrantMinutes}
	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, domain.ErrHWIDTaken) {
			// Lost the cross-login race on this hwid; the store's constraint
			// decided the winner.
			return nil, domain.ErrHWIDTaken
		}
		return nil, err
	}

	s.touchSession(ctx, login, acc.TimeLeft)
	s.recordAudit(login, hwid, domain.ActionRegister, acc.TimeLeft, acc.TimeLeft)
	s.log.Info().Str("login", login).Int64("time_left", acc.TimeLeft).Msg("account registered")

	return &ports.AuthorizeResult{TimeLeft: acc.TimeLeft, Registered: true}, nil
}

func (s *licenseService) Consume(ctx context.Context, login, hwid string, minutes int64) (int64, error) {
	if login == "" || hwid == "" || minutes < 0 {
		return 0, domain.ErrMissingField
	}

	acc, err := s.accounts.ConsumeTime(ctx, login, hwid, minutes)
	if err != nil {
		return 0, err
	}

	s.touchSession(ctx, login, acc.TimeLeft)
	s.recordAudit(login, hwid, domain.ActionConsume, minutes, acc.TimeLeft)
	s.log.Info().Str("login", login).Int64("minutes", minutes).Int64("time_left", acc.TimeLeft).Msg("time consumed")

	return acc.TimeLeft, nil
}

func (s *licenseService) SetTime(ctx context.Context, login, hwid string, minutes int64) (int64, error) {
	if login == "" || hwid == "" {
		return 0, domain.ErrMissingField
	}

	// Minutes is applied as-is, negative values included. This is the
	// administrative override contract: only Consume guards the balance.
	acc, err := s.accounts.SetTime(ctx, login, hwid, minutes)
	if err != nil {
		return 0, err
	}

	s.touchSession(ctx, login, acc.TimeLeft)
	s.recordAudit(login, hwid, domain.ActionSetTime, minutes, acc.TimeLeft)
	s.log.Info().Str("login", login).Int64("time_left", acc.TimeLeft).Msg("balance overwritten")

	return acc.TimeLeft, nil
}

// Logout deletes the account, releasing both the login and its hwid for
// re-registration. The call is keyed on login alone.
func (s *licenseService) Logout(ctx context.Context, login string) error {
	if login == "" {
		return domain.ErrMissingField
	}

	if err := s.accounts.Delete(ctx, login); err != nil {
		return err
	}

	if err := s.sessions.Release(ctx, login); err != nil {
		s.log.Warn().Err(err).Str("login", login).Msg("failed to release session")
	}
	s.recordAudit(login, "", domain.ActionLogout, 0, 0)
	s.log.Info().Str("login", login).Msg("account released")

	return nil
}

func (s *licenseService) GetAccount(ctx context.Context, login string) (*domain.Account, error) {
	if login == "" {
		return nil, domain.ErrMissingField
	}
	return s.accounts.FindByLogin(ctx, login)
}

// touchSession keeps the active-session marker in step with the balance: the
// marker expires when the remaining time would run out anyway.
func (s *licenseService) touchSession(ctx context.Context, login string, timeLeft int64) {
	var err error
	if timeLeft > 0 {
		err = s.sessions.Track(ctx, login, time.Duration(timeLeft)*time.Minute)
	} else {
		err = s.sessions.Release(ctx, login)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("login", login).Msg("session cache update failed")
	}
}

func (s *licenseService) recordAudit(login, hwid string, action domain.AuditAction, minutes, balance int64) {
	s.audit.Record(domain.AuditEvent{
		Login:     login,
		HWID:      hwid,
		Action:    action,
		Minutes:   minutes,
		Balance:   balance,
		Timestamp: time.Now().UTC(),
	})
}
