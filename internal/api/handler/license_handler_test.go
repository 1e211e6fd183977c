package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/keyforge/licensing-system/internal/core/domain"
	"github.com/keyforge/licensing-system/internal/core/ports"
)

type stubLicenseService struct {
	authorizeFn func(ctx context.Context, login, hwid string) (*ports.AuthorizeResult, error)
	consumeFn   func(ctx context.Context, login, hwid string, minutes int64) (int64, error)
	setTimeFn   func(ctx context.Context, login, hwid string, minutes int64) (int64, error)
	logoutFn    func(ctx context.Context, login string) error
	getFn       func(ctx context.Context, login string) (*domain.Account, error)
}

func (s *stubLicenseService) Authorize(ctx context.Context, login, hwid string) (*ports.AuthorizeResult, error) {
	return s.authorizeFn(ctx, login, hwid)
}

func (s *stubLicenseService) Consume(ctx context.Context, login, hwid string, minutes int64) (int64, error) {
	return s.consumeFn(ctx, login, hwid, minutes)
}

func (s *stubLicenseService) SetTime(ctx context.Context, login, hwid string, minutes int64) (int64, error) {
	return s.setTimeFn(ctx, login, hwid, minutes)
}

func (s *stubLicenseService) Logout(ctx context.Context, login string) error {
	return s.logoutFn(ctx, login)
}

func (s *stubLicenseService) GetAccount(ctx context.Context, login string) (*domain.Account, error) {
	return s.getFn(ctx, login)
}

func newTestContext(t *testing.T, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLicenseHandler_Authorize_Success(t *testing.T) {
	stub := &stubLicenseService{
		authorizeFn: func(ctx context.Context, login, hwid string) (*ports.AuthorizeResult, error) {
			if login != "alice" || hwid != "HW1" {
				t.Fatalf("unexpected args: %s %s", login, hwid)
			}
			return &ports.AuthorizeResult{TimeLeft: 60, Registered: true}, nil
		},
	}
	h := NewLicenseHandler(stub)

	c, rec := newTestContext(t, "/authorize", `{"login":"alice","hwid":"HW1"}`)
	if err := h.Authorize(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "ok" || resp["timeLeft"] != float64(60) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestLicenseHandler_Authorize_MissingHWID(t *testing.T) {
	stub := &stubLicenseService{
		authorizeFn: func(ctx context.Context, login, hwid string) (*ports.AuthorizeResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewLicenseHandler(stub)

	c, _ := newTestContext(t, "/authorize", `{"login":"alice"}`)
	err := h.Authorize(c)
	var he *echo.HTTPError
	if err == nil || !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestLicenseHandler_Authorize_DomainErrorPassthrough(t *testing.T) {
	stub := &stubLicenseService{
		authorizeFn: func(ctx context.Context, login, hwid string) (*ports.AuthorizeResult, error) {
			return nil, domain.ErrHWIDTaken
		},
	}
	h := NewLicenseHandler(stub)

	c, _ := newTestContext(t, "/authorize", `{"login":"bob","hwid":"HW1"}`)
	if err := h.Authorize(c); err != domain.ErrHWIDTaken {
		t.Fatalf("expected ErrHWIDTaken passthrough, got %v", err)
	}
}

func TestLicenseHandler_Consume_Success(t *testing.T) {
	stub := &stubLicenseService{
		consumeFn: func(ctx context.Context, login, hwid string, minutes int64) (int64, error) {
			if minutes != 20 {
				t.Fatalf("unexpected minutes: %d", minutes)
			}
			return 40, nil
		},
	}
	h := NewLicenseHandler(stub)

	c, rec := newTestContext(t, "/consume", `{"login":"alice","hwid":"HW1","minutes":20}`)
	if err := h.Consume(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["timeLeft"] != float64(40) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestLicenseHandler_Consume_MinutesRequired(t *testing.T) {
	stub := &stubLicenseService{
		consumeFn: func(ctx context.Context, login, hwid string, minutes int64) (int64, error) {
			t.Fatalf("should not be called")
			return 0, nil
		},
	}
	h := NewLicenseHandler(stub)

	c, _ := newTestContext(t, "/consume", `{"login":"alice","hwid":"HW1"}`)
	err := h.Consume(c)
	var he *echo.HTTPError
	if err == nil || !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError for missing minutes, got %v", err)
	}
}

func TestLicenseHandler_Consume_ZeroMinutesAccepted(t *testing.T) {
	called := false
	stub := &stubLicenseService{
		consumeFn: func(ctx context.Context, login, hwid string, minutes int64) (int64, error) {
			called = true
			if minutes != 0 {
				t.Fatalf("expected 0 minutes, got %d", minutes)
			}
			return 60, nil
		},
	}
	h := NewLicenseHandler(stub)

	c, rec := newTestContext(t, "/consume", `{"login":"alice","hwid":"HW1","minutes":0}`)
	if err := h.Consume(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("zero minutes is a legal deduction and must reach the service")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLicenseHandler_Consume_NegativeMinutesRejected(t *testing.T) {
	stub := &stubLicenseService{
		consumeFn: func(ctx context.Context, login, hwid string, minutes int64) (int64, error) {
			t.Fatalf("should not be called")
			return 0, nil
		},
	}
	h := NewLicenseHandler(stub)

	c, _ := newTestContext(t, "/consume", `{"login":"alice","hwid":"HW1","minutes":-5}`)
	err := h.Consume(c)
	var he *echo.HTTPError
	if err == nil || !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError for negative minutes, got %v", err)
	}
}

func TestLicenseHandler_SetTime_NegativeMinutesAccepted(t *testing.T) {
	stub := &stubLicenseService{
		setTimeFn: func(ctx context.Context, login, hwid string, minutes int64) (int64, error) {
			if minutes != -30 {
				t.Fatalf("expected -30, got %d", minutes)
			}
			return -30, nil
		},
	}
	h := NewLicenseHandler(stub)

	c, rec := newTestContext(t, "/set-time", `{"login":"alice","hwid":"HW1","minutes":-30}`)
	if err := h.SetTime(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["login"] != "alice" || resp["timeLeft"] != float64(-30) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestLicenseHandler_Logout_Success(t *testing.T) {
	stub := &stubLicenseService{
		logoutFn: func(ctx context.Context, login string) error {
			if login != "alice" {
				t.Fatalf("unexpected login: %s", login)
			}
			return nil
		},
	}
	h := NewLicenseHandler(stub)

	c, rec := newTestContext(t, "/logout", `{"login":"alice"}`)
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLicenseHandler_Logout_NotFoundPassthrough(t *testing.T) {
	stub := &stubLicenseService{
		logoutFn: func(ctx context.Context, login string) error {
			return domain.ErrAccountNotFound
		},
	}
	h := NewLicenseHandler(stub)

	c, _ := newTestContext(t, "/logout", `{"login":"ghost"}`)
	if err := h.Logout(c); err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound passthrough, got %v", err)
	}
}

func TestLicenseHandler_InvalidPayload(t *testing.T) {
	stub := &stubLicenseService{
		authorizeFn: func(ctx context.Context, login, hwid string) (*ports.AuthorizeResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewLicenseHandler(stub)

	c, _ := newTestContext(t, "/authorize", "not-json")
	err := h.Authorize(c)
	var he *echo.HTTPError
	if err == nil || !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}
