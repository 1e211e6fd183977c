package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyforge/licensing-system/internal/core/ports"
)

// SessionLister is the view the admin surface needs from the session cache.
type SessionLister interface {
	Active(ctx context.Context) ([]string, error)
}

// AdminHandler exposes read-only inspection endpoints for operators. All
// routes are behind the admin JWT middleware.
type AdminHandler struct {
	service  ports.LicenseService
	sessions SessionLister
}

func NewAdminHandler(service ports.LicenseService, sessions SessionLister) *AdminHandler {
	return &AdminHandler{service: service, sessions: sessions}
}

// GetAccount handles GET /admin/accounts/:login.
func (h *AdminHandler) GetAccount(c echo.Context) error {
	login := c.Param("login")
	if login == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "login is required")
	}

	acc, err := h.service.GetAccount(c.Request().Context(), login)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, accountResponse{
		Login:    acc.Login,
		HWID:     acc.HWID,
		TimeLeft: acc.TimeLeft,
	})
}

// ListSessions handles GET /admin/sessions.
func (h *AdminHandler) ListSessions(c echo.Context) error {
	logins, err := h.sessions.Active(c.Request().Context())
	if err != nil {
		return err
	}
	if logins == nil {
		logins = []string{}
	}

	return c.JSON(http.StatusOK, sessionsResponse{Count: len(logins), Logins: logins})
}
