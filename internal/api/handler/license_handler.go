package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyforge/licensing-system/internal/api/metrics"
	"github.com/keyforge/licensing-system/internal/core/domain"
	"github.com/keyforge/licensing-system/internal/core/ports"
)

const statusOK = "ok"

// LicenseHandler exposes the four account operations over HTTP.
type LicenseHandler struct {
	service ports.LicenseService
}

func NewLicenseHandler(service ports.LicenseService) *LicenseHandler {
	return &LicenseHandler{service: service}
}

// Authorize handles POST /authorize.
//
// @Summary      Authorize a login/hwid pairing
// @Tags         license
// @Accept       json
// @Produce      json
// @Param        body  body      authorizeRequest  true  "Login and hardware fingerprint"
// @Success      200   {object}  balanceResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /authorize [post]
func (h *LicenseHandler) Authorize(c echo.Context) error {
	var req authorizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Authorize(c.Request().Context(), req.Login, req.HWID)
	if err != nil {
		metrics.AuthorizeAttemptsTotal.WithLabelValues(authorizeFailureLabel(err)).Inc()
		return err
	}

	label := statusOK
	if result.Registered {
		label = "registered"
	}
	metrics.AuthorizeAttemptsTotal.WithLabelValues(label).Inc()

	return c.JSON(http.StatusOK, balanceResponse{Status: statusOK, TimeLeft: result.TimeLeft})
}

// Logout handles POST /logout.
//
// @Summary      Release an account binding
// @Tags         license
// @Accept       json
// @Produce      json
// @Param        body  body      logoutRequest  true  "Login to release"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /logout [post]
func (h *LicenseHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Logout(c.Request().Context(), req.Login); err != nil {
		return err
	}
	metrics.LogoutsTotal.Inc()

	return c.JSON(http.StatusOK, statusResponse{Status: statusOK})
}

// Consume handles POST /consume.
//
// @Summary      Deduct minutes from an account balance
// @Tags         license
// @Accept       json
// @Produce      json
// @Param        body  body      consumeRequest  true  "Login, hwid, and minutes to deduct"
// @Success      200   {object}  balanceResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /consume [post]
func (h *LicenseHandler) Consume(c echo.Context) error {
	var req consumeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	timeLeft, err := h.service.Consume(c.Request().Context(), req.Login, req.HWID, *req.Minutes)
	if err != nil {
		if reason := consumeRejectionLabel(err); reason != "" {
			metrics.ConsumeRejectionsTotal.WithLabelValues(reason).Inc()
		}
		return err
	}
	metrics.MinutesConsumedTotal.Add(float64(*req.Minutes))

	return c.JSON(http.StatusOK, balanceResponse{Status: statusOK, TimeLeft: timeLeft})
}

// SetTime handles POST /set-time.
//
// @Summary      Overwrite an account balance
// @Tags         license
// @Accept       json
// @Produce      json
// @Param        body  body      setTimeRequest  true  "Login, hwid, and the new balance"
// @Success      200   {object}  setTimeResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /set-time [post]
func (h *LicenseHandler) SetTime(c echo.Context) error {
	var req setTimeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	timeLeft, err := h.service.SetTime(c.Request().Context(), req.Login, req.HWID, *req.Minutes)
	if err != nil {
		return err
	}
	metrics.BalanceSetTotal.Inc()

	return c.JSON(http.StatusOK, setTimeResponse{Status: statusOK, Login: req.Login, TimeLeft: timeLeft})
}

func authorizeFailureLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrHWIDMismatch):
		return "hwid_mismatch"
	case errors.Is(err, domain.ErrHWIDTaken):
		return "hwid_taken"
	default:
		return "error"
	}
}

func consumeRejectionLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrHWIDMismatch):
		return "hwid_mismatch"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	default:
		return ""
	}
}
