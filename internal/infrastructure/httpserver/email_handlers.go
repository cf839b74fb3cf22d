package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumenops/identity/internal/core/domain/account"
	"github.com/lumenops/identity/internal/infrastructure/httpserver/middleware"
)

func (s *Server) getOwnProfile(c echo.Context) error {
	accountID, err := middleware.AccountIDFromContext(c)
	if err != nil {
		return err
	}

	acct, err := s.accounts.GetByID(c.Request().Context(), accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "account not found")
	}

	emails, err := s.emailSvc.ListByAccount(c.Request().Context(), accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list addresses")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"account": acct,
		"display": s.display.Resolve(c.Request().Context(), acct),
		"emails":  emails,
	})
}

func (s *Server) changePassword(c echo.Context) error {
	accountID, err := middleware.AccountIDFromContext(c)
	if err != nil {
		return err
	}

	var req account.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.signupSvc.ChangePassword(c.Request().Context(), accountID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, account.ErrInvalidCredential) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.NoContent(http.StatusOK)
}

func (s *Server) listEmails(c echo.Context) error {
	accountID, err := middleware.AccountIDFromContext(c)
	if err != nil {
		return err
	}

	emails, err := s.emailSvc.ListByAccount(c.Request().Context(), accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list addresses")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"emails": emails,
		"count":  len(emails),
	})
}

func (s *Server) addEmail(c echo.Context) error {
	accountID, err := middleware.AccountIDFromContext(c)
	if err != nil {
		return err
	}

	var req account.AddEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	email, err := s.emailSvc.Add(c.Request().Context(), accountID, req.Address, req.MakePrimary)
	if err != nil {
		if errors.Is(err, account.ErrDuplicateEmail) {
			return echo.NewHTTPError(http.StatusConflict, "email address already in use")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// A freshly added address starts unverified; hand it a token right away
	// when the policy demands confirmation. Delivery failure is non-fatal,
	// the address stays and resend-confirmation covers the retry.
	if s.policy.ConfirmationRequired {
		token, err := s.tokenSvc.Issue(c.Request().Context(), email)
		if err != nil {
			if s.logger != nil {
				s.logger.WithError(err).Warn("failed to issue confirmation for added address")
			}
		} else if s.delivery != nil {
			if err := s.delivery.SendConfirmation(c.Request().Context(), email.Address, token.Token); err != nil && s.logger != nil {
				s.logger.WithError(err).Warn("failed to deliver confirmation for added address")
			}
		}
	}

	return c.JSON(http.StatusCreated, email)
}

func (s *Server) removeEmail(c echo.Context) error {
	accountID, err := middleware.AccountIDFromContext(c)
	if err != nil {
		return err
	}

	address := c.QueryParam("address")
	if address == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing address")
	}

	if err := s.emailSvc.Remove(c.Request().Context(), accountID, address); err != nil {
		switch {
		case errors.Is(err, account.ErrEmailNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "email address not found")
		case errors.Is(err, account.ErrCannotRemoveLastPrimary):
			return echo.NewHTTPError(http.StatusConflict, "set another primary address first")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	return c.NoContent(http.StatusOK)
}

func (s *Server) setPrimaryEmail(c echo.Context) error {
	accountID, err := middleware.AccountIDFromContext(c)
	if err != nil {
		return err
	}

	var req struct {
		Address string `json:"address"`
	}
	if err := c.Bind(&req); err != nil || req.Address == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing address")
	}

	if err := s.emailSvc.SetPrimary(c.Request().Context(), accountID, req.Address); err != nil {
		switch {
		case errors.Is(err, account.ErrEmailNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "email address not found")
		case errors.Is(err, account.ErrNotVerified):
			return echo.NewHTTPError(http.StatusConflict, "address must be verified first")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	return c.NoContent(http.StatusOK)
}
