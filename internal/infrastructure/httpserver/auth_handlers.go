package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/lumenops/identity/internal/core/domain/account"
)

// Auth handlers
func (s *Server) signup(c echo.Context) error {
	var req account.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	acct, err := s.signupSvc.Signup(c.Request().Context(), &req)
	if err != nil {
		signupsTotal.WithLabelValues("failure").Inc()
		switch {
		case errors.Is(err, account.ErrDuplicateEmail):
			return echo.NewHTTPError(http.StatusConflict, "email address already in use")
		case errors.Is(err, account.ErrDuplicateUsername):
			return echo.NewHTTPError(http.StatusConflict, "username already taken")
		case errors.Is(err, account.ErrUsernameGenerationFailed):
			return echo.NewHTTPError(http.StatusConflict, "could not assign a username")
		case errors.Is(err, account.ErrDeliveryFailed):
			return echo.NewHTTPError(http.StatusBadGateway, "could not deliver confirmation email")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	signupsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"account": acct,
		"display": s.display.Resolve(c.Request().Context(), acct),
	})
}

func (s *Server) login(c echo.Context) error {
	var req account.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	acct, err := s.authenticator.Authenticate(c.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		loginsTotal.WithLabelValues("failure").Inc()
		// The distinction between an unknown identifier and a wrong
		// secret stays in the logs; the response never reveals which
		// occurred.
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"identifier": req.Identifier}).WithError(err).Info("login rejected")
		}
		if errors.Is(err, account.ErrEmailNotVerified) {
			return echo.NewHTTPError(http.StatusForbidden, "email address not verified")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, err := s.issueAccessToken(acct)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}

	loginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(s.jwtConfig.AccessTokenTTL.Seconds()),
		"display":      s.display.Resolve(c.Request().Context(), acct),
	})
}

func (s *Server) issueAccessToken(acct *account.Account) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   acct.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.AccessTokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}

func (s *Server) confirmEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		var req struct {
			Token string `json:"token"`
		}
		if err := c.Bind(&req); err != nil || req.Token == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "missing confirmation token")
		}
		token = req.Token
	}

	email, err := s.tokenSvc.Validate(c.Request().Context(), token)
	if err != nil {
		confirmationsTotal.WithLabelValues("failure").Inc()
		switch {
		case errors.Is(err, account.ErrTokenExpired):
			return echo.NewHTTPError(http.StatusGone, "confirmation token expired")
		case errors.Is(err, account.ErrTokenConsumed):
			return echo.NewHTTPError(http.StatusConflict, "confirmation token already used")
		case errors.Is(err, account.ErrTokenNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "confirmation token not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "confirmation failed")
		}
	}

	confirmationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"address":  email.Address,
		"verified": email.Verified,
		"primary":  email.Primary,
	})
}

func (s *Server) resendConfirmation(c echo.Context) error {
	var req struct {
		Address string `json:"address"`
	}
	if err := c.Bind(&req); err != nil || req.Address == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing address")
	}

	if err := s.signupSvc.ResendConfirmation(c.Request().Context(), req.Address); err != nil {
		// Report success for unknown addresses as well; a different
		// answer would confirm which addresses exist.
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"address": req.Address}).WithError(err).Info("resend confirmation failed")
		}
	}

	return c.JSON(http.StatusAccepted, map[string]string{"status": "accepted"})
}
