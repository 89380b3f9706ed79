package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	ctxAccountID = "account_id"
	ctxRole      = "role"
)

type AccountView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func viewOf(a session.Account) AccountView {
	return AccountView{ID: a.AccountID(), Email: a.AccountEmail(), Name: a.AccountName(), Role: a.AccountRole()}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// AuthHTTP serves login, signup and logout for one realm and guards that
// realm's routes.
type AuthHTTP[A session.Account] struct {
	Sessions *session.Store[A]
	Tokens   *tokens.Issuer

	// RequiredRole, when set, is checked against the token's role.
	RequiredRole string
}

func (h *AuthHTTP[A]) realm() string { return h.Sessions.Realm() }

func (h *AuthHTTP[A]) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", h.realm()+".login")

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		l.Warn("login_failed", "status", 400, "reason", "email and password are required")
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	acc, err := h.Sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		return h.sessionError(c, "login_failed", err)
	}
	if err := h.setCookie(c, acc); err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot issue token")
	}

	l.Info("login_success", "account_id", acc.AccountID())
	return c.JSON(http.StatusOK, viewOf(acc))
}

func (h *AuthHTTP[A]) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", h.realm()+".signup")

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		l.Warn("signup_failed", "status", 400, "reason", "email, password and name are required")
		return echo.NewHTTPError(http.StatusBadRequest, "email, password and name are required")
	}

	acc, err := h.Sessions.Signup(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return h.sessionError(c, "signup_failed", err)
	}
	if err := h.setCookie(c, acc); err != nil {
		l.Error("signup_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot issue token")
	}

	l.Info("signup_success", "account_id", acc.AccountID())
	return c.JSON(http.StatusCreated, viewOf(acc))
}

func (h *AuthHTTP[A]) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", h.realm()+".logout")

	h.Sessions.Logout(ctx)
	c.SetCookie(tokens.DeleteCookie(tokens.CookieName(h.realm()), "/"))

	l.Info("logout_success")
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP[A]) Me(c echo.Context) error {
	acc, ok := h.Sessions.Current()
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	return c.JSON(http.StatusOK, viewOf(acc))
}

// Require admits requests carrying a valid token for this realm whose
// subject is the realm's signed-in account. Logging out therefore revokes
// every token issued before.
func (h *AuthHTTP[A]) Require(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", h.realm()+".require")
		name := tokens.CookieName(h.realm())

		cookie, err := c.Cookie(name)
		if err != nil || cookie.Value == "" {
			l.Warn("auth_failed", "status", 401, "reason", "missing token")
			return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		}

		claims, err := h.Tokens.Parse(cookie.Value, h.realm())
		if err != nil {
			c.SetCookie(tokens.DeleteCookie(name, "/"))
			l.Warn("auth_failed", "status", 401, "reason", "invalid token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		cur, ok := h.Sessions.Current()
		if !ok || cur.AccountID() != claims.Subject {
			c.SetCookie(tokens.DeleteCookie(name, "/"))
			l.Warn("auth_failed", "status", 401, "reason", "session ended")
			return echo.NewHTTPError(http.StatusUnauthorized, "session ended")
		}

		if h.RequiredRole != "" && claims.Role != h.RequiredRole {
			l.Warn("auth_failed", "status", 403, "reason", "role not allowed", "role", claims.Role)
			return echo.NewHTTPError(http.StatusForbidden, h.RequiredRole+" access required")
		}

		c.Set(ctxAccountID, claims.Subject)
		c.Set(ctxRole, claims.Role)
		return next(c)
	}
}

func (h *AuthHTTP[A]) setCookie(c echo.Context, acc A) error {
	tok, exp, err := h.Tokens.Issue(h.realm(), acc.AccountID(), acc.AccountRole())
	if err != nil {
		return err
	}
	c.SetCookie(tokens.CreateCookie(tokens.CookieName(h.realm()), tok, "/", exp))
	return nil
}

func (h *AuthHTTP[A]) sessionError(c echo.Context, msg string, err error) error {
	l := logging.FromContext(c.Request().Context()).With("handler", h.realm())

	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		l.Warn(msg, "status", 401, "reason", "invalid credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, session.ErrAlreadyRegistered):
		l.Warn(msg, "status", 409, "reason", "email already registered")
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	case errors.Is(err, session.ErrBusy):
		l.Warn(msg, "status", 409, "reason", "another request is pending")
		return echo.NewHTTPError(http.StatusConflict, "another login is in progress")
	case errors.Is(err, session.ErrSignupDisabled):
		l.Warn(msg, "status", 403, "reason", "signup disabled")
		return echo.NewHTTPError(http.StatusForbidden, "signup is not available")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		l.Warn(msg, "status", 503, "reason", "request cancelled", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "request cancelled")
	}
	l.Error(msg, "status", 500, "reason", "unexpected error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "unexpected error")
}
