package echoapi

import (
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/user"
)

const (
	sessionName       = "shkola"
	contextSessionKey = "session"

	keyUserID = "user_id"
	keyRole   = "role"
	keyLocale = "locale"
)

// Session is the request-scoped view of the signed session cookie.
type Session struct {
	raw           *sessions.Session
	defaultLocale core.Locale
}

// UserID returns the authenticated user's ID, or false for an anonymous session.
func (s *Session) UserID() (int, bool) {
	id, ok := s.raw.Values[keyUserID].(int)
	return id, ok && id > 0
}

func (s *Session) Locale() core.Locale {
	if l, ok := s.raw.Values[keyLocale].(string); ok {
		return core.ParseLocale(l)
	}
	return s.defaultLocale
}

func (s *Session) Login(usr user.User) {
	s.raw.Values[keyUserID] = usr.ID
	s.raw.Values[keyRole] = usr.Role.String()
}

// Clear drops every value, locale included, and expires the cookie.
func (s *Session) Clear() {
	for k := range s.raw.Values {
		delete(s.raw.Values, k)
	}
	s.raw.Options.MaxAge = -1
}

func (s *Session) SetLocale(l core.Locale) {
	s.raw.Values[keyLocale] = string(l)
}

func (s *Session) Save(ctx echo.Context) error {
	return errors.Wrap(s.raw.Save(ctx.Request(), ctx.Response()), "saving session")
}

// loadSession decodes the session cookie once per request.
// A cookie that fails verification yields a fresh anonymous session.
func loadSession(defaultLocale core.Locale) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			raw, err := session.Get(sessionName, ctx)
			if raw == nil {
				return errors.Wrap(err, "loading session")
			}
			ctx.Set(contextSessionKey, &Session{raw: raw, defaultLocale: defaultLocale})
			return next(ctx)
		}
	}
}

// getSession returns the request session. Requests that failed before loadSession ran get an empty one.
func getSession(ctx echo.Context) *Session {
	if s, ok := ctx.Get(contextSessionKey).(*Session); ok {
		return s
	}
	return &Session{raw: sessions.NewSession(nil, sessionName), defaultLocale: core.LocaleUK}
}
