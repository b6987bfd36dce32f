package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core/user"
)

// authMiddleware lets a request through only when its session names an existing user.
// Anonymous requests are sent back to the login page.
func authMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, ok := getSession(ctx).UserID()
			if !ok {
				return ctx.Redirect(http.StatusFound, "/")
			}
			usr, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errHTTPUnauthorized
				}
				return errors.Wrap(err, "finding session user")
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

// roleMiddleware restricts a route to the given roles. The stored role is authoritative.
func roleMiddleware(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr := getContextUser(ctx)
			for _, r := range roles {
				if usr.Role == r {
					return next(ctx)
				}
			}
			return errHTTPForbidden
		}
	}
}
