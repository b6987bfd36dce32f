package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/shkola/core/user"
)

const contextUserKey = "user"

// getContextUser returns the user loaded by authMiddleware, or the zero User on anonymous routes.
func getContextUser(ctx echo.Context) user.User {
	usr, _ := ctx.Get(contextUserKey).(user.User)
	return usr
}

// authenticated reports whether authMiddleware ran for this request.
func authenticated(ctx echo.Context) (user.User, bool) {
	usr, ok := ctx.Get(contextUserKey).(user.User)
	return usr, ok
}
