package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/user"
)

type userApi struct {
	svc *user.Service
}

func registerUserAPI(app *echo.Echo, svc *user.Service) {
	api := userApi{svc: svc}

	// un-authed endpoints
	app.GET("/", api.home)
	app.GET("/register", api.registerForm)
	app.POST("/register", api.register)
	app.POST("/login", api.login)
	app.GET("/logout", api.logout)
	app.GET("/set_language/:lang", setLanguage)

	// authed endpoints (per route: a group would also catch unknown URLs)
	auth := authMiddleware(svc)
	app.GET("/dashboard", api.dashboard, auth)
	app.GET("/settings", api.settingsForm, auth)
	app.POST("/settings", api.updateSettings, auth)
}

// Handlers

func (api *userApi) home(ctx echo.Context) error {
	return render(ctx, http.StatusOK, "login", loginForm{})
}

func (api *userApi) registerForm(ctx echo.Context) error {
	return render(ctx, http.StatusOK, "register", user.NewUser{})
}

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	if _, err := api.svc.Register(ctx.Request().Context(), data); err != nil {
		if msgs, ok := errorMessages(ctx, err); ok {
			data.Password = ""
			return render(ctx, http.StatusOK, "register", data, msgs...)
		}
		return errors.Wrap(err, "registering user")
	}
	return ctx.Redirect(http.StatusFound, "/")
}

func (api *userApi) login(ctx echo.Context) error {
	var data loginForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to loginForm")
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if err == user.ErrInvalidCredentials {
			msg := core.Translate(translator(ctx), core.MsgInvalidCredentials)
			return render(ctx, http.StatusOK, "login", loginForm{}, msg)
		}
		return errors.Wrap(err, "authenticating")
	}

	sess := getSession(ctx)
	sess.Login(usr)
	if err = sess.Save(ctx); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/dashboard")
}

func (api *userApi) logout(ctx echo.Context) error {
	sess := getSession(ctx)
	sess.Clear()
	if err := sess.Save(ctx); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/")
}

func (api *userApi) dashboard(ctx echo.Context) error {
	usr := getContextUser(ctx)
	switch usr.Role {
	case user.RoleTeacher:
		return render(ctx, http.StatusOK, "dashboard_teacher", nil)
	case user.RoleStudent:
		return render(ctx, http.StatusOK, "dashboard_student", nil)
	default:
		return errors.Errorf("unknown role %q", usr.Role)
	}
}

func (api *userApi) settingsForm(ctx echo.Context) error {
	usr := getContextUser(ctx)
	return render(ctx, http.StatusOK, "settings", user.Settings{Name: usr.FirstName, Email: usr.Email})
}

func (api *userApi) updateSettings(ctx echo.Context) error {
	var data user.Settings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Settings")
	}

	usr := getContextUser(ctx)
	if _, err := api.svc.UpdateSettings(ctx.Request().Context(), usr.ID, data); err != nil {
		if msgs, ok := errorMessages(ctx, err); ok {
			data.Password = ""
			return render(ctx, http.StatusOK, "settings", data, msgs...)
		}
		return errors.Wrap(err, "updating settings")
	}
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}
