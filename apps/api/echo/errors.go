package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/grade"
	"github.com/trezcool/shkola/core/homework"
)

var (
	errHTTPUnauthorized    = echo.NewHTTPError(http.StatusForbidden, "Unauthorized")
	errHTTPForbidden       = echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	errHTTPStudentNotFound = echo.NewHTTPError(http.StatusNotFound, "Student not found")
	errHTTPNotFound        = echo.NewHTTPError(http.StatusNotFound, "Not found")
)

type errorPage struct {
	Code    int
	Message string
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that renders our errors as the error view.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var herr *echo.HTTPError

		switch origErr := errors.Cause(err); {
		case errors.As(origErr, &herr):
			if inner, ok := herr.Internal.(*echo.HTTPError); ok {
				herr = inner
			}
		case origErr == core.ErrForbidden:
			herr = errHTTPForbidden
		case origErr == grade.ErrStudentNotFound, origErr == homework.ErrStudentNotFound:
			herr = errHTTPStudentNotFound
		case origErr == homework.ErrNotFound:
			herr = errHTTPNotFound
		default: // any other error is a server error
			msg := http.StatusText(http.StatusInternalServerError)
			herr = echo.NewHTTPError(http.StatusInternalServerError, msg)
			logger.Error(msg, errors.Wrap(err, msg), getContextUser(ctx))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		page := errorPage{Code: herr.Code}
		if m, ok := herr.Message.(string); ok {
			page.Message = m
		} else {
			page.Message = http.StatusText(herr.Code)
		}
		if ctx.Echo().Debug && herr.Code == http.StatusInternalServerError {
			page.Message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(herr.Code)
			} else {
				err = render(ctx, herr.Code, "error", page)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
