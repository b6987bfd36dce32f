package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core/lesson"
	"github.com/trezcool/shkola/core/user"
)

type lessonApi struct {
	svc *lesson.Service
}

func registerLessonAPI(app *echo.Echo, usrSvc *user.Service, svc *lesson.Service) {
	api := lessonApi{svc: svc}

	auth := authMiddleware(usrSvc)
	app.GET("/calendar", api.calendar, auth)

	teacherOnly := roleMiddleware(user.RoleTeacher)
	app.GET("/add_schedule", api.addScheduleForm, auth, teacherOnly)
	app.POST("/add_schedule", api.addSchedule, auth, teacherOnly)
}

// Handlers

func (api *lessonApi) calendar(ctx echo.Context) error {
	lessons, err := api.svc.QueryVisibleTo(ctx.Request().Context(), getContextUser(ctx))
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	return render(ctx, http.StatusOK, "calendar", lessons)
}

func (api *lessonApi) addScheduleForm(ctx echo.Context) error {
	return render(ctx, http.StatusOK, "add_schedule", lesson.NewLesson{})
}

func (api *lessonApi) addSchedule(ctx echo.Context) error {
	var data lesson.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}

	if _, err := api.svc.Schedule(ctx.Request().Context(), getContextUser(ctx), data); err != nil {
		if msgs, ok := errorMessages(ctx, err); ok {
			return render(ctx, http.StatusOK, "add_schedule", data, msgs...)
		}
		return errors.Wrap(err, "scheduling lesson")
	}
	return ctx.Redirect(http.StatusFound, "/calendar")
}
