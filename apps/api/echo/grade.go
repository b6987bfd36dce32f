package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core/grade"
	"github.com/trezcool/shkola/core/user"
)

type gradeApi struct {
	svc *grade.Service
}

type gradesPage struct {
	Grades []grade.Grade
	Form   grade.NewGrade
}

func registerGradeAPI(app *echo.Echo, usrSvc *user.Service, svc *grade.Service) {
	api := gradeApi{svc: svc}

	auth := authMiddleware(usrSvc)
	app.GET("/grades", api.grades, auth)
	app.POST("/add_grade", api.addGrade, auth, roleMiddleware(user.RoleTeacher))
}

// query lists the grades of a student, or those recorded by a teacher.
func (api *gradeApi) query(ctx echo.Context) ([]grade.Grade, error) {
	usr := getContextUser(ctx)
	if usr.IsTeacher() {
		return api.svc.QueryByTeacher(ctx.Request().Context(), usr)
	}
	return api.svc.QueryForStudent(ctx.Request().Context(), usr)
}

// Handlers

func (api *gradeApi) grades(ctx echo.Context) error {
	grades, err := api.query(ctx)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return render(ctx, http.StatusOK, "grades", gradesPage{Grades: grades})
}

func (api *gradeApi) addGrade(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}

	if _, err := api.svc.Record(ctx.Request().Context(), getContextUser(ctx), data); err != nil {
		msgs, ok := errorMessages(ctx, err)
		if !ok {
			return errors.Wrap(err, "recording grade")
		}
		grades, qErr := api.query(ctx)
		if qErr != nil {
			return errors.Wrap(qErr, "querying grades")
		}
		return render(ctx, http.StatusOK, "grades", gradesPage{Grades: grades, Form: data}, msgs...)
	}
	return ctx.Redirect(http.StatusFound, "/grades")
}
