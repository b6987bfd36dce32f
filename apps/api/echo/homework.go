package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core/homework"
	"github.com/trezcool/shkola/core/user"
	"github.com/trezcool/shkola/services/files"
)

type homeworkApi struct {
	svc   *homework.Service
	files *filesvc.Store
}

type homeworkPage struct {
	Homework []homework.Homework
	Form     homework.NewHomework
}

func registerHomeworkAPI(app *echo.Echo, usrSvc *user.Service, svc *homework.Service, files *filesvc.Store) {
	api := homeworkApi{svc: svc, files: files}

	auth := authMiddleware(usrSvc)
	app.GET("/homework", api.homework, auth)
	app.POST("/add_homework", api.addHomework, auth, roleMiddleware(user.RoleTeacher))
	app.POST("/submit_homework", api.submitHomework, auth, roleMiddleware(user.RoleStudent))
	app.GET("/uploads/:name", api.download, auth)
}

func (api *homeworkApi) query(ctx echo.Context) ([]homework.Homework, error) {
	usr := getContextUser(ctx)
	if usr.IsTeacher() {
		return api.svc.QueryByTeacher(ctx.Request().Context(), usr)
	}
	return api.svc.QueryForStudent(ctx.Request().Context(), usr)
}

func (api *homeworkApi) renderInvalid(ctx echo.Context, form homework.NewHomework, msgs []string) error {
	hws, err := api.query(ctx)
	if err != nil {
		return errors.Wrap(err, "querying homework")
	}
	return render(ctx, http.StatusOK, "homework", homeworkPage{Homework: hws, Form: form}, msgs...)
}

// Handlers

func (api *homeworkApi) homework(ctx echo.Context) error {
	hws, err := api.query(ctx)
	if err != nil {
		return errors.Wrap(err, "querying homework")
	}
	return render(ctx, http.StatusOK, "homework", homeworkPage{Homework: hws})
}

func (api *homeworkApi) addHomework(ctx echo.Context) error {
	var data homework.NewHomework
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewHomework")
	}

	if _, err := api.svc.Assign(ctx.Request().Context(), getContextUser(ctx), data); err != nil {
		if msgs, ok := errorMessages(ctx, err); ok {
			return api.renderInvalid(ctx, data, msgs)
		}
		return errors.Wrap(err, "assigning homework")
	}
	return ctx.Redirect(http.StatusFound, "/homework")
}

func (api *homeworkApi) submitHomework(ctx echo.Context) error {
	data, release, err := bindSubmission(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, err = api.svc.Submit(ctx.Request().Context(), getContextUser(ctx), data); err != nil {
		if msgs, ok := errorMessages(ctx, err); ok {
			return api.renderInvalid(ctx, homework.NewHomework{}, msgs)
		}
		return errors.Wrap(err, "submitting homework")
	}
	return ctx.Redirect(http.StatusFound, "/homework")
}

// download serves a submitted file to its student and to the teacher who assigned the homework.
func (api *homeworkApi) download(ctx echo.Context) error {
	name := ctx.Param("name")
	_, hwID, ok := homework.ParseSubmissionName(name)
	if !ok {
		return errHTTPNotFound
	}
	hw, err := api.svc.GetByID(ctx.Request().Context(), hwID)
	if err != nil {
		if errors.Cause(err) == homework.ErrNotFound {
			return errHTTPNotFound
		}
		return errors.Wrap(err, "finding homework by ID")
	}
	usr := getContextUser(ctx)
	if hw.SubmissionFile.String != name || (usr.ID != hw.StudentID && usr.ID != hw.TeacherID) {
		return errHTTPNotFound
	}

	f, err := api.files.Open(name)
	if err != nil {
		return errors.Wrap(err, "opening submission")
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, "reading submission info")
	}
	http.ServeContent(ctx.Response(), ctx.Request(), name, info.ModTime(), f)
	return nil
}
