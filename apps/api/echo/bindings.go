package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core/homework"
)

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// bindSubmission binds the homework_id field and the uploaded file of a multipart form.
// A missing file leaves Content nil. The returned func releases the file.
func bindSubmission(ctx echo.Context) (homework.Submission, func(), error) {
	nop := func() {}

	var sub homework.Submission
	if err := ctx.Bind(&sub); err != nil {
		return sub, nop, errors.Wrap(err, "binding to Submission")
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			return sub, nop, nil
		}
		return sub, nop, errors.Wrap(err, "reading uploaded file")
	}
	src, err := fh.Open()
	if err != nil {
		return sub, nop, errors.Wrap(err, "opening uploaded file")
	}
	sub.Filename = fh.Filename
	sub.Content = src
	return sub, func() { _ = src.Close() }, nil
}
