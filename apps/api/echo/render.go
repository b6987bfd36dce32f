package echoapi

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/user"
)

//go:embed all:templates
var templateFS embed.FS

const baseTemplate = "_base.gohtml"

// page is the value every view is executed with.
type page struct {
	Lang    core.Locale
	Locales []core.Locale
	User    *user.User // nil for anonymous visitors
	Errors  []string
	Data    interface{}

	trans ut.Translator
}

// T returns the label or message registered for key in the page language.
func (p page) T(key string) string {
	return core.Translate(p.trans, key)
}

type renderer struct {
	uni   *ut.UniversalTranslator
	views map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer(uni *ut.UniversalTranslator) (*renderer, error) {
	if err := addLabels(uni); err != nil {
		return nil, err
	}

	fsys, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, errors.Wrap(err, "opening templates")
	}
	base, err := template.New(baseTemplate).ParseFS(fsys, baseTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "parsing "+baseTemplate)
	}

	names, err := fs.Glob(fsys, "*.gohtml")
	if err != nil {
		return nil, errors.Wrap(err, "listing templates")
	}
	rdr := &renderer{uni: uni, views: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		if name == baseTemplate {
			continue
		}
		tmpl, err := template.Must(base.Clone()).ParseFS(fsys, name)
		if err != nil {
			return nil, errors.Wrap(err, "parsing "+name)
		}
		rdr.views[strings.TrimSuffix(path.Base(name), ".gohtml")] = tmpl
	}
	return rdr, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.views[name]
	if !ok {
		return errors.Errorf("no view named %q", name)
	}
	return errors.Wrap(tmpl.ExecuteTemplate(w, "base", data), "executing "+name)
}

// render executes a view in the session language, for the context user if any.
func render(ctx echo.Context, code int, view string, data interface{}, errMsgs ...string) error {
	lang := getSession(ctx).Locale()
	p := page{
		Lang:    lang,
		Locales: core.Locales,
		Errors:  errMsgs,
		Data:    data,
		trans:   translator(ctx),
	}
	if usr, ok := authenticated(ctx); ok {
		p.User = &usr
	}
	return ctx.Render(code, view, p)
}

// translator returns the translator of the session language.
func translator(ctx echo.Context) ut.Translator {
	rdr := ctx.Echo().Renderer.(*renderer)
	return core.Translator(rdr.uni, getSession(ctx).Locale())
}

// errorMessages translates a user-correctable error. ok is false for any other error.
func errorMessages(ctx echo.Context, err error) (msgs []string, ok bool) {
	return core.ErrorMessages(err, translator(ctx))
}
