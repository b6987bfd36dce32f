package echoapi

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/shkola/core"
)

// setLanguage stores the chosen UI language and sends the visitor back where they came from.
// Codes outside the allow-list select the default language.
func setLanguage(ctx echo.Context) error {
	sess := getSession(ctx)
	sess.SetLocale(core.ParseLocale(ctx.Param("lang")))
	if err := sess.Save(ctx); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, localRedirect(ctx.Request().Referer()))
}

// localRedirect keeps only the path and query of referer so it never leaves this site.
func localRedirect(referer string) string {
	u, err := url.Parse(referer)
	if err != nil || u.Path == "" || u.Path[0] != '/' {
		return "/"
	}
	target := (&url.URL{Path: u.Path, RawQuery: u.RawQuery}).RequestURI()
	if len(target) > 1 && (target[1] == '/' || target[1] == '\\') { // scheme-relative
		return "/"
	}
	return target
}
