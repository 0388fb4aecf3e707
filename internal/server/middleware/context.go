package middleware

import (
	"github.com/sakshi-kadian/aurelius/internal/app"

	"github.com/labstack/echo/v4"
)

type AppContext struct {
	echo.Context
	App *app.App
}

// AppContextMiddleware hands every handler the shared App through an
// AppContext.
func AppContextMiddleware(a *app.App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, a}
			return next(cc)
		}
	}
}

// GetApp returns the App of an AppContext.
func GetApp(c echo.Context) *app.App {
	return c.(*AppContext).App
}
