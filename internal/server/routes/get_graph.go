package routes

import (
	"net/http"

	"github.com/sakshi-kadian/aurelius/internal/server/middleware"
	"github.com/sakshi-kadian/aurelius/pkg/graph"
	"github.com/sakshi-kadian/aurelius/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetGraphHandler returns a node/link projection of the stored graph. The
// limit query parameter bounds the number of links.
func GetGraphHandler(c echo.Context) error {
	type graphQuery struct {
		Limit int `query:"limit" validate:"gte=0"`
	}

	data := new(graphQuery)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid limit"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid limit"})
	}
	limit := min(data.Limit, graph.MaxProjectionLimit)

	a := middleware.GetApp(c)
	proj, err := a.Projector.Project(c.Request().Context(), limit)
	if err != nil {
		logger.Error("[Server] Failed to project graph", "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, proj)
}
