package routes

import (
	"errors"
	"net/http"

	"github.com/sakshi-kadian/aurelius/internal/server/middleware"
	"github.com/sakshi-kadian/aurelius/pkg/logger"
	"github.com/sakshi-kadian/aurelius/pkg/query"

	"github.com/labstack/echo/v4"
)

// ReasonHandler answers a natural-language question from the graph and the
// chunk index.
func ReasonHandler(c echo.Context) error {
	type reasonBody struct {
		Query string `json:"query" validate:"required"`
	}

	data := new(reasonBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Query is required"})
	}

	a := middleware.GetApp(c)
	res, err := a.Reasoning.Answer(c.Request().Context(), data.Query)
	if err != nil {
		if errors.Is(err, query.ErrEmptyQuery) {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Query is required"})
		}
		logger.Error("[Server] Reasoning failed", "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, res)
}
