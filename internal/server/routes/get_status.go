package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type statusResponse struct {
	System string `json:"system"`
	Status string `json:"status"`
	Mode   string `json:"mode"`
}

func RootHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		System: "Aurelius",
		Status: "online",
		Mode:   "Neuro-Symbolic",
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
