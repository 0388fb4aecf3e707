package server

import (
	"github.com/sakshi-kadian/aurelius/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	e.GET("/", routes.RootHandler)
	e.GET("/health", routes.HealthHandler)

	apiRoutes := e.Group("/api/v1")

	// Ingestion routes
	apiRoutes.POST("/ingest", routes.IngestHandler)
	apiRoutes.POST("/ingest/async", routes.IngestAsyncHandler)

	// Graph and reasoning routes
	apiRoutes.GET("/graph", routes.GetGraphHandler)
	apiRoutes.POST("/reason", routes.ReasonHandler)
}
