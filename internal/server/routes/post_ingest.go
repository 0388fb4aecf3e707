package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sakshi-kadian/aurelius/internal/queue"
	"github.com/sakshi-kadian/aurelius/internal/server/middleware"
	"github.com/sakshi-kadian/aurelius/internal/storage"
	"github.com/sakshi-kadian/aurelius/pkg/graph"
	"github.com/sakshi-kadian/aurelius/pkg/loader"
	loaderio "github.com/sakshi-kadian/aurelius/pkg/loader/io"
	"github.com/sakshi-kadian/aurelius/pkg/loader/pdf"
	"github.com/sakshi-kadian/aurelius/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const uploadPrefix = "uploads"

type messageResponse struct {
	Message string `json:"message"`
}

// IngestHandler ingests an uploaded document synchronously and returns the
// ingestion counts.
func IngestHandler(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Missing file upload"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid file upload"})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid file upload"})
	}

	id, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}

	params := loader.NewGraphFileParams{
		ID:       id,
		FilePath: fh.Filename,
		Title:    fh.Filename,
		Loader:   loaderio.NewBytesGraphFileLoader(data),
	}
	file := loader.NewGraphDocumentFile(params)
	if loader.DetectFileType(fh.Filename) == loader.GraphFileTypePDF {
		params.Loader = pdf.NewPDFGraphLoader(params.Loader)
		file = loader.NewGraphPDFFile(params)
	}

	a := middleware.GetApp(c)
	res, err := a.Graph.Ingest(c.Request().Context(), file, a.AI, a.GraphStore, a.ChunkStore)
	if err != nil {
		if errors.Is(err, graph.ErrInputDocument) {
			logger.Warn("[Server] Rejected upload", "file", fh.Filename, "err", err)
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Could not read document"})
		}
		logger.Error("[Server] Ingestion failed", "file", fh.Filename, "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, res)
}

type ingestJobResponse struct {
	JobID string `json:"job_id"`
	Key   string `json:"key"`
}

// IngestAsyncHandler stores the upload in object storage and queues it for
// a worker. It answers 503 when either is not configured.
func IngestAsyncHandler(c echo.Context) error {
	a := middleware.GetApp(c)
	if a.S3 == nil || a.Queue == nil {
		return c.JSON(http.StatusServiceUnavailable, messageResponse{Message: "Asynchronous ingestion is not available"})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Missing file upload"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid file upload"})
	}
	defer src.Close()

	jobID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}

	ctx := c.Request().Context()
	bucket := a.Config.AWSBucket
	key, err := storage.PutFile(ctx, a.S3, bucket, uploadPrefix, fh.Filename, jobID, src)
	if err != nil {
		logger.Error("[Server] Failed to upload file", "file", fh.Filename, "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}

	msg, err := json.Marshal(queue.IngestMsg{JobID: jobID, Key: key, Filename: fh.Filename})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}
	if err := queue.PublishFIFO(ctx, a.Queue, queue.IngestQueue, msg); err != nil {
		logger.Error("[Server] Failed to queue ingest job", "job_id", jobID, "err", err)
		if err := storage.DeleteFile(ctx, a.S3, bucket, key); err != nil {
			logger.Warn("[Server] Failed to remove orphaned upload", "key", key, "err", err)
		}
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}

	logger.Info("[Server] Queued ingest job", "job_id", jobID, "file", fh.Filename)
	return c.JSON(http.StatusAccepted, ingestJobResponse{JobID: jobID, Key: key})
}
