package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sakshi-kadian/aurelius/internal/app"
	"github.com/sakshi-kadian/aurelius/internal/queue"
	"github.com/sakshi-kadian/aurelius/internal/util"
	s3loader "github.com/sakshi-kadian/aurelius/pkg/loader/s3"
	"github.com/sakshi-kadian/aurelius/pkg/logger"
	"github.com/sakshi-kadian/aurelius/pkg/logger/console"
)

func main() {
	util.LoadEnv()
	cfg := app.LoadConfig()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: cfg.Debug,
	})
	logger.Init(consoleLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialise", "err", err)
	}
	defer a.Close(context.Background())

	if a.S3 == nil {
		logger.Fatal("The worker needs object storage, set AWS_BUCKET")
	}

	conn, err := a.ConnectQueue(ctx)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}

	params := queue.NewIngestProcessorParams{
		Graph:      a.Graph,
		AIClient:   a.AI,
		GraphStore: a.GraphStore,
		ChunkStore: a.ChunkStore,
		Loader:     s3loader.NewS3GraphFileLoaderWithClient(cfg.AWSBucket, a.S3),
		LeaseTTL:   util.GetEnvSeconds("INGEST_LEASE_SECONDS", 300),
		Events:     a.Queue,
	}
	if a.Locks != nil {
		params.Locker = a.Locks
	} else {
		logger.Warn("No DATABASE_URL set, ingest jobs are not locked across workers")
	}
	processor := queue.NewIngestProcessor(params)

	// A dedicated consumer channel with prefetch=1 so one job runs at a time.
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.IngestQueue,
		queue.IngestQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.IngestQueue, "err", err)
	}

	logger.Info("Listening for messages", "queue", queue.IngestQueue)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed", "queue", queue.IngestQueue)
				return
			}

			startTime := time.Now()
			logger.Info("Received message", "queue", queue.IngestQueue, "retries", queue.Retries(msg))

			_, processingErr := processor.ProcessIngestMessage(ctx, msg.Body)
			if processingErr != nil {
				logger.Error("Error processing message", "queue", queue.IngestQueue, "err", processingErr)
				if queue.HandleProcessingError(ctx, a.Queue, msg, queue.IngestQueue, processingErr) {
					processor.PublishFailure(ctx, msg.Body, processingErr)
				}
			} else {
				if err := msg.Ack(false); err != nil {
					logger.Error("Failed to ack message", "err", err)
				}
				logger.Info("Message processed successfully", "queue", queue.IngestQueue)
			}

			metrics := a.AI.GetMetrics()
			logger.Info(
				"AI Metrics",
				"requests", metrics.Requests,
				"input_tokens", metrics.InputTokens,
				"output_tokens", metrics.OutputTokens,
				"total_tokens", metrics.TotalTokens,
				"duration", formatDuration(time.Duration(metrics.DurationMs)*time.Millisecond),
			)
			logger.Info("Processing time", "duration", formatDuration(time.Since(startTime)))
			a.AI.ResetMetrics()
		}
	}
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
