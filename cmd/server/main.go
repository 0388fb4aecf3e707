package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sakshi-kadian/aurelius/internal/app"
	"github.com/sakshi-kadian/aurelius/internal/server"
	"github.com/sakshi-kadian/aurelius/internal/util"
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

	// The async ingest route answers 503 without a broker.
	if _, err := a.ConnectQueue(ctx); err != nil && !errors.Is(err, app.ErrQueueDisabled) {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}

	if err := server.Run(ctx, a, cfg.Port); err != nil {
		logger.Error("Server stopped", "err", err)
	}
}
