// Command aurelius ingests documents and queries the knowledge graph from
// the command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sakshi-kadian/aurelius/internal/app"
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

	open := func(ctx context.Context) (*app.App, error) {
		return app.New(ctx, cfg)
	}

	rootCmd := newRootCmd(open)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
