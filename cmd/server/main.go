package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/baksohyeon/bycle-console-game/gameserver"
	"github.com/baksohyeon/bycle-console-game/pkg/logx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := gameserver.LoadConfig(ctx)

	if os.Getenv("APP_ENV") == "production" {
		logx.NewProductionLogger()
	} else {
		logx.NewLogger()
	}
	defer logx.Sync()

	if err != nil {
		logx.Logger.Fatalw(err.Error(), "desc", "could not load config")
	}

	server, err := gameserver.NewGameServer(config)
	if err != nil {
		logx.Logger.Fatalw(err.Error(), "desc", "could not create game server")
	}

	if err := server.ListenAndServe(); err != nil {
		logx.Logger.Errorw(err.Error(), "desc", "server stopped")
	}
}
