package main

import (
	"bitwise74/drive-api/app"
	"bitwise74/drive-api/config"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, config.ErrMissingSecret) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		panic(err)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, err := app.NewRouter(ctx, cfg)
	if err != nil {
		panic(err)
	}

	zap.L().Info("Server starting", zap.String("addr", cfg.Host.Addr()))

	if err := router.Run(cfg.Host.Addr()); err != nil {
		panic(err)
	}
}
