package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"PolyChat/global/config"
	"PolyChat/logger"
	"PolyChat/tools/ids"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file (defaults to $CONFIG_FILE)")
	inMemory := flag.Bool("mem", false, "keep all data in memory instead of MongoDB (or IN_MEMORY=true)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Error("load config", zap.Error(err))
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)
	defer logger.Sync()
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	ids.SetNodeID(cfg.NodeID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, *inMemory || cfg.InMemory)
	if err != nil {
		logger.Error("start", zap.Error(err))
		os.Exit(1)
	}
	if err := app.Run(ctx); err != nil {
		logger.Error("stopped", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("bye")
}
