package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"food-court/internal/app/server"
	"food-court/internal/common/config"
	"food-court/internal/common/logger"
)

func main() {
	cfgPath := flag.String("config", "", "path to config.yaml (default: auto-discover)")
	port := flag.Int("port", 0, "override http port")
	flag.Parse()

	lg := logger.New("bootstrap")
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	path := *cfgPath
	if path == "" {
		p, err := config.FindConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, "no config.yaml found; pass --config")
			os.Exit(2)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		lg.Error("config_load_failed", err, map[string]any{"path": path})
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	if err := server.Run(ctx, cfg); err != nil {
		lg.Error("fatal", err, nil)
		os.Exit(1)
	}
}
