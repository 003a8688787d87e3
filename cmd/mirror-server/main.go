package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"s3-resources/internal/api"
	"s3-resources/pkg/config"
	"s3-resources/pkg/utils"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	// 命令行参数
	cfgFile := pflag.StringP("config", "c", "", "Config file (default ./s3-resources.yaml)")

	pflag.String("port", ":8080", "Listen address")
	viper.BindPFlag("server.port", pflag.Lookup("port"))

	pflag.String("db", "s3_resources.db", "Catalog database path")
	viper.BindPFlag("server.db_path", pflag.Lookup("db"))

	pflag.String("log-level", "info", "Log level: debug, info, warn, error")
	viper.BindPFlag("log.level", pflag.Lookup("log-level"))

	pflag.Parse()

	// 加载配置 (缺少必需项时直接退出)
	cfg, err := config.LoadMirrorConfig(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load config failed: %v\n", err)
		os.Exit(1)
	}

	log := utils.NewTextLogger(os.Stderr, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.StartServer(ctx, cfg, log); err != nil {
		log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
