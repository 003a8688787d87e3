package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"s3-resources/internal/catalog"
	"s3-resources/internal/migrate"
	"s3-resources/internal/pipeline"
	"s3-resources/pkg/config"
	"s3-resources/pkg/storage"
	"s3-resources/pkg/utils"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	cfgFile := pflag.StringP("config", "c", "", "Config file (default ./s3-resources.yaml)")
	force := pflag.BoolP("force", "f", false, "Re-upload resources that are already on the object store")

	pflag.String("db", "s3_resources.db", "Catalog database path")
	viper.BindPFlag("server.db_path", pflag.Lookup("db"))

	pflag.String("log-level", "info", "Log level: debug, info, warn, error")
	viper.BindPFlag("log.level", pflag.Lookup("log-level"))

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: migrate-s3 [--force]\n\n")
		fmt.Fprintf(os.Stderr, "Uploads every resource that is not on the object store yet and rebuilds the zip files.\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	cfg, err := config.LoadMirrorConfig(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load config failed: %v\n", err)
		os.Exit(1)
	}
	log := utils.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *force, log); err != nil {
		log.Error("Migration failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.MirrorConfig, force bool, log *slog.Logger) error {
	// 1. 宿主元数据
	db, err := catalog.OpenDB(cfg.Server.DBPath, log)
	if err != nil {
		return err
	}
	defer db.Close()
	cat := catalog.New(db)

	// 2. 对象存储
	store, err := storage.NewObjectStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	// 3. 流水线
	mirror, err := pipeline.New(cfg, cat, store,
		storage.NewUploadResolver(cfg.Storage.UploadDir),
		utils.NewHTTPFetcher(cfg.Upload.FetchTimeout),
		log)
	if err != nil {
		return err
	}

	// 4. 迁移
	runner := migrate.NewRunner(mirror, cat, log)
	runner.Force = force
	census, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(string(census.JSON()))
	return nil
}
