package main

import (
	"flag"
	"log"
	"quiz_portal_backend/internal/app"
	"quiz_portal_backend/internal/config"
	"quiz_portal_backend/pkg/logger"
)

func main() {
	configDir := flag.String("config", "configs", "配置目录（config.yaml 与可选的 .env）")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config from %s: %v", *configDir, err)
	}
	cfg.ConfigDir = *configDir
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if cfg.MigrateOnly {
		logger.Log.Info("数据库迁移完成，退出程序")
		return
	}

	application.Run()
}
